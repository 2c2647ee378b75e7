package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-saas/metrics"
	"github.com/yeremiapane/restaurant-saas/utils"
)

// InstanceAPI is the set of internal calls the worker makes.
type InstanceAPI interface {
	DisconnectInstance(ctx context.Context, tenantID string) error
	DeleteInstance(ctx context.Context, tenantID string) error
	CreateInstance(ctx context.Context, tenantID string) error
	ConnectInstance(ctx context.Context, tenantID string) error
}

type errUnknownEvent string

func (e errUnknownEvent) Error() string { return "unknown event " + string(e) }

type Worker struct {
	api InstanceAPI
}

func NewWorker(api InstanceAPI) *Worker {
	return &Worker{api: api}
}

// Handle runs one lifecycle event.
func (w *Worker) Handle(ctx context.Context, event Event) error {
	tenantID := event.Data.TenantID
	if tenantID == "" {
		return fmt.Errorf("event %s without tenantId", event.Name)
	}

	switch event.Name {
	case EventSubscriptionExpired:
		return w.api.DisconnectInstance(ctx, tenantID)
	case EventSubscriptionCancelled:
		return w.api.DeleteInstance(ctx, tenantID)
	case EventSubscriptionReactivated:
		// A cancelled tenant lost its instance and needs a new one.
		if event.Data.WasDeleted != nil && *event.Data.WasDeleted {
			return w.api.CreateInstance(ctx, tenantID)
		}
		return w.api.ConnectInstance(ctx, tenantID)
	default:
		return errUnknownEvent(event.Name)
	}
}

// Run consumes deliveries until the channel closes or ctx is done.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			w.process(ctx, d)
		}
	}
}

func (w *Worker) process(ctx context.Context, d amqp.Delivery) {
	var event Event
	if err := json.Unmarshal(d.Body, &event); err != nil {
		utils.ErrorLogger.WithError(err).Error("dropping undecodable job")
		metrics.JobsProcessed.WithLabelValues("undecodable", "dropped").Inc()
		_ = d.Nack(false, false)
		return
	}

	log := utils.InfoLogger.WithFields(logrus.Fields{
		"event":     event.Name,
		"tenant_id": event.Data.TenantID,
	})

	err := w.Handle(ctx, event)
	switch err.(type) {
	case nil:
		log.Info("job processed")
		metrics.JobsProcessed.WithLabelValues(event.Name, "ok").Inc()
		_ = d.Ack(false)
	case errUnknownEvent:
		log.Warn("ignoring unknown job event")
		metrics.JobsProcessed.WithLabelValues("unknown", "ignored").Inc()
		_ = d.Ack(false)
	default:
		utils.ErrorLogger.WithFields(logrus.Fields{
			"event":     event.Name,
			"tenant_id": event.Data.TenantID,
		}).WithError(err).Error("job failed")
		metrics.JobsProcessed.WithLabelValues(event.Name, "failed").Inc()
		_ = d.Nack(false, false)
	}
}

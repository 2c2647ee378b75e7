package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-saas/jobs"
	"github.com/yeremiapane/restaurant-saas/metrics"
	"github.com/yeremiapane/restaurant-saas/models"
	"github.com/yeremiapane/restaurant-saas/utils"
)

// TenantRecord is the part of a tenants row the watcher reads.
type TenantRecord struct {
	ID                 string `json:"id"`
	SubscriptionStatus string `json:"subscription_status"`
}

// ChangeNotification is a row-change webhook payload from the hosted database.
type ChangeNotification struct {
	Type      string        `json:"type"`
	Table     string        `json:"table"`
	Record    *TenantRecord `json:"record"`
	OldRecord *TenantRecord `json:"old_record"`
}

// SubscriptionWatcher turns subscription status changes into lifecycle events.
// It holds no state; ordering and dedup are the job runtime's concern.
type SubscriptionWatcher struct {
	dispatcher jobs.Dispatcher
}

func NewSubscriptionWatcher(d jobs.Dispatcher) *SubscriptionWatcher {
	return &SubscriptionWatcher{dispatcher: d}
}

// Handle returns the dispatched event, or nil when the change is not a lifecycle event.
func (w *SubscriptionWatcher) Handle(ctx context.Context, n ChangeNotification) (*jobs.Event, error) {
	if n.Table != "tenants" || n.Record == nil || n.OldRecord == nil {
		return nil, nil
	}
	oldStatus, newStatus := n.OldRecord.SubscriptionStatus, n.Record.SubscriptionStatus
	if oldStatus == newStatus {
		return nil, nil
	}

	log := utils.InfoLogger.WithFields(logrus.Fields{
		"tenant_id": n.Record.ID,
		"from":      oldStatus,
		"to":        newStatus,
	})

	event, ok := lifecycleEvent(n.Record.ID, oldStatus, newStatus)
	if !ok {
		log.Info("subscription change has no lifecycle event")
		return nil, nil
	}

	if err := w.dispatcher.Dispatch(ctx, event); err != nil {
		metrics.LifecycleEvents.WithLabelValues(event.Name, "failed").Inc()
		return nil, Upstream("Erro ao enfileirar evento de assinatura", err)
	}
	metrics.LifecycleEvents.WithLabelValues(event.Name, "dispatched").Inc()
	log.WithField("event", event.Name).Info("lifecycle event dispatched")
	return &event, nil
}

func lifecycleEvent(tenantID, from, to string) (jobs.Event, bool) {
	data := jobs.EventData{TenantID: tenantID}
	switch {
	case from == models.SubscriptionActive && to == models.SubscriptionExpired:
		return jobs.Event{Name: jobs.EventSubscriptionExpired, Data: data}, true
	case from == models.SubscriptionExpired && to == models.SubscriptionCancelled:
		return jobs.Event{Name: jobs.EventSubscriptionCancelled, Data: data}, true
	case to == models.SubscriptionActive && (from == models.SubscriptionExpired || from == models.SubscriptionCancelled):
		wasDeleted := from == models.SubscriptionCancelled
		data.WasDeleted = &wasDeleted
		return jobs.Event{Name: jobs.EventSubscriptionReactivated, Data: data}, true
	}
	return jobs.Event{}, false
}

package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-saas/metrics"
	"github.com/yeremiapane/restaurant-saas/models"
	"github.com/yeremiapane/restaurant-saas/repository"
	"github.com/yeremiapane/restaurant-saas/utils"
)

// OrderStore is the tenant-scoped slice of the store the lifecycle needs.
type OrderStore interface {
	TenantID() string
	FindOrder(ctx context.Context, id string) (*models.Order, error)
	TransitionOrder(ctx context.Context, id, from string, fields map[string]interface{}) (int64, error)
}

// OrderNotifier is told about every order that changed status.
type OrderNotifier interface {
	OrderUpdated(tenantID string, order models.Order)
}

const msgOrderNotFound = "Pedido não encontrado"

type transition struct {
	name    string
	verb    string
	from    string
	to      string
	atField string
	byField string
}

var (
	acceptTransition = transition{
		name: "accept", verb: "aceitar",
		from: models.OrderPending, to: models.OrderPreparing,
		atField: "accepted_at", byField: "accepted_by",
	}
	completeTransition = transition{
		name: "complete", verb: "completar",
		from: models.OrderPreparing, to: models.OrderCompleted,
		atField: "completed_at", byField: "completed_by",
	}
)

// OrderService enforces the order state machine:
//
//	pending -> preparing (Accept) -> completed (Complete)
//
// cancelled is terminal and never entered here.
type OrderService struct {
	notifier OrderNotifier
	now      func() time.Time
}

func NewOrderService(notifier OrderNotifier) *OrderService {
	return &OrderService{notifier: notifier, now: time.Now}
}

func (s *OrderService) Accept(ctx context.Context, store OrderStore, orderID, actorID string) (*models.Order, error) {
	return s.apply(ctx, store, orderID, actorID, acceptTransition)
}

func (s *OrderService) Complete(ctx context.Context, store OrderStore, orderID, actorID string) (*models.Order, error) {
	return s.apply(ctx, store, orderID, actorID, completeTransition)
}

func (s *OrderService) apply(ctx context.Context, store OrderStore, orderID, actorID string, tr transition) (*models.Order, error) {
	// Ownership first: a foreign order looks exactly like a missing one.
	order, err := s.load(ctx, store, orderID)
	if err != nil {
		s.count(tr, err)
		return nil, err
	}
	if order.Status != tr.from {
		err := InvalidTransition("Não é possível %s pedido com status '%s'", tr.verb, order.Status)
		s.count(tr, err)
		return nil, err
	}

	now := s.now()
	fields := map[string]interface{}{
		"status":     tr.to,
		tr.atField:   now,
		tr.byField:   actorID,
		"updated_at": now,
	}
	n, err := store.TransitionOrder(ctx, orderID, tr.from, fields)
	if err != nil {
		err := Upstream("Erro ao atualizar pedido", err)
		s.count(tr, err)
		return nil, err
	}
	if n == 0 {
		// Lost a race: someone moved the order between our read and our update.
		current, err := s.load(ctx, store, orderID)
		if err == nil {
			err = InvalidTransition("Não é possível %s pedido com status '%s'", tr.verb, current.Status)
		}
		metrics.OrderTransitions.WithLabelValues(tr.name, "conflict").Inc()
		utils.InfoLogger.WithFields(logrus.Fields{
			"order_id":  orderID,
			"tenant_id": store.TenantID(),
		}).Warnf("order %s lost a concurrent transition", tr.name)
		return nil, err
	}

	order.Status = tr.to
	order.UpdatedAt = now
	actor := actorID
	switch tr.name {
	case acceptTransition.name:
		order.AcceptedAt, order.AcceptedBy = &now, &actor
	case completeTransition.name:
		order.CompletedAt, order.CompletedBy = &now, &actor
	}

	metrics.OrderTransitions.WithLabelValues(tr.name, "ok").Inc()
	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id":  orderID,
		"tenant_id": store.TenantID(),
		"actor_id":  actorID,
		"status":    tr.to,
	}).Info("order transitioned")

	if s.notifier != nil {
		s.notifier.OrderUpdated(store.TenantID(), *order)
	}
	return order, nil
}

func (s *OrderService) load(ctx context.Context, store OrderStore, orderID string) (*models.Order, error) {
	order, err := store.FindOrder(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NotFound(msgOrderNotFound)
	}
	if err != nil {
		return nil, Upstream("Erro ao buscar pedido", err)
	}
	return order, nil
}

func (s *OrderService) count(tr transition, err error) {
	outcome := "error"
	switch {
	case IsKind(err, KindNotFound):
		outcome = "not_found"
	case IsKind(err, KindInvalidTransition):
		outcome = "invalid"
	}
	metrics.OrderTransitions.WithLabelValues(tr.name, outcome).Inc()
}

// List and Get back the dashboard order views.
func (s *OrderService) List(ctx context.Context, store *repository.ScopedRepository, filter repository.OrderFilter) ([]models.Order, error) {
	if filter.Status != "" && !validOrderStatus(filter.Status) {
		return nil, BadRequest("Status de pedido inválido")
	}
	orders, err := store.ListOrders(ctx, filter)
	if err != nil {
		return nil, Upstream("Erro ao listar pedidos", err)
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, store OrderStore, orderID string) (*models.Order, error) {
	return s.load(ctx, store, orderID)
}

func validOrderStatus(status string) bool {
	switch status {
	case models.OrderPending, models.OrderPreparing, models.OrderCompleted, models.OrderCancelled:
		return true
	}
	return false
}

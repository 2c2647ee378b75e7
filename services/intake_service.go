package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-saas/models"
	"github.com/yeremiapane/restaurant-saas/utils"
)

type OrderCreator interface {
	TenantID() string
	FindAvailableProducts(ctx context.Context, ids []string) (map[string]models.Product, error)
	CreateOrder(ctx context.Context, order *models.Order) error
}

type NewOrderItem struct {
	ProductID   string   `json:"product_id" binding:"required"`
	VariationID string   `json:"variation_id"`
	Quantity    int      `json:"quantity" binding:"required,min=1"`
	ExtraIDs    []string `json:"extra_ids"`
	Notes       string   `json:"notes"`
}

type NewOrderRequest struct {
	CustomerName  string         `json:"customer_name" binding:"required"`
	CustomerPhone string         `json:"customer_phone" binding:"required"`
	Notes         string         `json:"notes"`
	Items         []NewOrderItem `json:"items" binding:"required,min=1,dive"`
}

// IntakeService turns bot orders into pending orders. Prices always come from the
// catalog; whatever the caller sends is ignored.
type IntakeService struct {
	notifier OrderNotifier
}

func NewIntakeService(notifier OrderNotifier) *IntakeService {
	return &IntakeService{notifier: notifier}
}

func (s *IntakeService) CreateOrder(ctx context.Context, store OrderCreator, req NewOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, BadRequest("Pedido sem itens")
	}

	ids := make([]string, 0, len(req.Items))
	for _, it := range req.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := store.FindAvailableProducts(ctx, ids)
	if err != nil {
		return nil, Upstream("Erro ao buscar produtos", err)
	}

	order := &models.Order{
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Notes:         req.Notes,
		Status:        models.OrderPending,
	}
	for _, it := range req.Items {
		item, err := priceItem(products, it)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, *item)
		order.TotalAmount += item.Subtotal
	}
	order.TotalAmount = roundCents(order.TotalAmount)

	if err := store.CreateOrder(ctx, order); err != nil {
		return nil, Upstream("Erro ao criar pedido", err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"tenant_id": store.TenantID(),
		"order_id":  order.ID,
		"total":     utils.FormatCurrencyBRL(order.TotalAmount),
	}).Info("order received")

	if s.notifier != nil {
		s.notifier.OrderUpdated(store.TenantID(), *order)
	}
	return order, nil
}

func priceItem(products map[string]models.Product, it NewOrderItem) (*models.OrderItem, error) {
	if it.Quantity < 1 {
		return nil, BadRequest("Quantidade inválida")
	}
	product, ok := products[it.ProductID]
	if !ok {
		return nil, BadRequest(fmt.Sprintf("Produto indisponível: %s", it.ProductID))
	}

	item := &models.OrderItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    it.Quantity,
		UnitPrice:   product.Price,
		Notes:       it.Notes,
	}

	if it.VariationID != "" {
		var found bool
		for _, v := range product.Variations {
			if v.ID == it.VariationID {
				id := v.ID
				item.VariationID = &id
				item.VariationName = v.Name
				item.UnitPrice = v.Price
				found = true
				break
			}
		}
		if !found {
			return nil, BadRequest(fmt.Sprintf("Variação indisponível: %s", it.VariationID))
		}
	}

	for _, extraID := range it.ExtraIDs {
		var found bool
		for _, e := range product.Extras {
			if e.ID == extraID {
				item.Extras = append(item.Extras, models.OrderItemExtra{ExtraID: e.ID, Name: e.Name, Price: e.Price})
				item.ExtrasTotal += e.Price
				found = true
				break
			}
		}
		if !found {
			return nil, BadRequest(fmt.Sprintf("Adicional indisponível: %s", extraID))
		}
	}

	item.ExtrasTotal = roundCents(item.ExtrasTotal)
	item.Subtotal = roundCents((item.UnitPrice + item.ExtrasTotal) * float64(it.Quantity))
	return item, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

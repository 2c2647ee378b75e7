package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-saas/middlewares"
	"github.com/yeremiapane/restaurant-saas/repository"
	"github.com/yeremiapane/restaurant-saas/services"
	"github.com/yeremiapane/restaurant-saas/utils"
)

type OrderController struct {
	Repo   *repository.AdminRepository
	Orders *services.OrderService
}

func NewOrderController(repo *repository.AdminRepository, orders *services.OrderService) *OrderController {
	return &OrderController{Repo: repo, Orders: orders}
}

// AcceptOrder -> pending to preparing
func (oc *OrderController) AcceptOrder(c *gin.Context) {
	order, err := oc.Orders.Accept(c.Request.Context(), scoped(c, oc.Repo), c.Param("id"), middlewares.ActorID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pedido aceito com sucesso", gin.H{
		"order_id": order.ID,
		"status":   order.Status,
	})
}

// CompleteOrder -> preparing to completed
func (oc *OrderController) CompleteOrder(c *gin.Context) {
	order, err := oc.Orders.Complete(c.Request.Context(), scoped(c, oc.Repo), c.Param("id"), middlewares.ActorID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Pedido completado com sucesso", gin.H{
		"order_id": order.ID,
		"status":   order.Status,
	})
}

// GetOrders -> newest first, optional ?status= and ?limit=
func (oc *OrderController) GetOrders(c *gin.Context) {
	limit, err := queryInt(c, "limit", 100)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	orders, err := oc.Orders.List(c.Request.Context(), scoped(c, oc.Repo), repository.OrderFilter{
		Status: c.Query("status"),
		Limit:  limit,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Lista de pedidos", orders)
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	order, err := oc.Orders.Get(c.Request.Context(), scoped(c, oc.Repo), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Detalhes do pedido", order)
}

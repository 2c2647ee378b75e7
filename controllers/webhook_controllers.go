package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-saas/services"
	"github.com/yeremiapane/restaurant-saas/utils"
)

type WebhookController struct {
	Watcher *services.SubscriptionWatcher
}

func NewWebhookController(w *services.SubscriptionWatcher) *WebhookController {
	return &WebhookController{Watcher: w}
}

// SubscriptionChanged receives row-change notifications for the tenants table.
func (wc *WebhookController) SubscriptionChanged(c *gin.Context) {
	var n services.ChangeNotification
	if err := c.ShouldBindJSON(&n); err != nil {
		utils.RespondError(c, bindError(err))
		return
	}

	event, err := wc.Watcher.Handle(c.Request.Context(), n)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if event == nil {
		utils.RespondJSON(c, http.StatusOK, "Nenhuma ação necessária", nil)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Evento enviado", gin.H{"event": event.Name})
}

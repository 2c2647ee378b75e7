package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-saas/kds"
	"github.com/yeremiapane/restaurant-saas/middlewares"
	"github.com/yeremiapane/restaurant-saas/utils"
)

type KDSController struct {
	Hub      *kds.Hub
	upgrader websocket.Upgrader
}

// NewKDSController accepts upgrades from allowedOrigin or from clients sending no Origin.
func NewKDSController(hub *kds.Hub, allowedOrigin string) *KDSController {
	return &KDSController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "*" || origin == allowedOrigin
			},
		},
	}
}

// KDSHandler -> websocket feed of the tenant's orders
func (kc *KDSController) KDSHandler(c *gin.Context) {
	profile := middlewares.CurrentProfile(c)
	if profile == nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := kc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.InfoLogger.WithError(err).Warn("kds: upgrade failed")
		return
	}
	kc.Hub.Register(ws, profile.TenantID, profile.ID)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	kc.Hub.Unregister(ws)
}

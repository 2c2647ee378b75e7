package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-saas/models"
	"github.com/yeremiapane/restaurant-saas/services"
)

// Keys set on the gin context by the auth middlewares.
const (
	KeyProfile       = "profile"
	KeyTenantID      = "tenant_id"
	KeyRole          = "role"
	KeyTenantContext = "tenant_context"
	KeyInternal      = "internal_call"
)

func CurrentProfile(c *gin.Context) *models.Profile {
	if v, ok := c.Get(KeyProfile); ok {
		if p, ok := v.(*models.Profile); ok {
			return p
		}
	}
	return nil
}

func CurrentTenantID(c *gin.Context) string {
	return c.GetString(KeyTenantID)
}

func CurrentTenantContext(c *gin.Context) *services.TenantContext {
	if v, ok := c.Get(KeyTenantContext); ok {
		if tc, ok := v.(*services.TenantContext); ok {
			return tc
		}
	}
	return nil
}

// ActorID is the profile acting on the request, or "system" for internal calls.
func ActorID(c *gin.Context) string {
	if p := CurrentProfile(c); p != nil {
		return p.ID
	}
	return "system"
}

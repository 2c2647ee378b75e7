package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-saas/services"
	"github.com/yeremiapane/restaurant-saas/utils"
)

// RequireRole lets session users with one of roles through. Internal calls carry no
// role and are let through as well.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool(KeyInternal) {
			c.Next()
			return
		}
		role := c.GetString(KeyRole)
		if role == "" {
			utils.AbortWithError(c, services.Unauthenticated("Sessão não informada"))
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		utils.AbortWithError(c, services.Forbidden("Permissão insuficiente"))
	}
}

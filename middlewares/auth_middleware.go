package middlewares

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-saas/services"
	"github.com/yeremiapane/restaurant-saas/utils"
)

// SessionAuth requires a dashboard session from the cookie, a bearer token or, for
// websocket upgrades, the token query parameter.
func SessionAuth(auth *services.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authenticateSession(c, auth, cookieName); err != nil {
			utils.AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func authenticateSession(c *gin.Context, auth *services.AuthService, cookieName string) error {
	profile, err := auth.Authenticate(c.Request.Context(), sessionToken(c, cookieName))
	if err != nil {
		return err
	}
	c.Set(KeyProfile, profile)
	c.Set(KeyTenantID, profile.TenantID)
	c.Set(KeyRole, profile.Role)
	return nil
}

func sessionToken(c *gin.Context, cookieName string) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	return c.Query("token")
}

// IntegrationAuth resolves the bot's instance token or API key to a tenant context.
func IntegrationAuth(gate *services.AuthGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc, err := gate.Resolve(c.Request.Context(), c.Request.Header)
		if err != nil {
			utils.AbortWithError(c, err)
			return
		}
		c.Set(KeyTenantContext, tc)
		c.Set(KeyTenantID, tc.TenantID)
		c.Next()
	}
}

// SessionOrInternal lets either a dashboard session or the job worker through. The worker
// proves itself with the shared secret and names the tenant in the JSON body.
func SessionOrInternal(auth *services.AuthService, cookieName, internalSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(services.HeaderInternalSecret)
		if presented == "" {
			if err := authenticateSession(c, auth, cookieName); err != nil {
				utils.AbortWithError(c, err)
				return
			}
			c.Next()
			return
		}

		if internalSecret == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(internalSecret)) != 1 {
			utils.AbortWithError(c, services.Unauthenticated("Segredo interno inválido"))
			return
		}

		tenantID, err := tenantIDFromBody(c)
		if err != nil {
			utils.AbortWithError(c, err)
			return
		}
		c.Set(KeyTenantID, tenantID)
		c.Set(KeyInternal, true)
		c.Next()
	}
}

// tenantIDFromBody reads tenantId and puts the body back for the handler.
func tenantIDFromBody(c *gin.Context) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		return "", services.BadRequest("Corpo da requisição inválido")
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	var body struct {
		TenantID string `json:"tenantId"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			return "", services.BadRequest("Corpo da requisição inválido")
		}
	}
	if body.TenantID == "" {
		return "", services.BadRequest("tenantId é obrigatório")
	}
	return body.TenantID, nil
}

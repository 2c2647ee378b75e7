package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-saas/middlewares"
	"github.com/yeremiapane/restaurant-saas/repository"
	"github.com/yeremiapane/restaurant-saas/services"
	"github.com/yeremiapane/restaurant-saas/utils"
)

type UserController struct {
	Repo         *repository.AdminRepository
	Auth         *services.AuthService
	Tenants      *services.TenantService
	CookieName   string
	SecureCookie bool
}

func NewUserController(repo *repository.AdminRepository, auth *services.AuthService, tenants *services.TenantService, cookieName string, secure bool) *UserController {
	return &UserController{Repo: repo, Auth: auth, Tenants: tenants, CookieName: cookieName, SecureCookie: secure}
}

func (uc *UserController) setSession(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(uc.CookieName, token, maxAge, "/", "", uc.SecureCookie, true)
}

// Register -> new restaurant with its owner
func (uc *UserController) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, bindError(err))
		return
	}
	owner, token, err := uc.Auth.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	uc.setSession(c, token, uc.Auth.SessionTTL())
	utils.RespondJSON(c, http.StatusCreated, "Restaurante cadastrado", gin.H{
		"token":   token,
		"profile": owner,
	})
}

func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, bindError(err))
		return
	}
	profile, token, err := uc.Auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	uc.setSession(c, token, uc.Auth.SessionTTL())
	utils.RespondJSON(c, http.StatusOK, "Login realizado com sucesso", gin.H{
		"token":   token,
		"profile": profile,
	})
}

func (uc *UserController) Logout(c *gin.Context) {
	uc.setSession(c, "", -1)
	utils.RespondJSON(c, http.StatusOK, "Logout realizado", nil)
}

func (uc *UserController) GetProfile(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Perfil", middlewares.CurrentProfile(c))
}

func (uc *UserController) GetSettings(c *gin.Context) {
	tenant, err := scoped(c, uc.Repo).GetTenant(c.Request.Context())
	if err != nil {
		utils.RespondError(c, storeError(err, "Tenant não encontrado"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Configurações", tenant)
}

func (uc *UserController) UpdateSettings(c *gin.Context) {
	var req services.SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, bindError(err))
		return
	}
	tenant, err := uc.Tenants.UpdateSettings(c.Request.Context(), scoped(c, uc.Repo), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Configurações atualizadas", tenant)
}

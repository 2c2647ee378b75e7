package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-saas/repository"
	"github.com/yeremiapane/restaurant-saas/services"
	"github.com/yeremiapane/restaurant-saas/utils"
)

// TenantController serves the integration API used by the WhatsApp bot.
type TenantController struct {
	Repo    *repository.AdminRepository
	Tenants *services.TenantService
	Intake  *services.IntakeService
}

func NewTenantController(repo *repository.AdminRepository, tenants *services.TenantService, intake *services.IntakeService) *TenantController {
	return &TenantController{Repo: repo, Tenants: tenants, Intake: intake}
}

// GetInfo only accepts x-instance-token.
func (tc *TenantController) GetInfo(c *gin.Context) {
	info, err := tc.Tenants.InfoByInstanceToken(c.Request.Context(), c.GetHeader(services.HeaderInstanceToken))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Informações do restaurante", info)
}

func (tc *TenantController) GetProducts(c *gin.Context) {
	products, err := scoped(c, tc.Repo).ListAvailableProducts(c.Request.Context())
	if err != nil {
		utils.RespondError(c, storeError(err, "Produtos não encontrados"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cardápio", products)
}

func (tc *TenantController) GetCategories(c *gin.Context) {
	categories, err := scoped(c, tc.Repo).ListActiveCategories(c.Request.Context())
	if err != nil {
		utils.RespondError(c, storeError(err, "Categorias não encontradas"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Categorias", categories)
}

func (tc *TenantController) CreateOrder(c *gin.Context) {
	var req services.NewOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, bindError(err))
		return
	}
	order, err := tc.Intake.CreateOrder(c.Request.Context(), scoped(c, tc.Repo), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Pedido criado com sucesso", order)
}

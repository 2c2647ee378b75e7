package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-saas/repository"
	"github.com/yeremiapane/restaurant-saas/services"
	"github.com/yeremiapane/restaurant-saas/utils"
)

type AdminController struct {
	Repo      *repository.AdminRepository
	Dashboard *services.DashboardService
}

func NewAdminController(repo *repository.AdminRepository, dashboard *services.DashboardService) *AdminController {
	return &AdminController{Repo: repo, Dashboard: dashboard}
}

// GetDashboardStats -> counters for the dashboard home
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	stats, err := ac.Dashboard.Stats(c.Request.Context(), scoped(c, ac.Repo))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Estatísticas do painel", stats)
}

// GetAnalytics -> ?days=N, default 7
func (ac *AdminController) GetAnalytics(c *gin.Context) {
	days, err := queryInt(c, "days", 7)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	analytics, err := ac.Dashboard.Analytics(c.Request.Context(), scoped(c, ac.Repo), days)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Análises", analytics)
}

package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-saas/models"
	"github.com/yeremiapane/restaurant-saas/repository"
	"github.com/yeremiapane/restaurant-saas/services"
	"github.com/yeremiapane/restaurant-saas/utils"
)

const msgCategoryNotFound = "Categoria não encontrada"

type CategoryController struct {
	Repo *repository.AdminRepository
}

func NewCategoryController(repo *repository.AdminRepository) *CategoryController {
	return &CategoryController{Repo: repo}
}

func (cc *CategoryController) GetAllCategories(c *gin.Context) {
	categories, err := scoped(c, cc.Repo).ListCategories(c.Request.Context())
	if err != nil {
		utils.RespondError(c, storeError(err, msgCategoryNotFound))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Lista de categorias", categories)
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var in struct {
		Name      string `json:"name" binding:"required"`
		SortOrder int    `json:"sort_order"`
		IsActive  *bool  `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, bindError(err))
		return
	}
	category := models.Category{
		Name:      strings.TrimSpace(in.Name),
		SortOrder: in.SortOrder,
		IsActive:  available(in.IsActive),
	}
	if err := scoped(c, cc.Repo).CreateCategory(c.Request.Context(), &category); err != nil {
		utils.RespondError(c, storeError(err, msgCategoryNotFound))
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Categoria criada", category)
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	var in struct {
		Name      *string `json:"name"`
		SortOrder *int    `json:"sort_order"`
		IsActive  *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, bindError(err))
		return
	}
	fields := map[string]interface{}{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			utils.RespondError(c, services.BadRequest("Nome da categoria é obrigatório"))
			return
		}
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.SortOrder != nil {
		fields["sort_order"] = *in.SortOrder
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	if len(fields) == 0 {
		utils.RespondError(c, services.BadRequest("Nenhum campo para atualizar"))
		return
	}

	store := scoped(c, cc.Repo)
	if err := store.UpdateCategory(c.Request.Context(), c.Param("id"), fields); err != nil {
		utils.RespondError(c, storeError(err, msgCategoryNotFound))
		return
	}
	category, err := store.FindCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, storeError(err, msgCategoryNotFound))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Categoria atualizada", category)
}

func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	if err := scoped(c, cc.Repo).DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, storeError(err, msgCategoryNotFound))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Categoria removida", nil)
}

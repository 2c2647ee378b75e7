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

const msgProductNotFound = "Produto não encontrado"

type MenuController struct {
	Repo *repository.AdminRepository
}

func NewMenuController(repo *repository.AdminRepository) *MenuController {
	return &MenuController{Repo: repo}
}

type optionInput struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"gte=0"`
	IsAvailable *bool   `json:"is_available"`
}

type productInput struct {
	CategoryID  *string       `json:"category_id"`
	Name        string        `json:"name" binding:"required"`
	Description string        `json:"description"`
	Price       float64       `json:"price" binding:"gte=0"`
	ImageURL    string        `json:"image_url"`
	IsAvailable *bool         `json:"is_available"`
	Variations  []optionInput `json:"variations" binding:"dive"`
	Extras      []optionInput `json:"extras" binding:"dive"`
}

func available(v *bool) bool {
	return v == nil || *v
}

func (mc *MenuController) GetAllProducts(c *gin.Context) {
	products, err := scoped(c, mc.Repo).ListProducts(c.Request.Context())
	if err != nil {
		utils.RespondError(c, storeError(err, msgProductNotFound))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Lista de produtos", products)
}

func (mc *MenuController) GetProduct(c *gin.Context) {
	product, err := scoped(c, mc.Repo).FindProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, storeError(err, msgProductNotFound))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Detalhes do produto", product)
}

func (mc *MenuController) CreateProduct(c *gin.Context) {
	var in productInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, bindError(err))
		return
	}

	product := models.Product{
		CategoryID:  in.CategoryID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		ImageURL:    in.ImageURL,
		IsAvailable: available(in.IsAvailable),
	}
	for _, v := range in.Variations {
		product.Variations = append(product.Variations, models.ProductVariation{Name: v.Name, Price: v.Price, IsAvailable: available(v.IsAvailable)})
	}
	for _, e := range in.Extras {
		product.Extras = append(product.Extras, models.ProductExtra{Name: e.Name, Price: e.Price, IsAvailable: available(e.IsAvailable)})
	}

	store := scoped(c, mc.Repo)
	if err := store.CreateProduct(c.Request.Context(), &product); err != nil {
		utils.RespondError(c, storeError(err, "Categoria não encontrada"))
		return
	}
	utils.InfoLogger.WithField("tenant_id", store.TenantID()).Infof("product created: %s", product.Name)
	utils.RespondJSON(c, http.StatusCreated, "Produto criado", product)
}

// UpdateProduct -> partial update of the product row; options are managed on create.
func (mc *MenuController) UpdateProduct(c *gin.Context) {
	var in struct {
		CategoryID  *string  `json:"category_id"`
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		ImageURL    *string  `json:"image_url"`
		IsAvailable *bool    `json:"is_available"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, bindError(err))
		return
	}

	fields := map[string]interface{}{}
	if in.CategoryID != nil {
		if *in.CategoryID == "" {
			fields["category_id"] = nil
		} else {
			fields["category_id"] = *in.CategoryID
		}
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			utils.RespondError(c, services.BadRequest("Nome do produto é obrigatório"))
			return
		}
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			utils.RespondError(c, services.BadRequest("Preço inválido"))
			return
		}
		fields["price"] = *in.Price
	}
	if in.ImageURL != nil {
		fields["image_url"] = *in.ImageURL
	}
	if in.IsAvailable != nil {
		fields["is_available"] = *in.IsAvailable
	}
	if len(fields) == 0 {
		utils.RespondError(c, services.BadRequest("Nenhum campo para atualizar"))
		return
	}

	store := scoped(c, mc.Repo)
	if err := store.UpdateProduct(c.Request.Context(), c.Param("id"), fields); err != nil {
		utils.RespondError(c, storeError(err, msgProductNotFound))
		return
	}
	product, err := store.FindProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, storeError(err, msgProductNotFound))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Produto atualizado", product)
}

func (mc *MenuController) DeleteProduct(c *gin.Context) {
	if err := scoped(c, mc.Repo).DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, storeError(err, msgProductNotFound))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Produto removido", nil)
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-saas/middlewares"
	"github.com/yeremiapane/restaurant-saas/services"
	"github.com/yeremiapane/restaurant-saas/utils"
)

type WhatsAppController struct {
	WhatsApp *services.WhatsAppService
}

func NewWhatsAppController(svc *services.WhatsAppService) *WhatsAppController {
	return &WhatsAppController{WhatsApp: svc}
}

func (wc *WhatsAppController) CreateInstance(c *gin.Context) {
	inst, err := wc.WhatsApp.Create(c.Request.Context(), middlewares.CurrentTenantID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	// The API key is shown here once; later reads never include it.
	utils.RespondJSON(c, http.StatusCreated, "Instância criada com sucesso", gin.H{
		"instance_id": inst.InstanceID,
		"status":      inst.Status,
		"api_key":     inst.APIKey,
	})
}

func (wc *WhatsAppController) Connect(c *gin.Context) {
	var body struct {
		Phone string `json:"phone"`
	}
	// Body is optional; the worker sends only tenantId.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.RespondError(c, bindError(err))
			return
		}
	}

	conn, err := wc.WhatsApp.Connect(c.Request.Context(), middlewares.CurrentTenantID(c), body.Phone)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Conexão iniciada", conn)
}

func (wc *WhatsAppController) Disconnect(c *gin.Context) {
	if err := wc.WhatsApp.Disconnect(c.Request.Context(), middlewares.CurrentTenantID(c)); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Instância desconectada", nil)
}

func (wc *WhatsAppController) Delete(c *gin.Context) {
	if err := wc.WhatsApp.Delete(c.Request.Context(), middlewares.CurrentTenantID(c)); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Instância removida", nil)
}

func (wc *WhatsAppController) Status(c *gin.Context) {
	inst, err := wc.WhatsApp.Status(c.Request.Context(), middlewares.CurrentTenantID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Status da instância", inst)
}

func (wc *WhatsAppController) RotateAPIKey(c *gin.Context) {
	key, err := wc.WhatsApp.RotateAPIKey(c.Request.Context(), middlewares.CurrentTenantID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Nova chave gerada", gin.H{"api_key": key})
}

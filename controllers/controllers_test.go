package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-saas/config"
	"github.com/yeremiapane/restaurant-saas/controllers"
	"github.com/yeremiapane/restaurant-saas/database"
	"github.com/yeremiapane/restaurant-saas/jobs"
	"github.com/yeremiapane/restaurant-saas/kds"
	"github.com/yeremiapane/restaurant-saas/middlewares"
	"github.com/yeremiapane/restaurant-saas/models"
	"github.com/yeremiapane/restaurant-saas/repository"
	"github.com/yeremiapane/restaurant-saas/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	db     *gorm.DB
	repo   *repository.AdminRepository
	tenant *models.Tenant
	owner  *models.Profile
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	tenant := &models.Tenant{Name: "Pizzaria Bella", Slug: "bella", SubscriptionStatus: models.SubscriptionActive}
	require.NoError(t, db.Create(tenant).Error)
	owner := &models.Profile{TenantID: tenant.ID, Email: "owner@bella.com", FullName: "Maria", PasswordHash: "x", Role: models.RoleOwner}
	require.NoError(t, db.Create(owner).Error)

	return &fixture{db: db, repo: repository.NewAdminRepository(db), tenant: tenant, owner: owner}
}

// signedIn mimics SessionAuth for the fixture owner.
func (f *fixture) signedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.KeyProfile, f.owner)
		c.Set(middlewares.KeyTenantID, f.tenant.ID)
		c.Set(middlewares.KeyRole, f.owner.Role)
		c.Next()
	}
}

func (f *fixture) seedOrder(t *testing.T, tenantID, status string) *models.Order {
	t.Helper()
	order := &models.Order{TenantID: tenantID, Status: status, TotalAmount: 30, CustomerName: "João"}
	require.NoError(t, f.db.Create(order).Error)
	return order
}

type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func perform(t *testing.T, r http.Handler, method, path string, body interface{}, headers map[string]string) (int, response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func orderRouter(f *fixture) *gin.Engine {
	oc := controllers.NewOrderController(f.repo, services.NewOrderService(kds.NewHub()))
	r := gin.New()
	g := r.Group("/api/orders", f.signedIn())
	g.GET("", oc.GetOrders)
	g.GET("/:id", oc.GetOrder)
	g.POST("/:id/accept", oc.AcceptOrder)
	g.POST("/:id/complete", oc.CompleteOrder)
	return r
}

func TestOrderController_Lifecycle(t *testing.T) {
	f := newFixture(t)
	r := orderRouter(f)
	order := f.seedOrder(t, f.tenant.ID, models.OrderPending)

	code, resp := perform(t, r, http.MethodPost, "/api/orders/"+order.ID+"/complete", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Não é possível completar pedido com status 'pending'", resp.Error)

	code, resp = perform(t, r, http.MethodPost, "/api/orders/"+order.ID+"/accept", nil, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.True(t, resp.Success)
	assert.JSONEq(t, fmt.Sprintf(`{"order_id":%q,"status":"preparing"}`, order.ID), string(resp.Data))

	code, resp = perform(t, r, http.MethodPost, "/api/orders/"+order.ID+"/accept", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Não é possível aceitar pedido com status 'preparing'", resp.Error)

	code, resp = perform(t, r, http.MethodPost, "/api/orders/"+order.ID+"/complete", nil, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.Equal(t, "Pedido completado com sucesso", resp.Message)

	var stored models.Order
	require.NoError(t, f.db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderCompleted, stored.Status)
	require.NotNil(t, stored.CompletedBy)
	assert.Equal(t, f.owner.ID, *stored.CompletedBy)
}

func TestOrderController_OtherTenantOrderIsNotFound(t *testing.T) {
	f := newFixture(t)
	r := orderRouter(f)

	other := &models.Tenant{Name: "Outro", Slug: "outro"}
	require.NoError(t, f.db.Create(other).Error)
	foreign := f.seedOrder(t, other.ID, models.OrderPending)

	code, resp := perform(t, r, http.MethodPost, "/api/orders/"+foreign.ID+"/accept", nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Pedido não encontrado", resp.Error)

	code, _ = perform(t, r, http.MethodGet, "/api/orders/"+foreign.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, code)

	var stored models.Order
	require.NoError(t, f.db.First(&stored, "id = ?", foreign.ID).Error)
	assert.Equal(t, models.OrderPending, stored.Status)
}

func TestOrderController_ListOnlyOwnTenant(t *testing.T) {
	f := newFixture(t)
	r := orderRouter(f)

	other := &models.Tenant{Name: "Outro", Slug: "outro"}
	require.NoError(t, f.db.Create(other).Error)
	f.seedOrder(t, f.tenant.ID, models.OrderPending)
	f.seedOrder(t, other.ID, models.OrderPending)

	code, resp := perform(t, r, http.MethodGet, "/api/orders", nil, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(resp.Data, &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, f.tenant.ID, orders[0].TenantID)
}

func TestTenantController_GetInfo(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repo.CreateInstance(context.Background(), &models.WhatsAppInstance{
		TenantID: f.tenant.ID, InstanceID: "uaz-1", InstanceToken: "tok", APIKey: "key", Status: models.InstanceConnected,
	}))
	tc := controllers.NewTenantController(f.repo, services.NewTenantService(f.repo), services.NewIntakeService(nil))
	r := gin.New()
	r.GET("/api/tenant/info", tc.GetInfo)

	code, resp := perform(t, r, http.MethodGet, "/api/tenant/info", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, resp.Success)

	code, _ = perform(t, r, http.MethodGet, "/api/tenant/info", nil, map[string]string{"x-instance-token": "unknown"})
	assert.Equal(t, http.StatusNotFound, code)

	code, resp = perform(t, r, http.MethodGet, "/api/tenant/info", nil, map[string]string{"x-instance-token": "tok"})
	require.Equal(t, http.StatusOK, code, resp.Error)
	var info services.TenantInfo
	require.NoError(t, json.Unmarshal(resp.Data, &info))
	assert.Equal(t, f.tenant.ID, info.TenantID)
	assert.Equal(t, "bella", info.TenantSlug)
}

func TestTenantController_CreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	tc := controllers.NewTenantController(f.repo, services.NewTenantService(f.repo), services.NewIntakeService(nil))
	r := gin.New()
	r.POST("/api/tenant/orders", f.signedIn(), tc.CreateOrder)

	code, resp := perform(t, r, http.MethodPost, "/api/tenant/orders", map[string]interface{}{
		"customer_name":  "Ana",
		"customer_phone": "5511999999999",
		"items":          []map[string]interface{}{{"product_id": uuid.NewString(), "quantity": 1}},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Error, "Produto indisponível")
}

type stubGateway struct{}

func (stubGateway) InitInstance(_ context.Context, name string) (*services.UazapiInstance, error) {
	return &services.UazapiInstance{ID: "remote-" + name, Token: "token-" + name}, nil
}

func (stubGateway) ConnectInstance(context.Context, string, string) (*services.UazapiConnection, error) {
	return &services.UazapiConnection{Status: "connecting", QRCode: "qr"}, nil
}

func (stubGateway) InstanceStatus(context.Context, string) (string, error) {
	return "connected", nil
}

func (stubGateway) SetWebhook(context.Context, string, string) error {
	return nil
}

func (stubGateway) DisconnectInstance(context.Context, string) error {
	return nil
}

func (stubGateway) DeleteInstance(context.Context, string) error {
	return nil
}

func TestWhatsAppController_CreateShowsKeyOnce(t *testing.T) {
	f := newFixture(t)
	wc := controllers.NewWhatsAppController(services.NewWhatsAppService(f.repo, stubGateway{}, config.UazapiConfig{ConnectRetries: 1}))
	r := gin.New()
	g := r.Group("/api/whatsapp", f.signedIn())
	g.POST("/instance", wc.CreateInstance)
	g.GET("/status", wc.Status)

	code, resp := perform(t, r, http.MethodPost, "/api/whatsapp/instance", nil, nil)
	require.Equal(t, http.StatusCreated, code, resp.Error)
	var created struct {
		InstanceID string `json:"instance_id"`
		APIKey     string `json:"api_key"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, "remote-bella", created.InstanceID)
	assert.NotEmpty(t, created.APIKey)

	code, resp = perform(t, r, http.MethodPost, "/api/whatsapp/instance", nil, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Tenant já possui uma instância do WhatsApp", resp.Error)

	code, resp = perform(t, r, http.MethodGet, "/api/whatsapp/status", nil, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.NotContains(t, string(resp.Data), created.APIKey)
	assert.NotContains(t, string(resp.Data), "token-bella")
}

func TestWhatsAppController_ConnectBody(t *testing.T) {
	f := newFixture(t)
	wc := controllers.NewWhatsAppController(services.NewWhatsAppService(f.repo, stubGateway{}, config.UazapiConfig{ConnectRetries: 1}))
	r := gin.New()
	g := r.Group("/api/whatsapp", f.signedIn())
	g.POST("/instance", wc.CreateInstance)
	g.POST("/connect", wc.Connect)

	code, resp := perform(t, r, http.MethodPost, "/api/whatsapp/instance", nil, nil)
	require.Equal(t, http.StatusCreated, code, resp.Error)

	code, resp = perform(t, r, http.MethodPost, "/api/whatsapp/connect", nil, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)

	code, resp = perform(t, r, http.MethodPost, "/api/whatsapp/connect", map[string]string{"phone": "+55 11 98888-7777"}, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)

	req := httptest.NewRequest(http.MethodPost, "/api/whatsapp/connect", strings.NewReader(`{"phone":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Dados inválidos")
}

func TestWebhookController_SubscriptionChanged(t *testing.T) {
	notification := map[string]interface{}{
		"type":       "UPDATE",
		"table":      "tenants",
		"record":     map[string]string{"id": "t-1", "subscription_status": "cancelled"},
		"old_record": map[string]string{"id": "t-1", "subscription_status": "expired"},
	}

	t.Run("dispatches lifecycle event", func(t *testing.T) {
		rec := &jobs.Recorder{}
		r := gin.New()
		r.POST("/hook", controllers.NewWebhookController(services.NewSubscriptionWatcher(rec)).SubscriptionChanged)

		code, resp := perform(t, r, http.MethodPost, "/hook", notification, nil)
		require.Equal(t, http.StatusOK, code, resp.Error)
		assert.JSONEq(t, `{"event":"subscription/cancelled"}`, string(resp.Data))
		require.Len(t, rec.Events(), 1)
	})

	t.Run("no-op change", func(t *testing.T) {
		rec := &jobs.Recorder{}
		r := gin.New()
		r.POST("/hook", controllers.NewWebhookController(services.NewSubscriptionWatcher(rec)).SubscriptionChanged)

		code, resp := perform(t, r, http.MethodPost, "/hook", map[string]interface{}{
			"type":  "UPDATE",
			"table": "orders",
		}, nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Nenhuma ação necessária", resp.Message)
		assert.Empty(t, rec.Events())
	})

	t.Run("dispatch failure", func(t *testing.T) {
		rec := &jobs.Recorder{Err: errors.New("broker down")}
		r := gin.New()
		r.POST("/hook", controllers.NewWebhookController(services.NewSubscriptionWatcher(rec)).SubscriptionChanged)

		code, resp := perform(t, r, http.MethodPost, "/hook", notification, nil)
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Error)
	})
}

func TestAdminController_AnalyticsRejectsBadPeriod(t *testing.T) {
	f := newFixture(t)
	ac := controllers.NewAdminController(f.repo, services.NewDashboardService(time.UTC))
	r := gin.New()
	r.GET("/analytics", f.signedIn(), ac.GetAnalytics)

	code, resp := perform(t, r, http.MethodGet, "/analytics?days=0", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Período inválido", resp.Error)

	code, _ = perform(t, r, http.MethodGet, "/analytics?days=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = perform(t, r, http.MethodGet, "/analytics?days=7", nil, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)
}

func TestMenuController_ProductCRUD(t *testing.T) {
	f := newFixture(t)
	mc := controllers.NewMenuController(f.repo)
	r := gin.New()
	g := r.Group("/api/menu", f.signedIn())
	g.POST("/products", mc.CreateProduct)
	g.GET("/products/:id", mc.GetProduct)
	g.DELETE("/products/:id", mc.DeleteProduct)

	code, resp := perform(t, r, http.MethodPost, "/api/menu/products", map[string]interface{}{"price": 10}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = perform(t, r, http.MethodPost, "/api/menu/products", map[string]interface{}{
		"name":       "Margherita",
		"price":      39.9,
		"variations": []map[string]interface{}{{"name": "Grande", "price": 49.9}},
	}, nil)
	require.Equal(t, http.StatusCreated, code, resp.Error)
	var product models.Product
	require.NoError(t, json.Unmarshal(resp.Data, &product))
	assert.Equal(t, f.tenant.ID, product.TenantID)
	assert.True(t, product.IsAvailable)
	require.Len(t, product.Variations, 1)

	code, _ = perform(t, r, http.MethodGet, "/api/menu/products/"+product.ID, nil, nil)
	assert.Equal(t, http.StatusOK, code)

	code, resp = perform(t, r, http.MethodDelete, "/api/menu/products/"+product.ID, nil, nil)
	require.Equal(t, http.StatusOK, code, resp.Error)

	code, _ = perform(t, r, http.MethodGet, "/api/menu/products/"+product.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

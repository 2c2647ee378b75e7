package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-saas/config"
	"github.com/yeremiapane/restaurant-saas/controllers"
	"github.com/yeremiapane/restaurant-saas/jobs"
	"github.com/yeremiapane/restaurant-saas/kds"
	"github.com/yeremiapane/restaurant-saas/metrics"
	"github.com/yeremiapane/restaurant-saas/middlewares"
	"github.com/yeremiapane/restaurant-saas/models"
	"github.com/yeremiapane/restaurant-saas/repository"
	"github.com/yeremiapane/restaurant-saas/services"
	"github.com/yeremiapane/restaurant-saas/utils"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP API is built from.
type Deps struct {
	Config     *config.Config
	DB         *gorm.DB
	Dispatcher jobs.Dispatcher
	Gateway    services.WhatsAppGateway
	Hub        *kds.Hub
}

func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if d.Hub == nil {
		d.Hub = kds.NewHub()
	}

	repo := repository.NewAdminRepository(d.DB)
	signer := utils.NewSessionSigner(cfg.Session.Secret, cfg.Session.TTL)
	auth := services.NewAuthService(repo, signer)
	gate := services.NewAuthGate(repo)
	tenants := services.NewTenantService(repo)

	orderController := controllers.NewOrderController(repo, services.NewOrderService(d.Hub))
	tenantController := controllers.NewTenantController(repo, tenants, services.NewIntakeService(d.Hub))
	whatsappController := controllers.NewWhatsAppController(services.NewWhatsAppService(repo, d.Gateway, cfg.Uazapi))
	webhookController := controllers.NewWebhookController(services.NewSubscriptionWatcher(d.Dispatcher))
	userController := controllers.NewUserController(repo, auth, tenants, cfg.Session.CookieName, cfg.Server.GinMode == gin.ReleaseMode)
	adminController := controllers.NewAdminController(repo, services.NewDashboardService(time.Local))
	menuController := controllers.NewMenuController(repo)
	categoryController := controllers.NewCategoryController(repo)
	kdsController := controllers.NewKDSController(d.Hub, cfg.Server.CORSOrigin)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.Server.CORSOrigin))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	session := middlewares.SessionAuth(auth, cfg.Session.CookieName)
	sessionOrInternal := middlewares.SessionOrInternal(auth, cfg.Session.CookieName, cfg.InternalSecret)
	ownerOnly := middlewares.RequireRole(models.RoleOwner)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		strict := middlewares.NewRateLimiter(10, time.Minute)
		authGroup.POST("/register", strict.RateLimit(), userController.Register)
		authGroup.POST("/login", strict.RateLimit(), userController.Login)
		authGroup.POST("/logout", userController.Logout)
		authGroup.GET("/me", session, userController.GetProfile)
	}

	orders := api.Group("/orders", session)
	{
		orders.GET("", orderController.GetOrders)
		orders.GET("/ws", kdsController.KDSHandler)
		orders.GET("/:id", orderController.GetOrder)
		orders.POST("/:id/accept", orderController.AcceptOrder)
		orders.POST("/:id/complete", orderController.CompleteOrder)
	}

	// Integration API for the WhatsApp bot.
	integration := middlewares.NewRateLimiter(120, time.Minute)
	tenant := api.Group("/tenant", integration.RateLimit())
	{
		tenant.GET("/info", tenantController.GetInfo)
		gated := tenant.Group("", middlewares.IntegrationAuth(gate))
		gated.GET("/products", tenantController.GetProducts)
		gated.GET("/categories", tenantController.GetCategories)
		gated.POST("/orders", tenantController.CreateOrder)
	}

	whatsapp := api.Group("/whatsapp")
	{
		whatsapp.POST("/instance", sessionOrInternal, ownerOnly, whatsappController.CreateInstance)
		whatsapp.POST("/connect", sessionOrInternal, ownerOnly, whatsappController.Connect)
		whatsapp.POST("/disconnect", sessionOrInternal, ownerOnly, whatsappController.Disconnect)
		whatsapp.POST("/delete", sessionOrInternal, ownerOnly, whatsappController.Delete)
		whatsapp.GET("/status", session, whatsappController.Status)
		whatsapp.POST("/api-key", session, ownerOnly, whatsappController.RotateAPIKey)
	}

	api.POST("/webhooks/subscription", webhookController.SubscriptionChanged)

	menu := api.Group("/menu", session)
	{
		menu.GET("/products", menuController.GetAllProducts)
		menu.GET("/products/:id", menuController.GetProduct)
		menu.POST("/products", menuController.CreateProduct)
		menu.PATCH("/products/:id", menuController.UpdateProduct)
		menu.DELETE("/products/:id", ownerOnly, menuController.DeleteProduct)

		menu.GET("/categories", categoryController.GetAllCategories)
		menu.POST("/categories", categoryController.CreateCategory)
		menu.PATCH("/categories/:id", categoryController.UpdateCategory)
		menu.DELETE("/categories/:id", ownerOnly, categoryController.DeleteCategory)
	}

	dashboard := api.Group("/dashboard", session)
	{
		dashboard.GET("/stats", adminController.GetDashboardStats)
		dashboard.GET("/analytics", adminController.GetAnalytics)
	}

	settings := api.Group("/settings", session)
	{
		settings.GET("", userController.GetSettings)
		settings.PATCH("", ownerOnly, userController.UpdateSettings)
	}

	return r
}

package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sangkips/pos-api/internal/config"
	"github.com/sangkips/pos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/metrics"
	"github.com/sangkips/pos-api/internal/presentation/http/handler"
	"github.com/sangkips/pos-api/internal/presentation/http/middleware"
	"github.com/sangkips/pos-api/internal/presentation/ws"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth            *handler.AuthHandler
	User            *handler.UserHandler
	Category        *handler.CategoryHandler
	Product         *handler.ProductHandler
	Invoice         *handler.InvoiceHandler
	Dashboard       *handler.DashboardHandler
	PaymentSettings *handler.PaymentSettingsHandler
	CounterToken    *handler.CounterTokenHandler
	Printer         *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	Auth            middleware.Authenticator
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.UserRateLimiter
	Metrics         *metrics.Metrics
	Registry        prometheus.Gatherer
	Hub             *ws.Hub
	Logger          *zap.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.MetricsMiddleware(deps.Metrics))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})
	if deps.Registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}
	if deps.Hub != nil {
		router.GET("/ws/counters", ws.ServeWs(deps.Hub, deps.Auth))
	}
	router.Static("/uploads", deps.Cfg.Storage.Path)

	protected := []gin.HandlerFunc{middleware.AuthMiddleware(deps.Auth, deps.Cfg.Cookie.Name)}
	if deps.RateLimiter != nil {
		protected = append(protected, deps.RateLimiter.Middleware())
	}
	adminOnly := append(protected[:len(protected):len(protected)], middleware.RequireRole(enum.RoleAdmin))

	registerUserRoutes(router, h, protected, adminOnly)
	registerCatalogRoutes(router, h, protected, adminOnly)
	registerInvoiceRoutes(router, h, deps, protected)
	registerDashboardRoutes(router, h, protected, adminOnly)
	registerPaymentSettingsRoutes(router, h, adminOnly)

	tokens := router.Group("/counter-tokens", protected...)
	tokens.GET("/", h.CounterToken.ListToday)

	printer := router.Group("/printer", protected...)
	printer.GET("/status", h.Printer.GetStatus)

	return router
}

func registerUserRoutes(router *gin.Engine, h *Handlers, protected, adminOnly []gin.HandlerFunc) {
	users := router.Group("/user")
	{
		users.POST("/login", h.Auth.Login)
		users.POST("/logout", h.Auth.Logout)
	}

	self := router.Group("/user", protected...)
	{
		self.GET("/", h.Auth.GetProfile)
		self.PUT("/changePassword", h.Auth.ChangePassword)
	}

	admin := router.Group("/user", adminOnly...)
	{
		admin.POST("/register", h.User.Register)
		admin.GET("/allUsers", h.User.AllUsers)
		admin.PUT("/blockUnblock/:id", h.User.BlockUnblock)
	}
}

func registerCatalogRoutes(router *gin.Engine, h *Handlers, protected, adminOnly []gin.HandlerFunc) {
	categories := router.Group("/category", protected...)
	categories.GET("/", h.Category.List)
	categoryAdmin := router.Group("/category", adminOnly...)
	{
		categoryAdmin.POST("/", h.Category.Save)
		categoryAdmin.DELETE("/:id", h.Category.Delete)
	}

	products := router.Group("/product", protected...)
	{
		products.GET("/", h.Product.List)
		products.GET("/categoryWiseList", h.Product.CategoryWiseList)
		products.GET("/:id", h.Product.Get)
	}
	productAdmin := router.Group("/product", adminOnly...)
	{
		productAdmin.POST("/", h.Product.Save)
		productAdmin.DELETE("/:id", h.Product.Delete)
	}
}

func registerInvoiceRoutes(router *gin.Engine, h *Handlers, deps *Deps, protected []gin.HandlerFunc) {
	invoices := router.Group("/invoice", protected...)
	{
		invoices.GET("/", h.Invoice.List)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.GET("/:id/receipt", h.Printer.Receipt)
		invoices.POST("/:id/print", h.Printer.PrintTickets)
	}

	create := []gin.HandlerFunc{h.Invoice.Create}
	if deps.IdempotencyRepo != nil {
		create = append([]gin.HandlerFunc{middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:   deps.IdempotencyRepo,
			Logger: deps.Logger,
		})}, create...)
	}
	invoices.POST("/", create...)
}

func registerDashboardRoutes(router *gin.Engine, h *Handlers, protected, adminOnly []gin.HandlerFunc) {
	dashboard := router.Group("/dashboard", protected...)
	dashboard.GET("/sales-overview", h.Dashboard.SalesOverview)

	admin := router.Group("/dashboard", adminOnly...)
	{
		admin.GET("/product-insights", h.Dashboard.ProductInsights)
		admin.GET("/user-stats", h.Dashboard.UserStats)
	}
}

func registerPaymentSettingsRoutes(router *gin.Engine, h *Handlers, adminOnly []gin.HandlerFunc) {
	router.GET("/payment-settings/public", h.PaymentSettings.GetPublic)

	settings := router.Group("/payment-settings", adminOnly...)
	{
		settings.GET("/", h.PaymentSettings.Get)
		settings.PUT("/", h.PaymentSettings.Update)

		settings.POST("/upi", h.PaymentSettings.AddUpi)
		settings.PUT("/upi/:id", h.PaymentSettings.UpdateUpi)
		settings.DELETE("/upi/:id", h.PaymentSettings.DeleteUpi)
		settings.PUT("/upi/:id/default", h.PaymentSettings.SetDefaultUpi)

		settings.POST("/printers", h.PaymentSettings.AddPrinter)
		settings.PUT("/printers/:id", h.PaymentSettings.UpdatePrinter)
		settings.DELETE("/printers/:id", h.PaymentSettings.DeletePrinter)
		settings.PUT("/printers/:id/default", h.PaymentSettings.SetDefaultPrinter)
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/config"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/infrastructure/cache"
	"github.com/sangkips/pos-api/internal/infrastructure/database"
	"github.com/sangkips/pos-api/internal/infrastructure/repository"
	"github.com/sangkips/pos-api/internal/metrics"
	"github.com/sangkips/pos-api/internal/presentation/http/handler"
	"github.com/sangkips/pos-api/internal/presentation/http/middleware"
	"github.com/sangkips/pos-api/internal/presentation/http/routes"
	"github.com/sangkips/pos-api/internal/presentation/ws"
	"github.com/sangkips/pos-api/pkg/clock"
	"github.com/sangkips/pos-api/pkg/email"
	"github.com/sangkips/pos-api/pkg/logger"
	"github.com/sangkips/pos-api/pkg/printer"
	"github.com/sangkips/pos-api/pkg/storage"
	"github.com/sangkips/pos-api/pkg/utils"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := cfg.App.Location()
	if err != nil {
		zlog.Fatal("invalid APP_TIMEZONE", zap.String("timezone", cfg.App.Timezone), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.IsProduction(), zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.AutoMigrate(db, zlog); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := database.SeedAdmin(ctx, db, cfg.Admin, zlog); err != nil {
		zlog.Warn("failed to seed admin user", zap.Error(err))
	}

	// Initialize repositories
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	salesRepo := repository.NewSalesRepository(db)
	settingsRepo := repository.NewPaymentSettingsRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	var tokenRepo domainRepo.CounterTokenRepository
	switch cfg.Token.Store {
	case "redis":
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			zlog.Fatal("failed to connect to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer client.Close()
		tokenRepo = cache.NewRedisTokenCounter(client)
	default:
		tokenRepo = repository.NewCounterTokenRepository(db)
	}
	zlog.Info("counter token store selected", zap.String("store", cfg.Token.Store))

	numbers, err := snowflake.NewNode(cfg.Invoice.SnowflakeNode)
	if err != nil {
		zlog.Fatal("invalid SNOWFLAKE_NODE", zap.Int64("node", cfg.Invoice.SnowflakeNode), zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	hub := ws.NewHub(zlog)
	go hub.Run(ctx)

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
		AppName:      cfg.App.Name,
		LoginURL:     cfg.Email.LoginURL,
	})
	images := storage.NewLocal(cfg.Storage.Path, cfg.App.BaseURL, cfg.Storage.UploadMaxSize)

	// Initialize thermal printer
	printerConnection := cfg.Printer.Connection
	thermalPrinter, err := printer.NewPrinterFromConfig(printerConnection, cfg.Printer.USBPath, cfg.Printer.Address)
	if err != nil {
		zlog.Warn("failed to initialize printer, tickets will not be printed", zap.Error(err))
		thermalPrinter = printer.NewNullPrinter()
		printerConnection = "none"
	}

	// Initialize services
	clk := clock.New(loc)
	authService := service.NewAuthService(userRepo, jwtManager)
	userService := service.NewUserService(userRepo, emailService, zlog)
	categoryService := service.NewCategoryService(txManager, categoryRepo, productRepo, images, zlog)
	productService := service.NewProductService(txManager, productRepo, categoryRepo, images, zlog)
	settingsService := service.NewPaymentSettingsService(settingsRepo)
	tokenService := service.NewCounterTokenService(tokenRepo, clk, loc, appMetrics)
	invoiceService := service.NewInvoiceService(service.InvoiceServiceDeps{
		Tx:           txManager,
		InvoiceRepo:  invoiceRepo,
		ProductRepo:  productRepo,
		SettingsRepo: settingsRepo,
		Tokens:       tokenService,
		Numbers:      numbers,
		Prefix:       cfg.Invoice.Prefix,
		Publisher:    hub,
		Metrics:      appMetrics,
		Clock:        clk,
		Location:     loc,
		Logger:       zlog,
	})
	salesService := service.NewSalesService(salesRepo, userRepo, clk, loc)
	printerService := service.NewPrinterService(thermalPrinter, printerConnection, invoiceService, settingsService, cfg.App.Name, loc, zlog)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth: handler.NewAuthHandler(authService, handler.CookieSettings{
			Name:   cfg.Cookie.Name,
			Domain: cfg.Cookie.Domain,
			MaxAge: cfg.JWT.Expiry,
		}),
		User:            handler.NewUserHandler(userService),
		Category:        handler.NewCategoryHandler(categoryService),
		Product:         handler.NewProductHandler(productService),
		Invoice:         handler.NewInvoiceHandler(invoiceService),
		Dashboard:       handler.NewDashboardHandler(salesService),
		PaymentSettings: handler.NewPaymentSettingsHandler(settingsService),
		CounterToken:    handler.NewCounterTokenHandler(tokenService),
		Printer:         handler.NewPrinterHandler(printerService),
	}

	rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfigFrom(cfg.RateLimit.Requests, cfg.RateLimit.Duration))
	defer rateLimiter.Stop()

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		Auth:            authService,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		Metrics:         appMetrics,
		Registry:        registry,
		Hub:             hub,
		Logger:          zlog,
	})

	go purgeIdempotencyKeys(ctx, idempotencyRepo, zlog)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("starting server",
			zap.String("service", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
		os.Exit(1)
	}
}

// purgeIdempotencyKeys removes expired keys once an hour until ctx is done
func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, log *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx, time.Now())
			if err != nil {
				log.Warn("failed to purge idempotency keys", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Debug("purged idempotency keys", zap.Int64("count", n))
			}
		}
	}
}

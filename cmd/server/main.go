package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/rentfolio/backend/internal/application/billing"
	rentalapp "github.com/rentfolio/backend/internal/application/rental"
	"github.com/rentfolio/backend/internal/infrastructure/config"
	"github.com/rentfolio/backend/internal/infrastructure/logger"
	"github.com/rentfolio/backend/internal/infrastructure/persistence"
	"github.com/rentfolio/backend/internal/infrastructure/scheduler"
	"github.com/rentfolio/backend/internal/interfaces/http/handler"
	"github.com/rentfolio/backend/internal/interfaces/http/middleware"
	"github.com/rentfolio/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Rentfolio Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	unitRepo := persistence.NewGormUnitRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB, cfg.Billing.NumberPrefix)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)

	// Initialize application services
	rentalService := rentalapp.NewRentalService(propertyRepo, unitRepo, tenantRepo)
	invoiceService := billingapp.NewInvoiceService(
		invoiceRepo,
		paymentRepo,
		tenantRepo,
		unitRepo,
		propertyRepo,
		billingapp.WithNumberMaxRetries(cfg.Billing.NumberMaxRetries),
	)

	// Start the overdue scan loop
	overdueScheduler := scheduler.NewOverdueScheduler(invoiceService, log, scheduler.OverdueSchedulerConfig{
		Enabled:      cfg.Scheduler.Enabled,
		ScanInterval: cfg.Scheduler.OverdueScanInterval,
	})
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	if err := overdueScheduler.Start(schedulerCtx); err != nil {
		log.Fatal("Failed to start overdue scheduler", zap.Error(err))
	}

	// Set up gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handler.RegisterValidations(); err != nil {
		log.Fatal("Failed to register custom validations", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Register routes
	r := router.NewRouter(engine)
	r.Register(handler.NewRentalHandler(rentalService)).
		Register(handler.NewInvoiceHandler(invoiceService)).
		Register(handler.NewSystemHandler(db))
	r.Setup()

	// Create HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := overdueScheduler.Stop(ctx); err != nil {
		log.Error("Overdue scheduler shutdown failed", zap.Error(err))
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

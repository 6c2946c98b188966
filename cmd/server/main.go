package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkweon/barunpos-backend/config"
	"github.com/mkweon/barunpos-backend/internal/app/controller"
	"github.com/mkweon/barunpos-backend/internal/app/repository"
	"github.com/mkweon/barunpos-backend/internal/app/service"
	"github.com/mkweon/barunpos-backend/internal/db"
	"github.com/mkweon/barunpos-backend/internal/middleware"
	"github.com/mkweon/barunpos-backend/internal/router"
	"github.com/mkweon/barunpos-backend/internal/scheduler"
	"github.com/mkweon/barunpos-backend/internal/storage"
	"github.com/mkweon/barunpos-backend/internal/websocket"
	"github.com/mkweon/barunpos-backend/pkg/logger"
	"github.com/mkweon/barunpos-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logger.Initialize(logger.Config{
		Level:       cfg.Server.LogLevel,
		Format:      cfg.Server.LogFormat,
		EnableColor: cfg.Server.EnableColor,
	})

	logger.Info("Starting BarunPOS Backend Server", map[string]interface{}{
		"mode":      cfg.Server.Mode,
		"port":      cfg.Server.Port,
		"log_level": cfg.Server.LogLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed database (optional)
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Redis backs the token blacklist; without it logout is best effort
	if cfg.Redis.Enabled {
		if err := redis.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			logger.Warn("Failed to connect to Redis, token blacklist disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer redis.Close()
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	customerRepo := repository.NewCustomerRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	inventoryRepo := repository.NewInventoryRepository(db.GetDB())
	saleRepo := repository.NewSaleRepository(db.GetDB())
	registerRepo := repository.NewRegisterRepository(db.GetDB())
	tableRepo := repository.NewTableRepository(db.GetDB())

	// WebSocket hub for order boards
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWT)
	productService := service.NewProductService(productRepo)
	inventoryService := service.NewInventoryService(inventoryRepo, productRepo, db.GetDB())
	checkoutService := service.NewCheckoutService(
		saleRepo,
		productRepo,
		customerRepo,
		tableRepo,
		inventoryService,
		hub,
		db.GetDB(),
	)
	saleService := service.NewSaleService(saleRepo, tableRepo, inventoryService, hub, db.GetDB())
	registerService := service.NewRegisterService(registerRepo, saleRepo, db.GetDB())
	exportService := service.NewExportService(inventoryRepo)

	// Object storage is optional; the upload endpoint degrades to 503
	var s3Storage *storage.S3Storage
	if cfg.S3.Enabled {
		s3Storage = storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.PresignExpiry,
		)
		logger.Info("S3 storage initialized", map[string]interface{}{
			"bucket": cfg.S3.Bucket,
			"region": cfg.S3.Region,
		})
	}

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService)
	saleController := controller.NewSaleController(checkoutService, saleService)
	inventoryController := controller.NewInventoryController(inventoryService, exportService)
	registerController := controller.NewRegisterController(registerService)
	tableController := controller.NewTableController(tableRepo, db.GetDB())
	uploadController := controller.NewUploadController(s3Storage)
	eventsController := controller.NewEventsController(hub)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Orphaned-sale sweep
	if cfg.Reconcile.Enabled {
		reconcileScheduler := scheduler.NewReconcileScheduler(saleRepo, &cfg.Reconcile)
		if err := reconcileScheduler.Start(); err != nil {
			logger.Error("Failed to start reconciliation scheduler", err)
		} else {
			defer reconcileScheduler.Stop()
		}
	}

	// Setup router
	r := router.NewRouter(
		authController,
		productController,
		saleController,
		inventoryController,
		registerController,
		tableController,
		uploadController,
		eventsController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}

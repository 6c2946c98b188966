package router

import (
	"github.com/gin-gonic/gin"
	"github.com/mkweon/barunpos-backend/config"
	"github.com/mkweon/barunpos-backend/internal/app/controller"
	"github.com/mkweon/barunpos-backend/internal/app/model"
	"github.com/mkweon/barunpos-backend/internal/middleware"
)

type Router struct {
	authController      *controller.AuthController
	productController   *controller.ProductController
	saleController      *controller.SaleController
	inventoryController *controller.InventoryController
	registerController  *controller.RegisterController
	tableController     *controller.TableController
	uploadController    *controller.UploadController
	eventsController    *controller.EventsController
	authMiddleware      *middleware.AuthMiddleware
	config              *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	saleController *controller.SaleController,
	inventoryController *controller.InventoryController,
	registerController *controller.RegisterController,
	tableController *controller.TableController,
	uploadController *controller.UploadController,
	eventsController *controller.EventsController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:      authController,
		productController:   productController,
		saleController:      saleController,
		inventoryController: inventoryController,
		registerController:  registerController,
		tableController:     tableController,
		uploadController:    uploadController,
		eventsController:    eventsController,
		authMiddleware:      authMiddleware,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.Mode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "BarunPOS API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.Refresh)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
			auth.POST("/staff",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(model.RoleAdmin, model.RoleManager),
				r.authController.RegisterStaff,
			)
		}

		products := v1.Group("/products")
		products.Use(r.authMiddleware.Authenticate())
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:id", r.productController.GetProduct)

			products.POST("",
				r.authMiddleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleInventory),
				r.productController.CreateProduct,
			)
			products.PUT("/:id",
				r.authMiddleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleInventory),
				r.productController.UpdateProduct,
			)
			products.DELETE("/:id",
				r.authMiddleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleInventory),
				r.productController.DeactivateProduct,
			)
		}

		sales := v1.Group("/sales")
		sales.Use(r.authMiddleware.Authenticate())
		{
			sales.POST("/checkout", r.saleController.Checkout)
			sales.GET("", r.saleController.ListSales)
			sales.GET("/:id", r.saleController.GetSale)
			sales.PUT("/:id/complete", r.saleController.CompleteSale)
			sales.PUT("/:id/cancel", r.saleController.CancelSale)
		}

		inventory := v1.Group("/inventory")
		inventory.Use(r.authMiddleware.Authenticate())
		{
			inventory.GET("/stock", r.inventoryController.ListStock)
			inventory.GET("/stock/:productId", r.inventoryController.GetStock)
			inventory.GET("/transactions", r.inventoryController.ListTransactions)
			inventory.GET("/transactions/export", r.inventoryController.ExportTransactions)
			inventory.GET("/verify/:productId", r.inventoryController.VerifyLedger)

			inventory.POST("/transactions",
				r.authMiddleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleInventory),
				r.inventoryController.RecordTransaction,
			)
		}

		registers := v1.Group("/registers")
		registers.Use(r.authMiddleware.Authenticate())
		{
			registers.GET("", r.registerController.ListSessions)
			registers.POST("", r.registerController.OpenSession)
			registers.PUT("/:id/close", r.registerController.CloseSession)
			registers.GET("/:id/summary", r.registerController.GetSessionSummary)

			registers.PUT("/:id/archive",
				r.authMiddleware.RequireRole(model.RoleAdmin, model.RoleManager),
				r.registerController.Archive,
			)
			registers.PUT("/:id/unarchive",
				r.authMiddleware.RequireRole(model.RoleAdmin, model.RoleManager),
				r.registerController.Unarchive,
			)
		}

		tables := v1.Group("/tables")
		tables.Use(r.authMiddleware.Authenticate())
		{
			tables.GET("", r.tableController.ListTables)
			tables.POST("",
				r.authMiddleware.RequireRole(model.RoleAdmin, model.RoleManager),
				r.tableController.CreateTable,
			)
			tables.PUT("/:id/status", r.tableController.UpdateTableStatus)
		}

		uploads := v1.Group("/uploads")
		uploads.Use(r.authMiddleware.Authenticate())
		{
			uploads.POST("/presign", r.uploadController.Presign)
		}

		// Order boards authenticate via a token query parameter since
		// browsers cannot set headers on WebSocket upgrades
		v1.GET("/ws/orders", r.authMiddleware.Authenticate(), r.eventsController.ServeWS)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

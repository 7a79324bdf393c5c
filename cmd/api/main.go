package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/safo-124/high-purchase-sub010/internal/bulk"
	"github.com/safo-124/high-purchase-sub010/internal/database"
	"github.com/safo-124/high-purchase-sub010/internal/events"
	"github.com/safo-124/high-purchase-sub010/internal/handler"
	"github.com/safo-124/high-purchase-sub010/internal/middleware"
	"github.com/safo-124/high-purchase-sub010/internal/repository"
	"github.com/safo-124/high-purchase-sub010/internal/service"
)

// @title           Hire-Purchase Ledger API
// @version         1.0
// @description     Multi-tenant purchase ledger with payment confirmation, refunds, wallets, and waybills.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	if err := database.Bootstrap(db); err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}

	// Set up event hub for live payment/refund notifications
	hub := events.NewHub()
	go hub.Run()

	// Repositories
	txManager := repository.NewTransactionManager(db)
	businessRepo := repository.NewBusinessRepository(db)
	shopRepo := repository.NewShopRepository(db)
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	refundRepo := repository.NewRefundRepository(db)
	waybillRepo := repository.NewWaybillRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Services
	userService := service.NewUserService(userRepo, middleware.GetJWTSecret())
	businessService := service.NewBusinessService(businessRepo, auditRepo, txManager)
	shopService := service.NewShopService(shopRepo)
	customerService := service.NewCustomerService(customerRepo)
	productService := service.NewProductService(productRepo, shopRepo)
	purchaseService := service.NewPurchaseService(
		purchaseRepo, paymentRepo, refundRepo,
		customerRepo, shopRepo, productRepo, businessRepo,
		auditRepo, txManager, hub,
	)
	paymentService := service.NewPaymentService(
		paymentRepo, purchaseRepo, refundRepo, customerRepo,
		auditRepo, txManager, hub,
	)
	refundService := service.NewRefundService(
		refundRepo, purchaseRepo, paymentRepo, customerRepo, businessRepo,
		auditRepo, txManager, hub,
	)
	waybillService := service.NewWaybillService(
		waybillRepo, purchaseRepo, businessRepo,
		auditRepo, txManager, hub,
	)
	walletService := service.NewWalletService(customerRepo, auditRepo, txManager)
	receiptService := service.NewReceiptService(paymentRepo, customerRepo, businessRepo)

	// Bulk import/export
	purchaseImporter := &bulk.PurchaseImporter{
		Shops:     shopRepo,
		Customers: customerRepo,
		Products:  productRepo,
		Purchases: purchaseRepo,
		Creator:   purchaseService,
	}
	productImporter := &bulk.ProductImporter{
		Products: productRepo,
		Shops:    shopRepo,
	}
	purchaseExporter := &bulk.PurchaseExporter{Purchases: purchaseRepo}

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	businessHandler := handler.NewBusinessHandler(businessService)
	catalogHandler := handler.NewCatalogHandler(shopService, productService)
	customerHandler := handler.NewCustomerHandler(customerService, walletService, receiptService)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	paymentHandler := handler.NewPaymentHandler(paymentService, receiptService)
	refundHandler := handler.NewRefundHandler(refundService)
	waybillHandler := handler.NewWaybillHandler(waybillService)
	bulkHandler := handler.NewBulkHandler(purchaseImporter, productImporter, purchaseExporter, auditRepo)
	auditHandler := handler.NewAuditHandler(auditRepo)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		events.ServeWs(hub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	root := router.Group("")
	userHandler.RegisterRoutes(root)
	businessHandler.RegisterRoutes(root)
	catalogHandler.RegisterRoutes(root)
	customerHandler.RegisterRoutes(root)
	purchaseHandler.RegisterRoutes(root)
	paymentHandler.RegisterRoutes(root)
	refundHandler.RegisterRoutes(root)
	waybillHandler.RegisterRoutes(root)
	bulkHandler.RegisterRoutes(root)
	auditHandler.RegisterRoutes(root)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

package main

import (
	"github.com/gin-gonic/gin"
	userAPI "github.com/ridloal/e-commerce-go-order-core/internal/user/api"
	userRepo "github.com/ridloal/e-commerce-go-order-core/internal/user/repository"
	userService "github.com/ridloal/e-commerce-go-order-core/internal/user/service"

	cartRepo "github.com/ridloal/e-commerce-go-order-core/internal/cart/repository"
	catalogRepo "github.com/ridloal/e-commerce-go-order-core/internal/catalog/repository"
	invoiceRepo "github.com/ridloal/e-commerce-go-order-core/internal/invoice/repository"
	invoiceService "github.com/ridloal/e-commerce-go-order-core/internal/invoice/service"
	orderAPI "github.com/ridloal/e-commerce-go-order-core/internal/order/api"
	orderRepo "github.com/ridloal/e-commerce-go-order-core/internal/order/repository"
	orderService "github.com/ridloal/e-commerce-go-order-core/internal/order/service"
	paymentAPI "github.com/ridloal/e-commerce-go-order-core/internal/payment/api"
	paymentRepo "github.com/ridloal/e-commerce-go-order-core/internal/payment/repository"
	paymentService "github.com/ridloal/e-commerce-go-order-core/internal/payment/service"
	refundAPI "github.com/ridloal/e-commerce-go-order-core/internal/refund/api"
	refundRepo "github.com/ridloal/e-commerce-go-order-core/internal/refund/repository"
	refundService "github.com/ridloal/e-commerce-go-order-core/internal/refund/service"

	"github.com/ridloal/e-commerce-go-order-core/internal/platform/config"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/database"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/logger"
)

func main() {
	// Load Config
	dbCfg := config.LoadCoreDBConfig()
	coreCfg := config.LoadCoreConfig()
	serverCfg := config.LoadServerConfig(coreCfg.ListenPort)

	logger.Info("Starting Order Core Service...")

	// Setup Database
	db, err := database.Connect(dbCfg.DSN)
	if err != nil {
		logger.Error("Failed to connect to database for Order Core Service", err, nil)
		return
	}
	defer db.Close()

	// Repositories (satu DB, transaksi lintas repo via DBTX)
	users := userRepo.NewPostgresUserRepository(db)
	products := catalogRepo.NewPostgresProductRepository(db)
	carts := cartRepo.NewPostgresCartRepository(db)
	orders := orderRepo.NewPostgresOrderRepository(db)
	transactions := paymentRepo.NewPostgresTransactionRepository(db)
	invoices := invoiceRepo.NewPostgresInvoiceRepository(db)
	refunds := refundRepo.NewPostgresRefundRepository(db)

	// Services
	notifier := invoiceService.NewHTTPNotificationClient(coreCfg.NotificationServiceURL)
	invSvc := invoiceService.NewInvoiceService(invoices, invoiceService.NewHTMLInvoiceRenderer(), notifier)

	usrSvc := userService.NewUserService(users)
	ordSvc := orderService.NewOrderService(orders, carts, products, transactions, coreCfg.UnpaidOrderTimeout)
	defer ordSvc.StopScheduler()
	paySvc := paymentService.NewPaymentService(transactions, orders, products, carts, invSvc)
	refSvc := refundService.NewRefundService(refunds, orders, products, users, notifier, coreCfg.RefundWindow)

	// Handlers
	userHandler := userAPI.NewUserHandler(usrSvc)
	orderHandler := orderAPI.NewOrderHandler(ordSvc)
	paymentHandler := paymentAPI.NewPaymentHandler(paySvc)
	refundHandler := refundAPI.NewRefundHandler(refSvc)

	// Setup Gin Router
	router := gin.Default()
	apiV1 := router.Group("/api/v1")
	userHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterRoutes(apiV1)
	paymentHandler.RegisterRoutes(apiV1)
	refundHandler.RegisterRoutes(apiV1)

	logger.Info("Order Core Service running on port " + serverCfg.Port)
	logger.Info("Order Core Service connecting to Notification Service at " + coreCfg.NotificationServiceURL)
	if errSrv := router.Run(serverCfg.Port); errSrv != nil {
		logger.Error("Failed to run Order Core Service server", errSrv, nil)
	}
}

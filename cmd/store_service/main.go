package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	cartApi "github.com/ridloal/apparel-store/internal/cart/api"
	cartRepo "github.com/ridloal/apparel-store/internal/cart/repository"
	cartService "github.com/ridloal/apparel-store/internal/cart/service"
	"github.com/ridloal/apparel-store/internal/notification"
	orderApi "github.com/ridloal/apparel-store/internal/order/api"
	orderRepo "github.com/ridloal/apparel-store/internal/order/repository"
	orderService "github.com/ridloal/apparel-store/internal/order/service"
	paymentApi "github.com/ridloal/apparel-store/internal/payment/api"
	"github.com/ridloal/apparel-store/internal/payment/gateway"
	paymentService "github.com/ridloal/apparel-store/internal/payment/service"
	"github.com/ridloal/apparel-store/internal/platform/auth"
	"github.com/ridloal/apparel-store/internal/platform/cache"
	"github.com/ridloal/apparel-store/internal/platform/config"
	"github.com/ridloal/apparel-store/internal/platform/database"
	"github.com/ridloal/apparel-store/internal/platform/logger"
	productApi "github.com/ridloal/apparel-store/internal/product/api"
	productRepo "github.com/ridloal/apparel-store/internal/product/repository"
	productService "github.com/ridloal/apparel-store/internal/product/service"
	"github.com/ridloal/apparel-store/internal/storage"
)

func main() {
	// Load Config
	dbCfg := config.LoadStoreDBConfig()
	serverCfg := config.LoadServerConfig("8080")
	storageCfg := config.LoadStorageConfig()
	settings, err := config.LoadSettings()
	if err != nil {
		logger.Error("Failed to load settings", err)
		return
	}

	logger.Info("Starting Store Service...")

	// Setup Database
	db, err := database.Connect(dbCfg.DSN)
	if err != nil {
		logger.Error("Failed to connect to database for Store Service", err)
		return
	}
	defer db.Close()

	if config.GetEnv("AUTO_MIGRATE", "true") == "true" {
		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(migrateCtx, db)
		cancel()
		if err != nil {
			logger.Error("Failed to apply schema", err)
			return
		}
	}

	// Auth
	tokens, err := auth.NewTokenManager(settings.Auth.JWTSecret, settings.Auth.TokenTTL)
	if err != nil {
		logger.Error("Failed to initialize token manager", err)
		return
	}
	authz, err := auth.NewAuthorizer()
	if err != nil {
		logger.Error("Failed to initialize authorizer", err)
		return
	}
	authenticate := auth.Authenticate(tokens)

	// Payment signer: satu skema hash untuk seluruh proses
	signer, err := gateway.NewSigner(settings.Payment)
	if err != nil {
		logger.Error("Failed to initialize payment signer", err)
		return
	}
	logger.Info("Payment hash scheme: " + signer.SchemeName())

	objects, err := storage.NewLocalObjectStore(storageCfg.Dir, storageCfg.PublicBaseURL, storageCfg.MaxBytes)
	if err != nil {
		logger.Error("Failed to initialize object storage", err)
		return
	}

	// Products (Redis read-through cache kalau tersedia)
	products := productRepo.NewPostgresProductRepository(db)
	redisClient, err := cache.ConnectRedis(context.Background(), settings.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, product cache disabled: %v", err)
	} else {
		defer redisClient.Close()
		products = productRepo.NewCachedProductRepository(products, redisClient, settings.Redis.ProductTTL)
	}
	prodService := productService.NewProductService(products, objects)

	// Cart & orders
	carts := cartRepo.NewPostgresCartRepository(db)
	crtService := cartService.NewCartService(carts, products, objects)

	orders := orderRepo.NewPostgresOrderRepository(db)
	ordService := orderService.NewOrderService(orders, carts, products, signer)

	// Notification outbox + relay ke Kafka
	outbox := notification.NewPostgresOutboxRepository(db)
	notifier := notification.NewOrderNotifier(outbox, settings.Kafka.OrderEventsTopic)
	publisher, err := notification.NewKafkaPublisher(settings.Kafka)
	if err != nil {
		logger.Error("Kafka unavailable, confirmations stay queued in the outbox", err)
	} else {
		defer publisher.Close()
		relay := notification.NewRelay(outbox, publisher, settings.Kafka.MaxAttempts)
		scheduler, err := relay.Start(settings.Kafka.RelaySpec)
		if err != nil {
			logger.Error("Failed to schedule notification relay", err)
			return
		}
		defer scheduler.Stop()
	}

	payService := paymentService.NewPaymentService(signer, orders, crtService, notifier)

	// Setup Gin Router
	router := gin.Default()
	router.Static(storageCfg.PublicBaseURL, storageCfg.Dir)
	apiV1 := router.Group("/api/v1")

	productApi.NewProductHandler(prodService).RegisterRoutes(apiV1,
		authenticate, auth.RequirePermission(authz, auth.ResourceProducts, auth.ActionWrite))
	cartApi.NewCartHandler(crtService).RegisterRoutes(apiV1, authenticate)
	orderApi.NewOrderHandler(ordService, authz).RegisterRoutes(apiV1, authenticate)
	paymentApi.NewPaymentHandler(payService, ordService).RegisterRoutes(apiV1, authenticate)

	logger.Info("Store Service running on port " + serverCfg.Port)
	if errSrv := router.Run(serverCfg.Port); errSrv != nil {
		logger.Error("Failed to run Store Service server", errSrv)
	}
}

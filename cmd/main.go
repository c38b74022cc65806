package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"storefront-service/internal/auth"
	"storefront-service/internal/catalog"
	"storefront-service/internal/collection"
	"storefront-service/internal/config"
	"storefront-service/internal/events"
	"storefront-service/internal/gateway"
	"storefront-service/internal/handlers"
	"storefront-service/internal/middleware"
	"storefront-service/internal/repository"
)

// @title Phone Case Storefront API
// @version 1.0.0
// @description Affiliate storefront catalog with admin management

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8089
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
	} else {
		log.Println("✓ Redis connected successfully")
	}
	pingCancel()

	// Initialize repository
	productsRepo := repository.NewProductsRepository(db, redisClient)

	// Initialize the NATS change feed only if NATS_URL is set. Without it the
	// collection store falls back to interval polling.
	var feed collection.Feed
	var changePublisher collection.ChangePublisher
	var eventsPublisher *events.Publisher
	var eventsSubscriber *events.Subscriber
	if cfg.NATSURL != "" {
		eventsPublisher, err = events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
		} else {
			changePublisher = eventsPublisher
			log.Println("✓ Events publisher initialized (NATS connected)")
		}

		eventsSubscriber, err = events.NewSubscriber(cfg.NATSURL, logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize change feed: %v (falling back to polling)", err)
		} else {
			feed = eventsSubscriber
			log.Println("✓ Change feed subscriber initialized")
		}
	} else {
		log.Println("NATS_URL not set, catalog sync will poll for changes")
	}
	defer func() {
		if eventsPublisher != nil {
			eventsPublisher.Close()
		}
		if eventsSubscriber != nil {
			eventsSubscriber.Close()
		}
	}()

	// Collection store: the remote product collection as seen by this service
	store := collection.NewStore(productsRepo, feed, changePublisher, logger)

	// Live catalog mirrors: storefront reads newest-first, admin keeps the
	// collection's natural order
	syncCtx, syncCancel := context.WithCancel(context.Background())
	defer syncCancel()

	storefrontSync := catalog.NewSyncStore(store, collection.OrderByCreatedDesc, logger)
	if err := storefrontSync.Start(syncCtx); err != nil {
		log.Fatal("Failed to start storefront catalog sync:", err)
	}
	adminSync := catalog.NewSyncStore(store, collection.Unordered, logger)
	if err := adminSync.Start(syncCtx); err != nil {
		log.Fatal("Failed to start admin catalog sync:", err)
	}
	log.Println("✓ Catalog sync started")

	// Admin write gateway
	gw := gateway.New(store, logger)

	// Authenticator. A plain-text ADMIN_PASSWORD_HASH is hashed at startup so
	// local setups can skip generating a bcrypt hash by hand.
	passwordHash := cfg.AdminPasswordHash
	if passwordHash != "" && !strings.HasPrefix(passwordHash, "$2") {
		passwordHash, err = auth.HashPassword(passwordHash)
		if err != nil {
			log.Fatal("Failed to hash admin password:", err)
		}
		log.Println("WARNING: ADMIN_PASSWORD_HASH is not a bcrypt hash, hashed it in-process")
	}
	authenticator := auth.NewStaticAuthenticator(
		cfg.AdminEmail, passwordHash, cfg.JWTSecret,
		time.Duration(cfg.SessionTTLMins)*time.Minute, logger)

	// Initialize handlers
	storefrontHandler := handlers.NewStorefrontHandler(storefrontSync, store)
	adminHandler := handlers.NewAdminHandler(gw, adminSync, store)
	exportHandler := handlers.NewExportHandler(adminSync)
	seedHandler := handlers.NewSeedHandler(gw, logger)
	authHandler := handlers.NewAuthHandler(authenticator, authenticator.State())
	handlers.SetHealthDependencies(db, storefrontSync)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.ReadinessCheck)

	v1 := router.Group("/api/v1")
	{
		// Public storefront: browse, search, product detail
		storefront := v1.Group("/storefront")
		{
			storefront.GET("/products", storefrontHandler.GetProducts)
			storefront.GET("/products/:id", storefrontHandler.GetProduct)
			storefront.GET("/categories", storefrontHandler.GetCategories)
		}

		// Admin auth
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", middleware.SessionAuth(authenticator), authHandler.Logout)
			authGroup.GET("/session", middleware.SessionAuth(authenticator), authHandler.GetSession)
		}

		// Admin catalog management (session required)
		admin := v1.Group("/admin")
		admin.Use(middleware.SessionAuth(authenticator))
		{
			admin.GET("/products", adminHandler.ListProducts)
			admin.GET("/products/:id/form", adminHandler.GetProductForm)
			admin.POST("/products", adminHandler.CreateProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)
			admin.DELETE("/products/:id", adminHandler.DeleteProduct)
			admin.POST("/products/export", exportHandler.ExportProducts)
			admin.POST("/seed", seedHandler.SeedProducts)
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Storefront service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down storefront-service...")

	storefrontSync.Stop()
	adminSync.Stop()
	log.Println("✓ Catalog sync stopped")

	log.Println("Storefront service stopped")
}

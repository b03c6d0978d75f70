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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"returns-service/internal/cache"
	"returns-service/internal/carriers"
	"returns-service/internal/clients"
	"returns-service/internal/config"
	"returns-service/internal/events"
	"returns-service/internal/handlers"
	"returns-service/internal/middleware"
	"returns-service/internal/models"
	"returns-service/internal/repository"
	"returns-service/internal/services"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/tracing"
)

// @title Returns Service API
// @version 1.0
// @description Returns and exchanges backend: customer portal, merchant dashboard and label workflow

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @host localhost:8080
// @BasePath /
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.App.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	db, err := initDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := migrateDatabase(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to access database handle: %v", err)
	}

	// Redis is optional; the query cache degrades to a no-op without it
	redisClient := initRedis(cfg)
	queryCache := cache.NewQueryCache(redisClient, cfg.CacheTTL)

	var publisher events.Publisher
	natsPublisher, err := events.NewPublisher(cfg.NatsURL, logger)
	if err != nil {
		log.Printf("WARNING: Failed to initialize NATS events publisher: %v (continuing without events)", err)
		publisher = events.NoopPublisher{Logger: logger}
	} else {
		publisher = natsPublisher
		log.Println("✓ NATS events publisher initialized")
	}

	var tracerProvider *tracing.TracerProvider
	if cfg.IsProduction() {
		tracerProvider, err = tracing.InitTracer(tracing.ProductionConfig("returns-service"))
	} else {
		tracerProvider, err = tracing.InitTracer(tracing.DefaultConfig("returns-service"))
	}
	if err != nil {
		log.Printf("WARNING: Failed to initialize tracing: %v (continuing without tracing)", err)
	} else {
		log.Println("✓ OpenTelemetry tracing initialized")
	}

	metrics := gosharedmw.InitGlobalMetrics("tesseract", "returns_service")
	log.Println("✓ Prometheus metrics initialized")

	// Repositories
	storeRepo := repository.NewStoreRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	returnRepo := repository.NewReturnRequestRepository(db)

	// Clients
	platformClient := clients.NewNuvemshopClient(clients.NuvemshopConfig{
		ClientID:     cfg.Nuvemshop.ClientID,
		ClientSecret: cfg.Nuvemshop.ClientSecret,
		AuthBaseURL:  cfg.Nuvemshop.AuthBaseURL,
		APIBaseURL:   cfg.Nuvemshop.APIBaseURL,
	})
	emailClient := clients.NewResendClient(cfg.Resend.BaseURL, cfg.Resend.APIKey, logger)

	var productionCarrier, sandboxCarrier carriers.MelhorEnvioClient
	if cfg.MelhorEnvio.Token != "" {
		productionURL, sandboxURL := carriers.MelhorEnvioProductionURL, carriers.MelhorEnvioSandboxURL
		if cfg.MelhorEnvio.BaseURL != "" {
			productionURL, sandboxURL = cfg.MelhorEnvio.BaseURL, cfg.MelhorEnvio.BaseURL
		}
		productionCarrier = carriers.NewMelhorEnvioClient(productionURL, cfg.MelhorEnvio.Token)
		sandboxCarrier = carriers.NewMelhorEnvioClient(sandboxURL, cfg.MelhorEnvio.Token)
		log.Println("✓ Melhor Envio client initialized")
	} else {
		log.Println("MELHOR_ENVIO_TOKEN not configured, label workflow disabled")
	}

	// Services
	emailNotifier := services.NewEmailNotifier(emailClient, cfg.Resend.From)
	dispatcher := services.NewNotificationDispatcher(emailNotifier, cfg.Notifications.Workers, cfg.Notifications.QueueSize, logger)
	dispatcher.Start(context.Background())

	eligibility := services.NewEligibilityEvaluator(services.SystemClock{})
	returnService := services.NewReturnService(storeRepo, returnRepo, queryCache, publisher, dispatcher, cfg.CacheTTL, logger)
	storeService := services.NewStoreService(storeRepo, settingsRepo, platformClient, queryCache, cfg.CacheTTL, logger)
	lookupService := services.NewOrderLookupService(storeRepo, platformClient, eligibility, logger)
	shippingService := services.NewShippingService(returnRepo, productionCarrier, sandboxCarrier, cfg.MelhorEnvio.UseSandbox, queryCache, publisher, logger)
	signer := services.NewStateSigner(cfg.Nuvemshop.StateSecret, cfg.Nuvemshop.StateTTL, services.SystemClock{})
	oauthService := services.NewOAuthService(storeRepo, platformClient, signer, queryCache, cfg.Nuvemshop.ClientID, cfg.Nuvemshop.AuthBaseURL, logger)
	dashboardService := services.NewDashboardService(storeRepo, returnRepo, queryCache, cfg.CacheTTL)
	exportService := services.NewExportService(returnService)

	router := setupRouter(cfg, routerDeps{
		health:    handlers.NewHealthHandler(sqlDB, queryCache),
		functions: handlers.NewFunctionsHandler(storeService, returnService, lookupService, shippingService, oauthService, emailNotifier),
		portal:    handlers.NewPortalHandler(lookupService, returnService),
		stores:    handlers.NewStoreHandler(storeService),
		returns:   handlers.NewReturnHandler(returnService, shippingService, exportService),
		dashboard: handlers.NewDashboardHandler(dashboardService),
	}, metrics, logger)

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting Returns Service on %s", cfg.GetServerAddress())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down Returns Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	dispatcher.Stop()
	log.Println("✓ Notification dispatcher drained")

	if natsPublisher != nil {
		natsPublisher.Close()
		log.Println("✓ Events publisher closed")
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}

	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		} else {
			log.Println("✓ Tracer provider shut down")
		}
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
	log.Println("Returns service stopped")
}

// initDatabase initializes the database connection
func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Info
	if cfg.IsProduction() {
		logLevel = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return db, nil
}

// migrateDatabase runs database migrations
func migrateDatabase(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Store{},
		&models.StoreSettings{},
		&models.ReturnRequest{},
	)
}

func initRedis(cfg *config.Config) *redis.Client {
	if cfg.Redis.URL == "" {
		log.Println("REDIS_URL not configured, caching disabled")
		return nil
	}

	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Printf("Warning: Failed to parse Redis URL: %v", err)
		log.Println("Continuing without Redis caching...")
		return nil
	}
	if opt.Password == "" {
		opt.Password = cfg.Redis.Password
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		log.Println("Continuing without Redis caching...")
		_ = client.Close()
		return nil
	}

	log.Println("✓ Connected to Redis for caching")
	return client
}

type routerDeps struct {
	health    *handlers.HealthHandler
	functions *handlers.FunctionsHandler
	portal    *handlers.PortalHandler
	stores    *handlers.StoreHandler
	returns   *handlers.ReturnHandler
	dashboard *handlers.DashboardHandler
}

// setupRouter configures the Gin router with middleware and routes
func setupRouter(cfg *config.Config, h routerDeps, metrics *gosharedmw.Metrics, logger *logrus.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(gosharedmw.SecurityHeaders())
	router.Use(metrics.Middleware())
	router.Use(tracing.GinMiddleware("returns-service"))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SetupCORS())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", h.health.HealthCheck)
	router.GET("/ready", h.health.ReadinessCheck)
	router.GET("/metrics", gosharedmw.Handler())
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireAuth := middleware.AuthMiddleware(cfg.App.JWTSecret)
	optionalAuth := middleware.OptionalAuth(cfg.App.JWTSecret)

	functions := router.Group("/functions/v1")
	{
		// get-order is public, validate and list-orders check the optional token
		functions.POST("/nuvemshop", gosharedmw.RateLimit(), optionalAuth, h.functions.Nuvemshop)
		functions.POST("/melhor-envio", requireAuth, h.functions.MelhorEnvio)
		functions.POST("/nuvemshop-oauth", optionalAuth, h.functions.NuvemshopOAuth)
		functions.GET("/nuvemshop-oauth", h.functions.NuvemshopOAuthCallback)
		functions.POST("/send-return-notification", requireAuth, h.functions.SendReturnNotification)
	}

	// Customer portal, public and rate limited
	portal := router.Group("/api/v1/portal")
	portal.Use(gosharedmw.RateLimit())
	{
		portal.POST("/lookup", h.portal.LookupOrder)
		portal.POST("/returns", h.portal.CreateReturn)
	}

	api := router.Group("/api/v1")
	api.Use(requireAuth)
	{
		stores := api.Group("/stores")
		{
			stores.GET("", h.stores.ListStores)
			stores.DELETE("/:id", h.stores.DeleteStore)
			stores.GET("/:id/settings", h.stores.GetSettings)
			stores.PUT("/:id/settings", h.stores.UpdateSettings)
			stores.PUT("/:id/address", h.stores.UpdateAddress)
			stores.GET("/:id/orders", h.stores.ListOrders)
			stores.GET("/:id/returns", h.returns.ListStoreReturns)
			stores.GET("/:id/returns/export", h.returns.ExportReturns)
		}

		returns := api.Group("/returns")
		{
			returns.GET("", h.returns.ListReturns)
			returns.GET("/:id", h.returns.GetReturn)
			returns.PATCH("/:id/status", h.returns.UpdateStatus)
			returns.POST("/:id/approve", h.returns.ApproveReturn)
			returns.POST("/:id/reject", h.returns.RejectReturn)
			returns.POST("/:id/complete", h.returns.CompleteReturn)
			returns.GET("/:id/slip", h.returns.DownloadSlip)
			returns.GET("/:id/shipping", h.returns.GetShippingState)
		}

		api.GET("/dashboard", h.dashboard.GetMetrics)
	}

	return router
}

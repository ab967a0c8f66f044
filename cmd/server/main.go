package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/marketplace/backend/internal/application/catalog"
	identityapp "github.com/marketplace/backend/internal/application/identity"
	tradeapp "github.com/marketplace/backend/internal/application/trade"
	"github.com/marketplace/backend/internal/infrastructure/auth"
	"github.com/marketplace/backend/internal/infrastructure/cache"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/event"
	"github.com/marketplace/backend/internal/infrastructure/feed"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/infrastructure/persistence"
	"github.com/marketplace/backend/internal/infrastructure/scheduler"
	"github.com/marketplace/backend/internal/infrastructure/storage"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"github.com/marketplace/backend/internal/interfaces/http/handler"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"github.com/marketplace/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	telCfg := telemetry.FromConfig(cfg.Telemetry)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	if loggerProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, loggerProvider, logger.ParseLevel(cfg.Log.Level))
		log = telemetry.NewBridgedLogger(logger.NewCore(logCfg), otelCore, zap.AddCaller())
	}
	defer func() {
		_ = log.Sync()
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for name, shutdown := range map[string]func(context.Context) error{
			"tracer": tracerProvider.Shutdown,
			"meter":  meterProvider.Shutdown,
			"logger": loggerProvider.Shutdown,
		} {
			if err := shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down telemetry provider", zap.String("provider", name), zap.Error(err))
			}
		}
	}()

	log.Info("Starting marketplace backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfigFrom(cfg.Telemetry, cfg.Database.Driver), log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate SQLite schema", zap.Error(err))
		}
	}
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	// Redis backs the feed lock, the token blacklist and the rate limiters.
	// Without it every one of them falls back to process memory.
	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-process fallbacks", zap.Error(err))
		} else {
			redisClient = client
			defer func() {
				_ = client.Close()
			}()
			log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		}
	}

	var blacklist auth.TokenBlacklist
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	shopRepo := persistence.NewGormShopRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	accountService := identityapp.NewAccountService(userRepo, jwtService, blacklist, log)
	contactService := identityapp.NewContactService(contactRepo)
	catalogService := catalogapp.NewCatalogService(shopRepo, categoryRepo, productRepo)
	ingestor := catalogapp.NewFeedIngestor(
		persistence.NewGormCatalogTransactionScope(db.DB),
		feed.NewHTTPFetcher(cfg.Feed, log),
		feed.NewYAMLDecoder(),
		cache.NewLocker(redisClient, cfg.Feed, log),
		log,
	)
	basketService := tradeapp.NewBasketService(persistence.NewGormTradeTransactionScope(db.DB), orderRepo, log)
	orderService := tradeapp.NewOrderService(orderRepo, shopRepo, persistence.NewGormShopOrderQuery(db.DB), log)

	if cfg.Storage.Enabled {
		archive, err := storage.NewS3FeedArchive(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize feed archive", zap.Error(err))
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			log.Warn("Feed archive bucket check failed", zap.String("bucket", archive.Bucket()), zap.Error(err))
		}
		ingestor.SetArchive(archive)
		log.Info("Raw feeds are archived", zap.String("bucket", archive.Bucket()))
	}

	// Event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)
	catalogEventHandler := catalogapp.NewCatalogEventHandler(log)
	eventBus.Subscribe(catalogEventHandler)

	var httpMeter metric.Meter
	if cfg.Telemetry.Enabled {
		httpMeter = meterProvider.Meter("marketplace/http")
	}
	marketplaceMetrics, err := telemetry.NewMarketplaceMetrics(meterProvider.Meter("marketplace"))
	if err != nil {
		log.Fatal("Failed to create marketplace metrics", zap.Error(err))
	}
	eventBus.Subscribe(marketplaceMetrics)
	ingestor.SetMetrics(marketplaceMetrics)

	log.Info("Event handlers registered",
		zap.Strings("catalog_events", catalogEventHandler.EventTypes()),
		zap.Strings("metric_events", marketplaceMetrics.EventTypes()),
	)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	accountService.SetEventPublisher(eventBus)
	ingestor.SetEventPublisher(eventBus)
	basketService.SetEventPublisher(eventBus)
	orderService.SetEventPublisher(eventBus)

	if cfg.Scheduler.Enabled {
		stopRefresh, err := startFeedRefresh(ctx, cfg.Scheduler, ingestor, shopRepo, log)
		if err != nil {
			log.Fatal("Failed to start feed refresh scheduler", zap.Error(err))
		}
		defer stopRefresh()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	var globalLimiter middleware.Limiter
	if cfg.HTTP.RateLimitEnabled {
		globalLimiter = newLimiter(redisClient, cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	authLimiter := newLimiter(redisClient, cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.RateLimitWindow)

	engine := router.NewEngine(router.EngineConfig{
		Logger:         log,
		HTTP:           cfg.HTTP,
		TracingEnabled: cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		Meter:          httpMeter,
		RateLimiter:    globalLimiter,
		Docs:           !cfg.IsProduction(),
	})

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.RegisterMarketplace(r, router.Handlers{
		User:    handler.NewUserHandler(accountService),
		Contact: handler.NewContactHandler(contactService),
		Shop:    handler.NewShopHandler(catalogService, ingestor, orderService),
		Catalog: handler.NewCatalogHandler(catalogService),
		Basket:  handler.NewBasketHandler(basketService),
		Order:   handler.NewOrderHandler(basketService, orderService),
		System:  handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion, db),
	}, router.Guards{
		Authenticate: middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		}),
		Authenticated: []gin.HandlerFunc{
			middleware.TracingAttributeInjector(),
			middleware.ProfilingWithConfig(middleware.ProfilingConfig{Enabled: cfg.Telemetry.ProfilingEnabled}),
		},
		AuthRateLimit: middleware.AuthRateLimit(authLimiter, log),
	})
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// startFeedRefresh runs the periodic re-ingestion of stored shop feeds
func startFeedRefresh(
	ctx context.Context,
	cfg config.SchedulerConfig,
	ingestor scheduler.FeedIngester,
	shops scheduler.ShopSource,
	log *zap.Logger,
) (func(), error) {
	sched, err := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Enabled:           cfg.Enabled,
		MaxConcurrentJobs: cfg.MaxConcurrentJobs,
		JobTimeout:        cfg.JobTimeout,
		RetryAttempts:     cfg.RetryAttempts,
		RetryDelay:        cfg.RetryDelay,
	}, scheduler.NewFeedRefreshExecutor(ingestor, log), log)
	if err != nil {
		return nil, err
	}
	trigger, err := scheduler.NewRefreshTrigger(scheduler.RefreshTriggerConfig{
		Interval:   cfg.RefreshInterval,
		RunOnStart: cfg.RunOnStart,
	}, sched, shops, log)
	if err != nil {
		return nil, err
	}
	if err := sched.Start(ctx); err != nil {
		return nil, err
	}
	if err := trigger.Start(ctx); err != nil {
		return nil, err
	}
	return func() {
		trigger.Stop()
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := sched.Stop(stopCtx); err != nil {
			log.Error("Error stopping feed refresh scheduler", zap.Error(err))
		}
	}, nil
}

func newLimiter(client redis.UniversalClient, limit int, window time.Duration) middleware.Limiter {
	if client != nil {
		return middleware.NewRedisRateLimiter(client, limit, window)
	}
	return middleware.NewRateLimiter(limit, window)
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/cache"
	"github.com/GTDGit/gtd_catalog/internal/config"
	"github.com/GTDGit/gtd_catalog/internal/database"
	"github.com/GTDGit/gtd_catalog/internal/handler"
	"github.com/GTDGit/gtd_catalog/internal/middleware"
	"github.com/GTDGit/gtd_catalog/internal/repository"
	"github.com/GTDGit/gtd_catalog/internal/service"
	"github.com/GTDGit/gtd_catalog/internal/sse"
	"github.com/GTDGit/gtd_catalog/internal/worker"
	"github.com/GTDGit/gtd_catalog/pkg/catalogapi"
)

// main is the application entrypoint for the GTD catalog service.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("source", cfg.Catalog.Source).Msg("starting gtd catalog")

	// Context for startup and graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := map[string]handler.Pinger{}

	// 3. Connect database (optional unless the catalog lives in postgres)
	var productRepo *repository.ProductRepository
	if cfg.DB.Enabled() {
		db, err := database.Connect(ctx, &cfg.DB)
		if err != nil {
			log.Error().Err(err).Msg("database connection failed")
			fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		// 3a. Run migrations
		if err := database.Migrate(db.DB, cfg.MigrationsPath); err != nil {
			log.Error().Err(err).Msg("migration failed")
			fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
			os.Exit(1)
		}
		log.Info().Msg("migrations completed successfully")

		productRepo = repository.NewProductRepository(db)
		deps["database"] = handler.PingFunc(db.PingContext)
	}

	// 3b. Session store: Redis when configured, in-process otherwise
	var sessions service.CriteriaStore
	var memoryStore *cache.MemoryStore
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected successfully")

		sessions = cache.NewCriteriaCache(redisClient, cfg.Browse.SessionTTL)
		deps["redis"] = redisClient
	} else {
		memoryStore = cache.NewMemoryStore(cfg.Browse.SessionTTL)
		sessions = memoryStore
		log.Warn().Msg("REDIS_HOST not set, catalog sessions are kept in memory")
	}

	// 4. Product source
	var source service.ProductSource
	var store service.SnapshotStore
	switch cfg.Catalog.Source {
	case config.SourcePostgres:
		source = productRepo
	default:
		source = catalogapi.NewClient(catalogapi.Config{
			BaseURL:  cfg.Catalog.BaseURL,
			APIKey:   cfg.Catalog.APIKey,
			Timeout:  cfg.Catalog.Timeout,
			PageSize: cfg.Catalog.PageSize,
			Debug:    cfg.Env != "production",
		})
		if productRepo != nil {
			store = productRepo
		}
	}

	// 5. Initialize services
	hub := sse.NewHub()
	catalogSvc := service.NewCatalogService(source, store, sessions, service.Options{
		DefaultPageSize: cfg.Browse.DefaultPageSize,
		MaxPageSize:     cfg.Browse.MaxPageSize,
		RefreshTimeout:  cfg.Worker.RefreshTimeout,
	})
	catalogSvc.SetNotifier(sse.NewHubNotifier(hub))

	// 5a. Initial load. The server still starts on failure and reports 503
	// until the refresh worker succeeds.
	if err := catalogSvc.Bootstrap(ctx); err != nil {
		log.Error().Err(err).Msg("initial catalog load failed")
	}

	// 6. Initialize handlers
	handlers := &handler.Handlers{
		Health:  handler.NewHealthHandler(catalogSvc, deps),
		Catalog: handler.NewCatalogHandler(catalogSvc),
		Session: handler.NewSessionHandler(catalogSvc),
		Admin:   handler.NewAdminHandler(catalogSvc),
		Events:  handler.NewEventsHandler(hub, catalogSvc),
	}
	if cfg.WebhookSecret != "" {
		handlers.Webhook = handler.NewWebhookHandler(catalogSvc, cfg.WebhookSecret)
	}

	// 7. Initialize middleware
	var adminAuth gin.HandlerFunc
	if cfg.JWTSecret != "" {
		jwtMw := middleware.NewJWTMiddleware(cfg.JWTSecret)
		go jwtMw.RateLimiter().Run(ctx)
		adminAuth = jwtMw.Handle()
	} else {
		log.Warn().Msg("JWT_SECRET not set, admin routes are disabled")
	}

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSHosts))
	router.Use(middleware.LoggingMiddleware())
	handler.RegisterRoutes(router, handlers, adminAuth)

	// 9. Start workers
	go worker.NewRefreshWorker(catalogSvc, cfg.Worker.RefreshInterval).Start(ctx)
	if memoryStore != nil {
		go worker.NewSweepWorker(memoryStore, time.Minute).Start(ctx)
	}

	// 10. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 11. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 12. Cancel context to stop workers and open event streams
	cancel()

	// 13. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

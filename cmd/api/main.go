package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/scout-dashboard/suqi/internal/api/handlers"
	"github.com/scout-dashboard/suqi/internal/cache/redis"
	"github.com/scout-dashboard/suqi/internal/evaluation"
	"github.com/scout-dashboard/suqi/internal/metrics"
	"github.com/scout-dashboard/suqi/internal/middleware/ratelimit"
	"github.com/scout-dashboard/suqi/internal/middleware/security"
	"github.com/scout-dashboard/suqi/internal/middleware/validation"
	"github.com/scout-dashboard/suqi/internal/query"
	"github.com/scout-dashboard/suqi/internal/storage/sqlite"
	"github.com/scout-dashboard/suqi/internal/templates"
	"github.com/scout-dashboard/suqi/pkg/circuitbreaker"
	"github.com/scout-dashboard/suqi/pkg/config"
	appLogger "github.com/scout-dashboard/suqi/pkg/logger"
	"github.com/scout-dashboard/suqi/pkg/retry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting SUQI query service")

	metrics.Init()

	registry, err := templates.Default()
	if err != nil {
		appLogger.Fatal("Failed to load template corpus", zap.Error(err))
	}
	engine := query.NewEngine(registry)

	ctx := context.Background()
	dependencies := map[string]handlers.Pinger{}
	serviceOpts := []query.Option{
		query.WithBreaker(circuitbreaker.New("query-cache", circuitbreaker.Config{
			FailureThreshold: uint32(cfg.Breaker.FailureThreshold),
			Cooldown:         cfg.Breaker.Cooldown(),
			Logger:           appLogger.Log,
		})),
	}

	var (
		history   handlers.HistoryStore
		runStore  evaluation.RunStore
		sqliteCli *sqlite.Client
	)
	if cfg.SQLite.Enabled {
		sqliteCli, err = sqlite.NewClient(cfg.SQLite.Path)
		if err != nil {
			appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
		}
		defer sqliteCli.Close()

		if err := sqliteCli.InitSchema(ctx); err != nil {
			appLogger.Fatal("Failed to initialize schema", zap.Error(err))
		}

		history = sqliteCli
		runStore = sqliteCli
		dependencies["sqlite"] = sqliteCli

		retryCfg := retry.DefaultConfig()
		retryCfg.Logger = appLogger.Log
		serviceOpts = append(serviceOpts, query.WithHistory(sqliteCli), query.WithRetry(retryCfg))
	}

	if cfg.Redis.Enabled {
		redisCli, err := redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// the service runs without a cache rather than refusing to start
			appLogger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
		} else {
			defer redisCli.Close()

			// cached plans may come from an older corpus
			if n, err := redisCli.InvalidateQueries(ctx); err != nil {
				appLogger.Warn("Failed to invalidate cached plans", zap.Error(err))
			} else if n > 0 {
				appLogger.Info("Invalidated cached plans", zap.Int("count", n))
			}

			dependencies["redis"] = redisCli
			serviceOpts = append(serviceOpts, query.WithCache(redisCli, cfg.Redis.TTL()))
		}
	}

	service := query.NewService(engine, serviceOpts...)

	app := fiber.New(fiber.Config{
		AppName:      "suqi",
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Logger:               appLogger.Log,
	})
	defer limiter.Stop()

	origins := strings.Split(cfg.Server.AllowOrigins, ",")

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: origins,
		IsDevelopment:  cfg.Server.Environment == "development",
	}))

	app.Get("/metrics", metrics.MetricsHandler())

	queryHandler := handlers.NewQueryHandler(service, history, evaluation.NewEvaluator(engine, runStore))
	healthHandler := handlers.NewHealthHandler(registry, dependencies)

	api := app.Group("/api/v1")

	api.Get("/health", healthHandler.Health)
	api.Get("/ready", healthHandler.Ready)

	api.Use(limiter.Middleware())
	api.Use(validation.Middleware(validation.Config{
		MaxQuestionLength: cfg.Validation.MaxQuestionLength,
		Logger:            appLogger.Log,
	}))

	api.Post("/query", queryHandler.HandleQuery)
	api.Get("/query/history", queryHandler.GetQueryHistory)
	api.Post("/query/:id/feedback", queryHandler.SubmitFeedback)
	api.Get("/suggestions", queryHandler.GetSuggestions)
	api.Get("/templates", queryHandler.ListTemplates)
	api.Get("/evaluation", queryHandler.RunEvaluation)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting",
		zap.String("address", addr),
		zap.Int("templates", registry.Len()),
		zap.Bool("sqlite", cfg.SQLite.Enabled),
		zap.Bool("redis", cfg.Redis.Enabled),
	)

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Shutdown did not complete", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"

	"github.com/naijafloodwatch/backend/internal/config"
	"github.com/naijafloodwatch/backend/internal/delivery/http"
	"github.com/naijafloodwatch/backend/internal/domain"
	"github.com/naijafloodwatch/backend/internal/observability"
	"github.com/naijafloodwatch/backend/internal/repository/csvfile"
	"github.com/naijafloodwatch/backend/internal/repository/postgres"
	"github.com/naijafloodwatch/backend/internal/service"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg)
	slog.SetDefault(log)
	if envErr != nil {
		log.Info("no .env file found, using system environment")
	}

	metrics := observability.NewMetrics()

	// Baseline source: Postgres when reachable, the CSV asset otherwise
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var baselines domain.BaselineSource = csvfile.NewBaselineRepository(cfg.BaselineCSVPath)
	if cfg.DatabaseURL != "" {
		pool, err := connectDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Warn("could not connect to database, using baseline CSV", "error", err, "path", cfg.BaselineCSVPath)
		} else {
			defer pool.Close()
			baselines = postgres.NewBaselineRepository(pool)
			log.Info("connected to PostgreSQL", "table", postgres.BaselineTable)
		}
	}

	// Warm the asset cache. Boundaries are required, baselines only degrade risk.
	catalog := service.NewCatalog(cfg.GeoJSONPath, baselines, metrics)
	areas, err := catalog.Areas()
	if err != nil {
		log.Error("failed to load area boundaries", "path", cfg.GeoJSONPath, "error", err)
		os.Exit(1)
	}
	log.Info("loaded area boundaries", "areas", len(areas), "key", catalog.AreasKey())

	if table, err := catalog.Baselines(ctx); err != nil {
		log.Warn("baselines unavailable, risk will be unknown", "key", catalog.BaselinesKey(), "error", err)
	} else {
		log.Info("loaded baselines", "entries", len(table), "key", catalog.BaselinesKey())
	}

	// Dependency Injection: Services
	floodSvc := service.NewFloodService(cfg.FloodAPIURL, cfg.FloodAPITimeout, metrics, log)
	dashboardSvc := service.NewDashboardService(catalog, floodSvc, clockwork.NewRealClock(), cfg.ForecastDays, metrics, log)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "NaijaFloodWatch API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.FloodAPITimeout + 10*time.Second,
		ErrorHandler: http.ErrorHandler(log),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	sessions := http.NewSessionStore(session.Config{
		Expiration:   cfg.SessionExpiration,
		CookieSecure: cfg.IsProduction(),
	})

	// Routes
	http.SetupRoutes(app, http.NewHandler(dashboardSvc, catalog, sessions, log))

	// Graceful shutdown
	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	log.Info("server exited gracefully")
}

func connectDB(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookvault/docs"
	"bookvault/internal/config"
	"bookvault/internal/database"
	"bookvault/internal/database/migration"
	"bookvault/internal/filter"
	handlers "bookvault/internal/http/handler"
	"bookvault/internal/http/middleware"
	"bookvault/internal/notifier"
	"bookvault/internal/otel"
	"bookvault/internal/provider"
	"bookvault/internal/registry/postgres"
	"bookvault/internal/resolver"
	"bookvault/internal/service"
	"bookvault/internal/staging"
)

// @title BookVault API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	// Tracing first so the database driver wrapper picks up the provider
	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Remote store driver (Cloudinary or S3-compatible, per PROVIDER_DRIVER)
	store, err := provider.New(cfg.Provider)
	if err != nil {
		log.Fatalf("failed to initialize remote store: %v", err)
	}

	stager, err := staging.NewDiskStager(cfg.Staging.Dir)
	if err != nil {
		log.Fatalf("failed to initialize staging directory: %v", err)
	}

	// Notifier is optional; nil disables the notify endpoint gracefully
	mailer, err := notifier.NewSMTP(cfg.SMTP)
	if err != nil {
		log.Fatalf("failed to initialize mail notifier: %v", err)
	}

	repo := postgres.NewArtifactPostgres(db)
	res := resolver.New(resolver.Config{
		ConsoleHost:   cfg.Resolver.ConsoleHost,
		TenantID:      cfg.Resolver.TenantID,
		ShareEndpoint: cfg.Resolver.ShareEndpoint,
	})

	svc := service.NewArtifactService(
		filter.Parse(cfg.Filter.AllowedTypes),
		stager,
		store,
		repo,
		res,
		mailer,
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: strings.Join([]string{
			fiber.MethodGet,
			fiber.MethodPost,
			fiber.MethodOptions,
		}, ","),
	}))

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, svc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

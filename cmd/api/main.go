package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"bookshelf/internal/auth"
	"bookshelf/internal/config"
	"bookshelf/internal/database"
	"bookshelf/internal/database/migration"
	handlers "bookshelf/internal/http/handler"
	"bookshelf/internal/http/middleware"
	"bookshelf/internal/logger"
	appotel "bookshelf/internal/otel"
	"bookshelf/internal/repository"
	"bookshelf/internal/repository/postgres"
	"bookshelf/internal/repository/sqlite"
	"bookshelf/internal/service"
	"bookshelf/internal/storage"
)

// @title                       Bookshelf API
// @version                     1.0
// @description                 Book catalog: upload, browse, search and download book files.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.Setup(os.Stdout, cfg.Log.Env, cfg.Log.Level)

	if err := run(cfg, log); err != nil {
		log.Error("server_exit", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := appotel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing_shutdown_failed", "error", err)
		}
	}()

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, cfg.Database.Driver, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	repo, err := newRepository(cfg.Database.Driver, db)
	if err != nil {
		return err
	}
	store, err := newStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize object storage: %w", err)
	}

	var identity auth.IdentityProvider
	if cfg.Auth.JWTSecret != "" {
		jwtProvider, err := auth.NewJWTProvider(cfg.Auth.JWTSecret, cfg.Auth.JWTAudience)
		if err != nil {
			return err
		}
		identity = jwtProvider
	} else {
		log.Warn("auth_disabled", "reason", "AUTH_JWT_SECRET not set; uploads and deletes will be rejected")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := service.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	books := service.NewBookService(repo, store, identity, log, metrics)

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             bodyLimit(cfg.Upload.MaxUploadMB),
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())
	app.Use(middleware.Session())

	handlers.RegisterRoutes(app, handlers.Deps{
		Books:      books,
		Health:     repo,
		Upload:     cfg.Upload,
		Gatherer:   reg,
		PublicHost: cfg.AppHost,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() { errCh <- app.Listen(addr) }()
	log.Info("server_started",
		"addr", addr,
		"db_driver", cfg.Database.Driver,
		"storage_driver", cfg.Storage.Driver,
	)

	select {
	case err := <-errCh:
		return fmt.Errorf("start server: %w", err)
	case <-ctx.Done():
	}

	log.Info("server_shutdown")
	return app.ShutdownWithTimeout(10 * time.Second)
}

func newRepository(driver string, db *sql.DB) (repository.BookRepository, error) {
	switch driver {
	case database.DriverPostgres:
		return postgres.NewBookPostgres(db), nil
	case database.DriverSQLite:
		return sqlite.NewBookSQLite(db), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func newStorage(ctx context.Context, cfg *config.AppConfig) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case "minio":
		return storage.NewMinIO(cfg.MinIO)
	case "s3":
		return storage.NewS3(ctx, cfg.S3)
	default:
		return nil, errors.New("unsupported STORAGE_DRIVER " + cfg.Storage.Driver)
	}
}

// bodyLimit leaves a megabyte of room for the form fields around the file.
func bodyLimit(maxUploadMB int64) int {
	if maxUploadMB <= 0 {
		return 1 << 30
	}
	return int(maxUploadMB+1) << 20
}

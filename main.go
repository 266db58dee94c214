package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quicklinkhq/scan-tracker/internal/api"
	"github.com/quicklinkhq/scan-tracker/internal/config"
	"github.com/quicklinkhq/scan-tracker/internal/geo"
	"github.com/quicklinkhq/scan-tracker/internal/handler"
	"github.com/quicklinkhq/scan-tracker/internal/objstore"
	"github.com/quicklinkhq/scan-tracker/internal/resolver"
	"github.com/quicklinkhq/scan-tracker/internal/storage"
	pkgconfig "github.com/quicklinkhq/scan-tracker/pkg/config"
	"github.com/quicklinkhq/scan-tracker/pkg/logger"
	"github.com/quicklinkhq/scan-tracker/pkg/profiling"

	_ "github.com/lib/pq"
)

// Database connection timeout.
const dbPingTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	profiling.StartPprofServer()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	db, err := connectDatabase(cfg, log)
	if err != nil {
		log.Error("Failed to connect to database", logger.Error(err))
		return 1
	}
	defer func() { _ = db.Close() }()

	return runServer(cfg, log, db)
}

// loadConfig loads and validates configuration.
func loadConfig() (*config.Config, error) {
	configPath := pkgconfig.Path("config.yml")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

// connectDatabase opens and verifies a database connection.
func connectDatabase(cfg *config.Config, log logger.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	log.Info("Database connected",
		logger.String("host", cfg.Database.Host),
		logger.Int("port", cfg.Database.Port),
		logger.String("database", cfg.Database.Database),
	)

	return db, nil
}

// newLinkFinder wraps the Postgres link store with the Redis cache when one
// is configured.
func newLinkFinder(cfg *config.Config, log logger.Logger, links *storage.LinkStore) (resolver.LinkFinder, handler.LinkWriter) {
	if cfg.Redis.Addr == "" {
		return links, links
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn("Redis unavailable, link cache disabled", logger.Error(err))
		return links, links
	}

	log.Info("Link cache enabled", logger.String("addr", cfg.Redis.Addr))
	cached := storage.NewCachedLinkStore(links, client, log, cfg.Redis.LinkTTL)
	return cached, cached
}

// runServer creates all dependencies and starts the HTTP server.
func runServer(cfg *config.Config, log logger.Logger, db *sql.DB) int {
	// Scan persistence: buffered, flushed in the background, detached
	// from the redirect path.
	buf := storage.NewBuffer(cfg.Service.BufferSize)
	scans := storage.NewScanStore(db, buf, log, cfg.Service.FlushInterval, cfg.Service.FlushThreshold)
	scans.Start()
	defer scans.Stop()

	links := storage.NewLinkStore(db)
	finder, writer := newLinkFinder(cfg, log, links)

	geoResolver := geo.NewResolver(cfg.Geo.Endpoint, cfg.Geo.Timeout, log)
	res := resolver.New(finder, geoResolver, buf, log)

	uploader, err := objstore.NewS3Uploader(context.Background(), cfg.Storage)
	if err != nil {
		log.Error("Failed to create object storage client", logger.Error(err))
		return 1
	}

	redirectHandler := handler.NewRedirectHandler(res)
	linkHandler := handler.NewLinkHandler(writer, uploader, cfg.Service.BaseURL, log)

	server := api.NewServer(redirectHandler, linkHandler, cfg, log, db.Ping)

	log.Info("Scan-tracker starting",
		logger.Int("port", cfg.Service.Port),
		logger.String("base_url", cfg.Service.BaseURL),
	)

	if err := server.Run(); err != nil {
		log.Error("Server error", logger.Error(err))
		return 1
	}

	log.Info("Scan-tracker exited cleanly")
	return 0
}

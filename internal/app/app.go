package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/MikhailRaia/shortener-form/internal/cache"
	"github.com/MikhailRaia/shortener-form/internal/config"
	"github.com/MikhailRaia/shortener-form/internal/handler"
	"github.com/MikhailRaia/shortener-form/internal/service"
	"github.com/MikhailRaia/shortener-form/internal/storage"
	"github.com/MikhailRaia/shortener-form/internal/storage/file"
	"github.com/MikhailRaia/shortener-form/internal/storage/memory"
	"github.com/MikhailRaia/shortener-form/internal/storage/postgres"
	"github.com/MikhailRaia/shortener-form/internal/worker"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

// App is the shortening service: storage, optional cache, click counting and the JSON API.
type App struct {
	config  *config.Config
	storage storage.LinkStorage
	cache   *cache.RedisStore
	clicks  *worker.ClickWorkerPool
	handler http.Handler
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	linkStorage, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:  cfg,
		storage: linkStorage,
	}

	var linkCache service.LinkCache
	if cfg.RedisAddr != "" {
		redisStore, err := cache.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL)
		if err != nil {
			_ = linkStorage.Close()
			return nil, err
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using redis redirect cache")
		a.cache = redisStore
		linkCache = redisStore
	}

	poolConfig := worker.DefaultConfig()
	poolConfig.WorkerCount = cfg.ClickWorkers
	a.clicks = worker.NewClickWorkerPool(linkStorage, poolConfig)
	a.clicks.Start()

	linkService := service.NewLinkService(linkStorage, linkCache, a.clicks, cfg.BaseURL)
	a.handler = handler.NewHandler(linkService).RegisterRoutes()

	return a, nil
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.LinkStorage, error) {
	switch {
	case cfg.DatabaseDSN != "":
		log.Info().Msg("Using PostgreSQL storage")
		s, err := postgres.NewStorage(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to init postgres storage: %w", err)
		}
		return s, nil
	case cfg.FileStoragePath != "":
		log.Info().Str("path", cfg.FileStoragePath).Msg("Using file storage")
		s, err := file.NewStorage(cfg.FileStoragePath)
		if err != nil {
			return nil, fmt.Errorf("failed to init file storage: %w", err)
		}
		return s, nil
	default:
		log.Info().Msg("Using in-memory storage")
		return memory.NewStorage(), nil
	}
}

func (a *App) Handler() http.Handler {
	return a.handler
}

// Run serves the API until ctx is cancelled, then releases every resource.
func (a *App) Run(ctx context.Context) error {
	log.Info().Str("address", a.config.ServerAddress).Str("base_url", a.config.BaseURL).Msg("Starting shortening service")

	err := serve(ctx, a.config.ServerAddress, a.handler)
	a.Close()

	return err
}

// Close drains pending clicks and closes the cache and storage.
func (a *App) Close() {
	if err := a.clicks.Shutdown(shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("Click worker pool did not drain")
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close redis cache")
		}
	}

	if err := a.storage.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close storage")
	}
}

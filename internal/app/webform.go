package app

import (
	"context"
	"net/http"
	"time"

	"github.com/MikhailRaia/shortener-form/internal/client"
	"github.com/MikhailRaia/shortener-form/internal/config"
	"github.com/MikhailRaia/shortener-form/internal/form"
	"github.com/MikhailRaia/shortener-form/internal/generator"
	"github.com/MikhailRaia/shortener-form/internal/session"
	"github.com/MikhailRaia/shortener-form/internal/web"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const evictInterval = time.Minute

// WebApp serves the shortening form and talks to the shortening service.
type WebApp struct {
	config   *config.Config
	registry *session.Registry
	handler  http.Handler
}

func NewWebApp(cfg *config.Config) (*WebApp, error) {
	secret := cfg.SessionSecret
	if secret == "" {
		generated, err := generator.GenerateID(32)
		if err != nil {
			return nil, err
		}
		secret = generated
		log.Warn().Msg("SESSION_SECRET is not set, sessions will not survive a restart")
	}

	shortener := client.New(cfg.ServiceURL, cfg.RequestTimeout)
	registry := session.NewRegistry(func() *form.Controller {
		return form.NewController(shortener)
	}, cfg.SessionTTL)
	sessions := session.NewMiddleware(session.NewTokenService(secret, cfg.SessionTTL))

	h, err := web.NewHandler(registry, sessions)
	if err != nil {
		return nil, err
	}

	return &WebApp{
		config:   cfg,
		registry: registry,
		handler:  h.RegisterRoutes(),
	}, nil
}

func (a *WebApp) Handler() http.Handler {
	return a.handler
}

// Run serves the form and evicts idle sessions until ctx is cancelled.
func (a *WebApp) Run(ctx context.Context) error {
	log.Info().
		Str("address", a.config.WebAddress).
		Str("service_url", a.config.ServiceURL).
		Msg("Starting form server")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return serve(gCtx, a.config.WebAddress, a.handler)
	})

	g.Go(func() error {
		a.registry.Run(gCtx, evictInterval)
		return nil
	})

	return g.Wait()
}

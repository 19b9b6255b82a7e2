package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MikhailRaia/shortener-form/internal/logger"
	"github.com/MikhailRaia/shortener-form/internal/middleware"
	"github.com/MikhailRaia/shortener-form/internal/model"
	"github.com/MikhailRaia/shortener-form/internal/storage"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type LinkService interface {
	Shorten(ctx context.Context, rawURL string) (model.Link, error)
	ShortURL(code string) string
	Resolve(ctx context.Context, code string) (string, error)
	Stats(ctx context.Context, code string) (model.Link, error)
	Ping(ctx context.Context) error
}

type Handler struct {
	linkService LinkService
}

func NewHandler(linkService LinkService) *Handler {
	return &Handler{
		linkService: linkService,
	}
}

func (h *Handler) RegisterRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Use(logger.RequestLogger)

	r.Use(middleware.GzipReader)
	r.Use(middleware.GzipMiddleware)

	r.Post("/shorten", h.HandleShorten)
	r.Get("/stats/{code}", h.handleStats)
	r.Get("/ping", h.handlePing)
	r.Get("/{code}", h.handleRedirect)

	return r
}

func (h *Handler) handleRedirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	originalURL, err := h.linkService.Resolve(r.Context(), code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "URL not found")
			return
		}

		log.Error().Err(err).Str("code", code).Msg("Failed to resolve short link")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, originalURL, http.StatusFound)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	link, err := h.linkService.Stats(r.Context(), code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "URL not found")
			return
		}

		log.Error().Err(err).Str("code", code).Msg("Failed to load stats")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, model.StatsResponse{
		OriginalURL: link.OriginalURL,
		ShortCode:   link.Code,
		Clicks:      link.Clicks,
		CreatedAt:   link.CreatedAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.linkService.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("Storage ping failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

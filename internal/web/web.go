// Package web serves the shortening form and binds it to per-session form controllers.
package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/MikhailRaia/shortener-form/internal/form"
	"github.com/MikhailRaia/shortener-form/internal/logger"
	"github.com/MikhailRaia/shortener-form/internal/middleware"
	"github.com/MikhailRaia/shortener-form/internal/model"
	"github.com/MikhailRaia/shortener-form/internal/session"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

//go:embed templates/page.html
var templates embed.FS

const maxBodySize = 64 << 10

// Controllers hands out the form controller of a session.
type Controllers interface {
	Get(sessionID string) *form.Controller
}

type Handler struct {
	controllers Controllers
	sessions    *session.Middleware
	page        *template.Template
}

func NewHandler(controllers Controllers, sessions *session.Middleware) (*Handler, error) {
	page, err := template.ParseFS(templates, "templates/page.html")
	if err != nil {
		return nil, err
	}

	return &Handler{
		controllers: controllers,
		sessions:    sessions,
		page:        page,
	}, nil
}

func (h *Handler) RegisterRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Use(logger.RequestLogger)
	r.Use(middleware.GzipMiddleware)

	r.Get("/healthz", h.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.Handler)

		r.Get("/", h.handlePage)
		r.Post("/submit", h.handleSubmit)
		r.Post("/reset", h.handleReset)
		r.Post("/dismiss", h.handleDismiss)

		r.Get("/api/view", h.handleAPIView)
		r.Post("/api/submit", h.handleAPISubmit)
		r.Post("/api/reset", h.handleAPIReset)
		r.Post("/api/dismiss", h.handleAPIDismiss)
	})

	return r
}

func (h *Handler) controller(r *http.Request) *form.Controller {
	id, _ := session.IDFromContext(r.Context())
	return h.controllers.Get(id)
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, h.controller(r).View())
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	c := h.controller(r)
	status := submit(r.Context(), c, r.PostForm.Get("url"))
	h.render(w, status, c.View())
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.controller(r).Reset()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleDismiss(w http.ResponseWriter, r *http.Request) {
	h.controller(r).DismissError()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleAPIView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.controller(r).View())
}

func (h *Handler) handleAPISubmit(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		writeJSON(w, http.StatusUnsupportedMediaType, model.ErrorResponse{Error: "Content-Type must be application/json"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "Failed to read request body"})
		return
	}

	var request model.SubmissionRequest
	if err := json.Unmarshal(body, &request); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	c := h.controller(r)
	status := submit(r.Context(), c, request.URL)
	writeJSON(w, status, c.View())
}

func (h *Handler) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	c := h.controller(r)
	c.Reset()
	writeJSON(w, http.StatusOK, c.View())
}

func (h *Handler) handleAPIDismiss(w http.ResponseWriter, r *http.Request) {
	c := h.controller(r)
	c.DismissError()
	writeJSON(w, http.StatusOK, c.View())
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// submit runs one submission and picks the response status. The outcome itself
// lives in the controller view; only a refused submission changes the status.
// The call is detached from request cancellation so a closed tab still settles the form.
func submit(ctx context.Context, c *form.Controller, input string) int {
	_, err := c.Submit(context.WithoutCancel(ctx), input)
	if errors.Is(err, form.ErrSubmitDisabled) {
		return http.StatusConflict
	}

	return http.StatusOK
}

func (h *Handler) render(w http.ResponseWriter, status int, view form.View) {
	var buf bytes.Buffer
	if err := h.page.Execute(&buf, view); err != nil {
		log.Error().Err(err).Msg("Failed to render page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/MikhailRaia/shortener-form/internal/model"
	"github.com/MikhailRaia/shortener-form/internal/service"
	"github.com/MikhailRaia/shortener-form/internal/storage"
	"github.com/rs/zerolog/log"
)

const (
	messageCreated = "URL shortened successfully"
	messageExists  = "URL already shortened"
)

// maxBodySize caps the shorten request body.
const maxBodySize = 64 << 10

// HandleShorten accepts {"url": "..."} and answers with the short link or {"error": "..."}.
func (h *Handler) HandleShorten(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	defer r.Body.Close()

	var request model.SubmissionRequest
	if err := json.Unmarshal(body, &request); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	link, err := h.linkService.Shorten(r.Context(), request.URL)
	message := messageCreated

	switch {
	case err == nil:
	case errors.Is(err, storage.ErrURLExists):
		message = messageExists
	case errors.Is(err, service.ErrURLRequired):
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	case errors.Is(err, service.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, "Invalid URL format")
		return
	default:
		log.Error().Err(err).Msg("Failed to shorten URL")
		writeError(w, http.StatusInternalServerError, "Failed to shorten URL")
		return
	}

	writeJSON(w, http.StatusOK, model.SubmissionResponse{
		OriginalURL: link.OriginalURL,
		ShortURL:    h.linkService.ShortURL(link.Code),
		ShortCode:   link.Code,
		Message:     message,
	})
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

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.ErrorResponse{Error: message})
}

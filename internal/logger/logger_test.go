package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	originalLogger := log.Logger
	defer func() { log.Logger = originalLogger }()

	tests := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{name: "Debug", level: "debug", want: zerolog.DebugLevel},
		{name: "Warn", level: "warn", want: zerolog.WarnLevel},
		{name: "Empty falls back to info", level: "", want: zerolog.InfoLevel},
		{name: "Garbage falls back to info", level: "loud", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Setup(&buf, tt.level)
			assert.Equal(t, tt.want, log.Logger.GetLevel())
		})
	}
}

func TestSetup_WritesJSON(t *testing.T) {
	originalLogger := log.Logger
	defer func() { log.Logger = originalLogger }()

	var buf bytes.Buffer
	Setup(&buf, "info")

	log.Info().Str("code", "abc123").Msg("test message")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test message", entry["message"])
	assert.Equal(t, "abc123", entry["code"])
	assert.Contains(t, entry, "time")
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer

	originalLogger := log.Logger
	defer func() { log.Logger = originalLogger }()

	log.Logger = zerolog.New(&buf).Level(zerolog.InfoLevel)

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("test response"))
	})

	handler := chimiddleware.RequestID(RequestLogger(testHandler))

	req := httptest.NewRequest(http.MethodPost, "/shorten", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))

	assert.Equal(t, "Request processed", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/shorten", entry["uri"])
	assert.Equal(t, float64(201), entry["status"])
	assert.Equal(t, float64(13), entry["size"])
	assert.NotEmpty(t, entry["request_id"])
	assert.Contains(t, entry, "duration")
}

func TestRequestLogger_ServerErrorLevel(t *testing.T) {
	var buf bytes.Buffer

	originalLogger := log.Logger
	defer func() { log.Logger = originalLogger }()

	log.Logger = zerolog.New(&buf).Level(zerolog.InfoLevel)

	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	RequestLogger(failing).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "error", entry["level"])
}

func TestResponseWriter(t *testing.T) {
	rr := httptest.NewRecorder()

	rw := NewResponseWriter(rr)

	assert.Equal(t, http.StatusOK, rw.Status())
	assert.Equal(t, 0, rw.Size())

	rw.WriteHeader(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, rw.Status())

	n, err := rw.Write([]byte("test"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = rw.Write([]byte(" data"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 9, rw.Size())

	assert.Equal(t, "test data", rr.Body.String())
}

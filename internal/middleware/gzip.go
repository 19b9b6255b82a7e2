package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/MikhailRaia/shortener-form/internal/pool"
	"github.com/rs/zerolog/log"
)

var compressibleTypes = []string{"application/json", "text/html", "text/plain"}

// bufferPool reuses response buffers between requests.
var bufferPool = pool.New[*bytes.Buffer](64)

func getBuffer() *bytes.Buffer {
	if buf := bufferPool.Get(); buf != nil {
		return buf
	}
	return new(bytes.Buffer)
}

// bufferedWriter holds the response until the handler returns so the
// Content-Type is known before deciding on compression.
type bufferedWriter struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (w *bufferedWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

// GzipMiddleware compresses text and JSON responses when the client accepts gzip.
func GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		buf := getBuffer()
		defer bufferPool.Put(buf)

		bw := &bufferedWriter{ResponseWriter: w, statusCode: http.StatusOK, body: buf}
		next.ServeHTTP(bw, r)

		if !isCompressible(w.Header().Get("Content-Type")) || buf.Len() == 0 {
			w.WriteHeader(bw.statusCode)
			_, _ = w.Write(buf.Bytes())
			return
		}

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		w.Header().Del("Content-Length")
		w.WriteHeader(bw.statusCode)

		gz, err := gzip.NewWriterLevel(w, gzip.BestSpeed)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create gzip writer")
			return
		}
		defer gz.Close()

		if _, err := gz.Write(buf.Bytes()); err != nil {
			log.Error().Err(err).Msg("Failed to write gzipped response")
		}
	})
}

func isCompressible(contentType string) bool {
	for _, t := range compressibleTypes {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}

// GzipReader transparently decompresses gzipped request bodies.
func GzipReader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Encoding") != "gzip" {
			next.ServeHTTP(w, r)
			return
		}

		gzReader, err := gzip.NewReader(r.Body)
		if err != nil {
			http.Error(w, "Failed to read gzipped request", http.StatusBadRequest)
			return
		}
		defer gzReader.Close()

		r.Body = io.NopCloser(gzReader)
		r.Header.Del("Content-Encoding")
		r.ContentLength = -1

		next.ServeHTTP(w, r)
	})
}

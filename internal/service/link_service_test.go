package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MikhailRaia/shortener-form/internal/model"
	"github.com/MikhailRaia/shortener-form/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStorage struct {
	saveFunc func(originalURL string) (model.Link, error)
	getFunc  func(code string) (model.Link, error)
	getCalls int
}

func (m *mockStorage) Save(_ context.Context, originalURL string) (model.Link, error) {
	return m.saveFunc(originalURL)
}

func (m *mockStorage) Get(_ context.Context, code string) (model.Link, error) {
	m.getCalls++
	return m.getFunc(code)
}

func (m *mockStorage) IncrementClicks(context.Context, map[string]int) error { return nil }
func (m *mockStorage) Ping(context.Context) error                            { return nil }
func (m *mockStorage) Close() error                                          { return nil }

type mockCache struct {
	data map[string]string
}

func (m *mockCache) Get(_ context.Context, code string) (string, error) {
	if v, ok := m.data[code]; ok {
		return v, nil
	}
	return "", errors.New("miss")
}

func (m *mockCache) Save(_ context.Context, code, originalURL string) error {
	m.data[code] = originalURL
	return nil
}

type mockTracker struct {
	codes []string
}

func (m *mockTracker) Track(code string) bool {
	m.codes = append(m.codes, code)
	return true
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "Plain https", input: "https://www.google.com", want: "https://www.google.com"},
		{name: "Trimmed", input: "  http://example.com/a?b=c \n", want: "http://example.com/a?b=c"},
		{name: "Empty", input: "", wantErr: ErrURLRequired},
		{name: "Whitespace", input: "   \t", wantErr: ErrURLRequired},
		{name: "No scheme", input: "not-a-valid-url", wantErr: ErrInvalidURL},
		{name: "No host", input: "https://", wantErr: ErrInvalidURL},
		{name: "Unsupported scheme", input: "ftp://example.com", wantErr: ErrInvalidURL},
		{name: "Unparseable", input: "http://[::1", wantErr: ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLinkService_Shorten(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name     string
		input    string
		saveLink model.Link
		saveErr  error
		wantCode string
		wantErr  error
		wantAny  bool
	}{
		{
			name:     "New link",
			input:    "https://example.com",
			saveLink: model.Link{Code: "abc123", OriginalURL: "https://example.com", CreatedAt: created},
			wantCode: "abc123",
		},
		{
			name:     "Existing link",
			input:    "https://example.com",
			saveLink: model.Link{Code: "old001", OriginalURL: "https://example.com"},
			saveErr:  storage.ErrURLExists,
			wantCode: "old001",
			wantErr:  storage.ErrURLExists,
		},
		{
			name:    "Invalid input never reaches storage",
			input:   "nope",
			wantErr: ErrInvalidURL,
		},
		{
			name:    "Storage failure",
			input:   "https://example.com",
			saveErr: errors.New("disk full"),
			wantAny: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved := false
			st := &mockStorage{
				saveFunc: func(originalURL string) (model.Link, error) {
					saved = true
					assert.Equal(t, "https://example.com", originalURL)
					return tt.saveLink, tt.saveErr
				},
			}

			svc := NewLinkService(st, nil, nil, "http://localhost:8080/")
			link, err := svc.Shorten(context.Background(), tt.input)

			switch {
			case tt.wantAny:
				assert.Error(t, err)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.NoError(t, err)
			}

			if errors.Is(tt.wantErr, ErrInvalidURL) {
				assert.False(t, saved)
			}
			assert.Equal(t, tt.wantCode, link.Code)
		})
	}
}

func TestLinkService_ShortURL(t *testing.T) {
	svc := NewLinkService(&mockStorage{}, nil, nil, "http://localhost:8080/")
	assert.Equal(t, "http://localhost:8080/abc123", svc.ShortURL("abc123"))
}

func TestLinkService_Resolve(t *testing.T) {
	st := &mockStorage{
		getFunc: func(code string) (model.Link, error) {
			if code == "abc123" {
				return model.Link{Code: code, OriginalURL: "https://example.com"}, nil
			}
			return model.Link{}, storage.ErrNotFound
		},
	}
	cache := &mockCache{data: map[string]string{}}
	tracker := &mockTracker{}

	svc := NewLinkService(st, cache, tracker, "http://localhost:8080")
	ctx := context.Background()

	got, err := svc.Resolve(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got)
	assert.Equal(t, "https://example.com", cache.data["abc123"])

	got, err = svc.Resolve(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got)
	assert.Equal(t, 1, st.getCalls, "second lookup is served by the cache")

	_, err = svc.Resolve(ctx, "zzz999")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.Equal(t, []string{"abc123", "abc123"}, tracker.codes)
}

func TestLinkService_Stats(t *testing.T) {
	st := &mockStorage{
		getFunc: func(code string) (model.Link, error) {
			return model.Link{Code: code, OriginalURL: "https://example.com", Clicks: 7}, nil
		},
	}

	svc := NewLinkService(st, nil, nil, "http://localhost:8080")
	link, err := svc.Stats(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, 7, link.Clicks)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/MikhailRaia/shortener-form/internal/model"
	"github.com/MikhailRaia/shortener-form/internal/storage"
	"github.com/rs/zerolog/log"
)

var (
	// ErrURLRequired is returned for empty input.
	ErrURLRequired = errors.New("url is required")
	// ErrInvalidURL is returned when the input is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url format")
)

// LinkCache is an optional read-through cache for redirects.
type LinkCache interface {
	Get(ctx context.Context, code string) (string, error)
	Save(ctx context.Context, code, originalURL string) error
}

// ClickTracker receives one event per successful redirect.
type ClickTracker interface {
	Track(code string) bool
}

// LinkService provides business logic for creating, resolving and inspecting short links.
type LinkService struct {
	storage storage.LinkStorage
	cache   LinkCache
	clicks  ClickTracker
	baseURL string
}

// NewLinkService constructs a LinkService. cache and clicks may be nil.
func NewLinkService(storage storage.LinkStorage, cache LinkCache, clicks ClickTracker, baseURL string) *LinkService {
	return &LinkService{
		storage: storage,
		cache:   cache,
		clicks:  clicks,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Shorten validates rawURL and stores it. For an already known URL the
// existing link is returned together with storage.ErrURLExists.
func (s *LinkService) Shorten(ctx context.Context, rawURL string) (model.Link, error) {
	originalURL, err := NormalizeURL(rawURL)
	if err != nil {
		return model.Link{}, err
	}

	link, err := s.storage.Save(ctx, originalURL)
	if err != nil {
		if errors.Is(err, storage.ErrURLExists) {
			return link, err
		}
		return model.Link{}, fmt.Errorf("error saving link: %w", err)
	}

	return link, nil
}

// ShortURL returns the absolute short URL for a code.
func (s *LinkService) ShortURL(code string) string {
	return s.baseURL + "/" + code
}

// Resolve returns the original URL for code and records a click.
func (s *LinkService) Resolve(ctx context.Context, code string) (string, error) {
	originalURL, err := s.lookup(ctx, code)
	if err != nil {
		return "", err
	}

	if s.clicks != nil {
		s.clicks.Track(code)
	}

	return originalURL, nil
}

func (s *LinkService) lookup(ctx context.Context, code string) (string, error) {
	if s.cache != nil {
		if originalURL, err := s.cache.Get(ctx, code); err == nil {
			return originalURL, nil
		}
	}

	link, err := s.storage.Get(ctx, code)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Save(ctx, code, link.OriginalURL); err != nil {
			log.Warn().Err(err).Str("code", code).Msg("Failed to cache link")
		}
	}

	return link.OriginalURL, nil
}

// Stats returns the stored link with its click counter.
func (s *LinkService) Stats(ctx context.Context, code string) (model.Link, error) {
	return s.storage.Get(ctx, code)
}

// Ping checks the storage backend.
func (s *LinkService) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}

// NormalizeURL trims rawURL and checks that it is an absolute http or https URL.
func NormalizeURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", ErrURLRequired
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", ErrInvalidURL
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return "", ErrInvalidURL
	}

	return trimmed, nil
}

package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MikhailRaia/shortener-form/internal/generator"
	"github.com/MikhailRaia/shortener-form/internal/model"
	"github.com/MikhailRaia/shortener-form/internal/storage"
)

// Storage implements in-memory LinkStorage for testing and development.
type Storage struct {
	links map[string]model.Link
	codes map[string]string
	mutex sync.RWMutex
	now   func() time.Time
}

// NewStorage creates a new in-memory storage instance.
func NewStorage() *Storage {
	return &Storage{
		links: make(map[string]model.Link),
		codes: make(map[string]string),
		now:   time.Now,
	}
}

// Save stores a new URL and returns its link. A repeated URL returns the
// existing link together with storage.ErrURLExists.
func (s *Storage) Save(_ context.Context, originalURL string) (model.Link, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if code, ok := s.codes[originalURL]; ok {
		return s.links[code], storage.ErrURLExists
	}

	for attempt := 0; attempt < storage.MaxCodeAttempts; attempt++ {
		code, err := generator.GenerateCode(storage.CodeLength)
		if err != nil {
			return model.Link{}, fmt.Errorf("failed to generate code: %w", err)
		}

		if _, taken := s.links[code]; taken {
			continue
		}

		link := model.Link{
			Code:        code,
			OriginalURL: originalURL,
			CreatedAt:   s.now().UTC(),
		}
		s.links[code] = link
		s.codes[originalURL] = code

		return link, nil
	}

	return model.Link{}, storage.ErrCodeSpaceExhausted
}

// Get retrieves the link for a given short code.
func (s *Storage) Get(_ context.Context, code string) (model.Link, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	link, found := s.links[code]
	if !found {
		return model.Link{}, storage.ErrNotFound
	}

	return link, nil
}

// IncrementClicks adds the given deltas to the click counters. Unknown codes are skipped.
func (s *Storage) IncrementClicks(_ context.Context, counts map[string]int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for code, n := range counts {
		link, found := s.links[code]
		if !found {
			continue
		}
		link.Clicks += n
		s.links[code] = link
	}

	return nil
}

// Ping always succeeds for the in-memory storage.
func (s *Storage) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Storage) Close() error {
	return nil
}

package storage

import (
	"context"
	"errors"

	"github.com/MikhailRaia/shortener-form/internal/model"
)

// CodeLength is the length of generated short codes.
const CodeLength = 6

// MaxCodeAttempts bounds retries on short code collisions.
const MaxCodeAttempts = 10

var (
	// ErrURLExists is returned together with the existing link when the original URL was already shortened.
	ErrURLExists = errors.New("url already shortened")
	// ErrNotFound is returned when no link matches the short code.
	ErrNotFound = errors.New("link not found")
	// ErrCodeSpaceExhausted is returned when no free short code was found within MaxCodeAttempts.
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique short code")
)

// LinkStorage persists short links and their click counters.
type LinkStorage interface {
	Save(ctx context.Context, originalURL string) (model.Link, error)
	Get(ctx context.Context, code string) (model.Link, error)
	IncrementClicks(ctx context.Context, counts map[string]int) error
	Ping(ctx context.Context) error
	Close() error
}

package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/MikhailRaia/shortener-form/internal/generator"
	"github.com/MikhailRaia/shortener-form/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorage_EmptyDSN(t *testing.T) {
	_, err := NewStorage(context.Background(), "")
	assert.Error(t, err)
}

// Requires a reachable database in TEST_DATABASE_DSN.
func TestStorage_RoundTrip(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}

	ctx := context.Background()
	s, err := NewStorage(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	suffix, err := generator.GenerateCode(10)
	require.NoError(t, err)
	originalURL := "https://example.com/" + suffix

	link, err := s.Save(ctx, originalURL)
	require.NoError(t, err)

	dup, err := s.Save(ctx, originalURL)
	assert.ErrorIs(t, err, storage.ErrURLExists)
	assert.Equal(t, link.Code, dup.Code)

	require.NoError(t, s.IncrementClicks(ctx, map[string]int{link.Code: 2}))

	got, err := s.Get(ctx, link.Code)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Clicks)

	_, err = s.Get(ctx, "zzzzzzzzzzzz")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

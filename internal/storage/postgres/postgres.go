package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikhailRaia/shortener-form/internal/generator"
	"github.com/MikhailRaia/shortener-form/internal/model"
	"github.com/MikhailRaia/shortener-form/internal/storage"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"
)

const (
	codeConstraint = "links_pkey"
	urlConstraint  = "links_original_url_key"
)

type Storage struct {
	pool *pgxpool.Pool
}

func NewStorage(ctx context.Context, dsn string) (*Storage, error) {
	if dsn == "" {
		return nil, errors.New("database connection string is empty")
	}

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{pool: pool}

	if err := s.createTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *Storage) createTable(ctx context.Context) error {
	createTableQuery := `
		CREATE TABLE IF NOT EXISTS links (
			code VARCHAR(16) PRIMARY KEY,
			original_url TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			clicks INTEGER NOT NULL DEFAULT 0,
			CONSTRAINT links_original_url_key UNIQUE (original_url)
		);
	`

	if _, err := s.pool.Exec(ctx, createTableQuery); err != nil {
		return fmt.Errorf("failed to create links table: %w", err)
	}

	return nil
}

// Save inserts a new link. The unique constraint on original_url reports
// duplicates; a collision on the primary key retries with a fresh code.
func (s *Storage) Save(ctx context.Context, originalURL string) (model.Link, error) {
	existing, err := s.getByURL(ctx, originalURL)
	if err == nil {
		return existing, storage.ErrURLExists
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return model.Link{}, err
	}

	for attempt := 0; attempt < storage.MaxCodeAttempts; attempt++ {
		code, err := generator.GenerateCode(storage.CodeLength)
		if err != nil {
			return model.Link{}, fmt.Errorf("error generating code: %w", err)
		}

		link := model.Link{Code: code, OriginalURL: originalURL}
		err = s.pool.QueryRow(ctx,
			"INSERT INTO links (code, original_url) VALUES ($1, $2) RETURNING created_at",
			code, originalURL,
		).Scan(&link.CreatedAt)
		if err == nil {
			return link, nil
		}

		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
			return model.Link{}, fmt.Errorf("error inserting link: %w", err)
		}

		switch pgErr.ConstraintName {
		case urlConstraint:
			existing, getErr := s.getByURL(ctx, originalURL)
			if getErr != nil {
				return model.Link{}, getErr
			}
			return existing, storage.ErrURLExists
		case codeConstraint:
			log.Debug().Str("code", code).Msg("Short code collision, retrying")
			continue
		default:
			return model.Link{}, fmt.Errorf("error inserting link: %w", err)
		}
	}

	return model.Link{}, storage.ErrCodeSpaceExhausted
}

func (s *Storage) Get(ctx context.Context, code string) (model.Link, error) {
	return s.scanLink(s.pool.QueryRow(ctx,
		"SELECT code, original_url, created_at, clicks FROM links WHERE code = $1", code))
}

func (s *Storage) getByURL(ctx context.Context, originalURL string) (model.Link, error) {
	return s.scanLink(s.pool.QueryRow(ctx,
		"SELECT code, original_url, created_at, clicks FROM links WHERE original_url = $1", originalURL))
}

func (s *Storage) scanLink(row pgx.Row) (model.Link, error) {
	var link model.Link
	err := row.Scan(&link.Code, &link.OriginalURL, &link.CreatedAt, &link.Clicks)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Link{}, storage.ErrNotFound
		}
		return model.Link{}, fmt.Errorf("error querying link: %w", err)
	}

	return link, nil
}

// IncrementClicks applies all deltas in one batch.
func (s *Storage) IncrementClicks(ctx context.Context, counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for code, n := range counts {
		batch.Queue("UPDATE links SET clicks = clicks + $1 WHERE code = $2", n, code)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range counts {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("error updating clicks: %w", err)
		}
	}

	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Storage) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

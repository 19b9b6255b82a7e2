package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/MikhailRaia/shortener-form/internal/generator"
	"github.com/MikhailRaia/shortener-form/internal/model"
	"github.com/MikhailRaia/shortener-form/internal/storage"
	"github.com/google/uuid"
)

// Storage implements LinkStorage backed by an append-only JSONL journal.
// Links are created by "create" records and counters grow through "clicks" records.
type Storage struct {
	filePath    string
	links       map[string]model.Link
	codes       map[string]string
	mu          sync.RWMutex
	fileWriteMu sync.Mutex
}

// NewStorage creates a file-backed storage at the provided path and replays its journal.
func NewStorage(filePath string) (*Storage, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	s := &Storage{
		filePath: filePath,
		links:    make(map[string]model.Link),
		codes:    make(map[string]string),
	}

	if err := s.loadFromFile(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Storage) Save(_ context.Context, originalURL string) (model.Link, error) {
	s.mu.Lock()
	if code, exists := s.codes[originalURL]; exists {
		link := s.links[code]
		s.mu.Unlock()
		return link, storage.ErrURLExists
	}

	var link model.Link
	for attempt := 0; attempt < storage.MaxCodeAttempts; attempt++ {
		code, err := generator.GenerateCode(storage.CodeLength)
		if err != nil {
			s.mu.Unlock()
			return model.Link{}, fmt.Errorf("failed to generate code: %w", err)
		}
		if _, taken := s.links[code]; !taken {
			link = model.Link{Code: code, OriginalURL: originalURL, CreatedAt: time.Now().UTC()}
			break
		}
	}

	if link.Code == "" {
		s.mu.Unlock()
		return model.Link{}, storage.ErrCodeSpaceExhausted
	}

	s.links[link.Code] = link
	s.codes[originalURL] = link.Code
	s.mu.Unlock()

	record := model.LinkRecord{
		UUID:        uuid.NewString(),
		Kind:        model.RecordCreate,
		ShortCode:   link.Code,
		OriginalURL: originalURL,
		CreatedAt:   link.CreatedAt,
	}

	if err := s.saveRecordToFile(record); err != nil {
		return model.Link{}, err
	}

	return link, nil
}

func (s *Storage) Get(_ context.Context, code string) (model.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, found := s.links[code]
	if !found {
		return model.Link{}, storage.ErrNotFound
	}

	return link, nil
}

func (s *Storage) IncrementClicks(_ context.Context, counts map[string]int) error {
	records := make([]model.LinkRecord, 0, len(counts))

	s.mu.Lock()
	for code, n := range counts {
		link, found := s.links[code]
		if !found || n <= 0 {
			continue
		}
		link.Clicks += n
		s.links[code] = link

		records = append(records, model.LinkRecord{
			UUID:      uuid.NewString(),
			Kind:      model.RecordClicks,
			ShortCode: code,
			Clicks:    n,
		})
	}
	s.mu.Unlock()

	for _, record := range records {
		if err := s.saveRecordToFile(record); err != nil {
			return fmt.Errorf("failed to save click record: %w", err)
		}
	}

	return nil
}

// Ping reports whether the journal file is still reachable.
func (s *Storage) Ping(context.Context) error {
	_, err := os.Stat(s.filePath)
	return err
}

func (s *Storage) Close() error {
	return nil
}

func (s *Storage) loadFromFile() error {
	file, err := os.OpenFile(s.filePath, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record model.LinkRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}

		switch record.Kind {
		case model.RecordCreate:
			s.links[record.ShortCode] = model.Link{
				Code:        record.ShortCode,
				OriginalURL: record.OriginalURL,
				CreatedAt:   record.CreatedAt,
			}
			s.codes[record.OriginalURL] = record.ShortCode
		case model.RecordClicks:
			if link, ok := s.links[record.ShortCode]; ok {
				link.Clicks += record.Clicks
				s.links[record.ShortCode] = link
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	return nil
}

func (s *Storage) saveRecordToFile(record model.LinkRecord) error {
	s.fileWriteMu.Lock()
	defer s.fileWriteMu.Unlock()

	file, err := os.OpenFile(s.filePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file for writing: %w", err)
	}
	defer file.Close()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	return nil
}

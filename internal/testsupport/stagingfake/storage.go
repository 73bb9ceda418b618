// Package stagingfake is an in-memory staging container for tests.
package stagingfake

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"media-pipeline/internal/domain/entities"
	"media-pipeline/internal/domain/repositories"
)

type Storage struct {
	mu      sync.Mutex
	blobs   map[string]*entities.StagedBlob
	content map[string][]byte

	attempts map[string]int

	// Copies records the source URL of every StartCopy by blob name.
	Copies   map[string]string
	Deleted  []string
	Poisoned []string
}

func New() *Storage {
	return &Storage{
		blobs:    make(map[string]*entities.StagedBlob),
		content:  make(map[string][]byte),
		attempts: make(map[string]int),
		Copies:   make(map[string]string),
	}
}

var _ repositories.StagingStorage = (*Storage)(nil)

func (s *Storage) Put(_ context.Context, name string, body io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[name] = &entities.StagedBlob{Name: name, Size: int64(len(data)), ContentType: contentType, CopyStatus: entities.CopyStatusSuccess}
	s.content[name] = data
	delete(s.attempts, name)
	return nil
}

// StartCopy leaves the blob pending until CompleteCopy or FailCopy is called.
func (s *Storage) StartCopy(_ context.Context, sourceURL, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[name] = &entities.StagedBlob{Name: name, CopyStatus: entities.CopyStatusPending}
	delete(s.attempts, name)
	s.Copies[name] = sourceURL
	return nil
}

func (s *Storage) CompleteCopy(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[name] = &entities.StagedBlob{Name: name, Size: int64(len(data)), CopyStatus: entities.CopyStatusSuccess}
	s.content[name] = data
}

func (s *Storage) FailCopy(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.blobs[name]; ok {
		b.CopyStatus = entities.CopyStatusFailed
	}
}

func (s *Storage) Content(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.content[name]
	return data, ok
}

func (s *Storage) List(context.Context) ([]entities.StagedBlob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.StagedBlob, 0, len(s.blobs))
	for _, b := range s.blobs {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Storage) Stat(_ context.Context, name string) (*entities.StagedBlob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[name]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *Storage) PresignGet(_ context.Context, name string, _ time.Duration) (string, error) {
	return "https://staging.example.test/" + name + "?sig=fake", nil
}

func (s *Storage) DeleteIfExists(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, name)
	delete(s.content, name)
	s.Deleted = append(s.Deleted, name)
	return nil
}

func (s *Storage) RecordFailure(_ context.Context, name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[name]; !ok {
		return 0, repositories.ErrNotFound
	}
	s.attempts[name]++
	return s.attempts[name], nil
}

// MoveToPoison drops the blob from listings and records its name in Poisoned.
func (s *Storage) MoveToPoison(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[name]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.blobs, name)
	delete(s.content, name)
	delete(s.attempts, name)
	s.Poisoned = append(s.Poisoned, name)
	return nil
}

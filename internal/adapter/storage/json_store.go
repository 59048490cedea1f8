package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"orderstock/internal/port"
)

// ErrPersistence marks failures of the backing medium (disk, Redis, MySQL).
// Domain errors never wrap it.
var ErrPersistence = errors.New("persistence failure")

// JSONStore keeps a record collection in a single JSON file. Every operation
// reads the whole file and mutations write it back whole, under one mutex, so
// no caller ever observes a partially written file or a stale read-modify
// window.
type JSONStore[T port.Record] struct {
	path string
	mu   sync.Mutex
}

func NewJSONStore[T port.Record](path string) *JSONStore[T] {
	return &JSONStore[T]{path: path}
}

func (s *JSONStore[T]) List(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *JSONStore[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load()
	if err != nil {
		return zero, false, err
	}
	for _, rec := range recs {
		if rec.Key() == id {
			return rec, true, nil
		}
	}
	return zero, false, nil
}

func (s *JSONStore[T]) Insert(ctx context.Context, rec T) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load()
	if err != nil {
		return zero, err
	}
	recs = append(recs, rec)
	if err := s.save(recs); err != nil {
		return zero, err
	}
	return rec, nil
}

func (s *JSONStore[T]) Replace(ctx context.Context, id string, rec T) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load()
	if err != nil {
		return false, err
	}
	idx := indexOf(recs, id)
	if idx < 0 {
		return false, nil
	}
	recs[idx] = rec
	if err := s.save(recs); err != nil {
		return false, err
	}
	return true, nil
}

func (s *JSONStore[T]) Update(ctx context.Context, id string, fn func(T) (T, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load()
	if err != nil {
		return false, err
	}
	idx := indexOf(recs, id)
	if idx < 0 {
		return false, nil
	}
	updated, err := fn(recs[idx])
	if err != nil {
		return false, err
	}
	recs[idx] = updated
	if err := s.save(recs); err != nil {
		return false, err
	}
	return true, nil
}

// load reads the whole file. A missing or empty file is an empty collection.
func (s *JSONStore[T]) load() ([]T, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrPersistence, s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var recs []T
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrPersistence, s.path, err)
	}
	return recs, nil
}

func (s *JSONStore[T]) save(recs []T) error {
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrPersistence, s.path, err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrPersistence, s.path, err)
	}
	return nil
}

func indexOf[T port.Record](recs []T, id string) int {
	for i, rec := range recs {
		if rec.Key() == id {
			return i
		}
	}
	return -1
}

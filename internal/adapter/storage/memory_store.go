package storage

import (
	"context"
	"sync"

	"orderstock/internal/port"
)

// MemoryStore is an in-memory Collection with the same contract as the
// durable backends. Used by tests and the "memory" storage backend.
type MemoryStore[T port.Record] struct {
	mu   sync.Mutex
	recs []T
}

func NewMemoryStore[T port.Record]() *MemoryStore[T] {
	return &MemoryStore[T]{}
}

func (s *MemoryStore[T]) List(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]T, len(s.recs))
	copy(out, s.recs)
	return out, nil
}

func (s *MemoryStore[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.recs, id)
	if idx < 0 {
		return zero, false, nil
	}
	return s.recs[idx], true, nil
}

func (s *MemoryStore[T]) Insert(ctx context.Context, rec T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recs = append(s.recs, rec)
	return rec, nil
}

func (s *MemoryStore[T]) Replace(ctx context.Context, id string, rec T) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.recs, id)
	if idx < 0 {
		return false, nil
	}
	s.recs[idx] = rec
	return true, nil
}

func (s *MemoryStore[T]) Update(ctx context.Context, id string, fn func(T) (T, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.recs, id)
	if idx < 0 {
		return false, nil
	}
	updated, err := fn(s.recs[idx])
	if err != nil {
		return false, err
	}
	s.recs[idx] = updated
	return true, nil
}

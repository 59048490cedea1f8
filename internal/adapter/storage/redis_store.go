package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"orderstock/internal/port"
)

// RedisStore keeps the whole collection as one JSON value under a single key.
// The guard is the store's own mutex, not a distributed lock: this process is
// the only persistence authority, Redis is just the medium.
type RedisStore[T port.Record] struct {
	client *redis.Client
	key    string
	mu     sync.Mutex
}

func NewRedisStore[T port.Record](client *redis.Client, key string) *RedisStore[T] {
	return &RedisStore[T]{client: client, key: key}
}

func (s *RedisStore[T]) List(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *RedisStore[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load(ctx)
	if err != nil {
		return zero, false, err
	}
	idx := indexOf(recs, id)
	if idx < 0 {
		return zero, false, nil
	}
	return recs[idx], true, nil
}

func (s *RedisStore[T]) Insert(ctx context.Context, rec T) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load(ctx)
	if err != nil {
		return zero, err
	}
	recs = append(recs, rec)
	if err := s.save(ctx, recs); err != nil {
		return zero, err
	}
	return rec, nil
}

func (s *RedisStore[T]) Replace(ctx context.Context, id string, rec T) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	idx := indexOf(recs, id)
	if idx < 0 {
		return false, nil
	}
	recs[idx] = rec
	if err := s.save(ctx, recs); err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisStore[T]) Update(ctx context.Context, id string, fn func(T) (T, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.load(ctx)
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
	if err := s.save(ctx, recs); err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisStore[T]) load(ctx context.Context) ([]T, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get %s: %v", ErrPersistence, s.key, err)
	}
	var recs []T
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrPersistence, s.key, err)
	}
	return recs, nil
}

func (s *RedisStore[T]) save(ctx context.Context, recs []T) error {
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrPersistence, s.key, err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %v", ErrPersistence, s.key, err)
	}
	return nil
}

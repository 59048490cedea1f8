package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"orderstock/internal/port"
)

// MySQLStore keeps the collection as one row per record (id, position,
// payload). Rows are written individually instead of whole-document, but the
// store mutex still serializes every read-modify-persist cycle, which is the
// contract the ledgers rely on.
type MySQLStore[T port.Record] struct {
	db    *sql.DB
	table string
	mu    sync.Mutex
}

func NewMySQLStore[T port.Record](ctx context.Context, db *sql.DB, table string) (*MySQLStore[T], error) {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(64) PRIMARY KEY,
			position INT NOT NULL,
			payload JSON NOT NULL
		)`, table))
	if err != nil {
		return nil, fmt.Errorf("%w: create table %s: %v", ErrPersistence, table, err)
	}
	return &MySQLStore[T]{db: db, table: table}, nil
}

func (s *MySQLStore[T]) List(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *MySQLStore[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, found, err := s.fetch(ctx, id)
	if err != nil {
		return zero, false, err
	}
	return rec, found, nil
}

func (s *MySQLStore[T]) Insert(ctx context.Context, rec T) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("%w: encode record %s: %v", ErrPersistence, rec.Key(), err)
	}
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, position, payload)
		SELECT ?, COALESCE(MAX(position), 0) + 1, ? FROM %s`, s.table, s.table),
		rec.Key(), payload)
	if err != nil {
		return zero, fmt.Errorf("%w: insert into %s: %v", ErrPersistence, s.table, err)
	}
	return rec, nil
}

func (s *MySQLStore[T]) Replace(ctx context.Context, id string, rec T) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, found, err := s.fetch(ctx, id)
	if err != nil || !found {
		return false, err
	}
	if err := s.overwrite(ctx, id, rec); err != nil {
		return false, err
	}
	return true, nil
}

func (s *MySQLStore[T]) Update(ctx context.Context, id string, fn func(T) (T, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, found, err := s.fetch(ctx, id)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	updated, err := fn(rec)
	if err != nil {
		return false, err
	}
	if err := s.overwrite(ctx, id, updated); err != nil {
		return false, err
	}
	return true, nil
}

func (s *MySQLStore[T]) load(ctx context.Context) ([]T, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT payload FROM %s ORDER BY position`, s.table))
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", ErrPersistence, s.table, err)
	}
	defer rows.Close()

	var recs []T
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", ErrPersistence, s.table, err)
		}
		var rec T
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("%w: decode row in %s: %v", ErrPersistence, s.table, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate %s: %v", ErrPersistence, s.table, err)
	}
	return recs, nil
}

func (s *MySQLStore[T]) fetch(ctx context.Context, id string) (T, bool, error) {
	var zero T
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT payload FROM %s WHERE id = ?`, s.table), id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("%w: query %s: %v", ErrPersistence, s.table, err)
	}
	var rec T
	if err := json.Unmarshal(payload, &rec); err != nil {
		return zero, false, fmt.Errorf("%w: decode row in %s: %v", ErrPersistence, s.table, err)
	}
	return rec, true, nil
}

// overwrite assumes the row exists; existence is checked by the caller under
// the same lock. RowsAffected is useless here because MySQL reports 0 for a
// no-op payload.
func (s *MySQLStore[T]) overwrite(ctx context.Context, id string, rec T) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encode record %s: %v", ErrPersistence, id, err)
	}
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET payload = ? WHERE id = ?`, s.table), payload, id)
	if err != nil {
		return fmt.Errorf("%w: update %s: %v", ErrPersistence, s.table, err)
	}
	return nil
}

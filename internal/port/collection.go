package port

import "context"

// Record is anything a Collection can store, keyed by identity.
type Record interface {
	Key() string
}

// Collection is identity-keyed storage for a homogeneous set of records in
// insertion order. Implementations must serialize every read-modify-persist
// cycle behind a single guard per instance: two concurrent mutating calls
// never interleave, the second blocks until the first has persisted.
//
// A missing backing medium reads as an empty collection, not an error.
type Collection[T Record] interface {
	// List returns every record in insertion order.
	List(ctx context.Context) ([]T, error)

	// Get returns the record with the given key, or false if absent.
	Get(ctx context.Context, id string) (T, bool, error)

	// Insert appends the record and persists, returning the stored record.
	Insert(ctx context.Context, rec T) (T, error)

	// Replace overwrites the record with the given key in place and persists.
	// Returns false without inserting when the key is absent; this is not an
	// upsert.
	Replace(ctx context.Context, id string, rec T) (bool, error)

	// Update locates the record, applies fn, and persists the result, all
	// inside one critical section. Returns (false, nil) when the key is
	// absent. An error from fn aborts the update: nothing is persisted and
	// the error is returned as-is.
	Update(ctx context.Context, id string, fn func(T) (T, error)) (bool, error)
}

// Package repository defines the record store interface and its drivers.
package repository

import "context"

// Record is a single stored document.
type Record struct {
	Key  string
	Data []byte
}

// UpdateFunc receives the current value of a record, or nil when the record
// does not exist yet, and returns the value to store. Returning ErrNoChange
// leaves the record untouched and makes Update return nil. Drivers with
// optimistic concurrency may call fn more than once.
type UpdateFunc func(current []byte) ([]byte, error)

// Store persists opaque JSON documents addressed by collection and key.
type Store interface {
	// Get returns the record data. Returns ErrNotFound if the key is unknown.
	Get(ctx context.Context, collection, key string) ([]byte, error)

	// Create stores data only if the key is absent.
	// Returns ErrAlreadyExists if another record holds the key.
	Create(ctx context.Context, collection, key string, data []byte) error

	// Delete removes a record and reports whether it existed.
	Delete(ctx context.Context, collection, key string) (bool, error)

	// List returns every record in a collection ordered by key.
	List(ctx context.Context, collection string) ([]Record, error)

	// Update performs an atomic read-modify-write of a single record.
	Update(ctx context.Context, collection, key string, fn UpdateFunc) error

	// Close releases the underlying connections.
	Close() error
}

// checkKey rejects names that are unsafe as file names or key segments.
func checkKey(collection, key string) error {
	if !validName(collection) {
		return wrapInvalid("collection", collection)
	}
	if !validName(key) {
		return wrapInvalid("key", key)
	}
	return nil
}

func validName(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return false
		}
	}
	return true
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("blob not found")

// Store is the object store boundary. Tables, session snapshots, journals
// and inboxes are all whole-value blobs behind this interface; there is no
// partial update primitive, which is what forces the read-modify-write
// pattern upstream.
type Store interface {
	// Get returns the blob at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores data at key, overwriting any previous value.
	Put(ctx context.Context, key string, data []byte) error

	// List returns all keys under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the blob at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

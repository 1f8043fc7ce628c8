package store

import "context"

// Store is a path-addressed document store. Implementations must be
// thread-safe; each of the four operations is atomic per call, but no
// atomicity is promised across calls.
type Store interface {
	// Get returns the document at path. If no document is stored at the
	// exact path, descendants are assembled into a nested document keyed by
	// path segment. Returns ErrNotFound if the result would be empty.
	Get(ctx context.Context, path string) (Document, error)

	// Set overwrites the subtree at path with doc. Descendant documents
	// under the path are removed.
	Set(ctx context.Context, path string, doc Document) error

	// Update shallow-merges the named fields into the document at path.
	// Fields not named keep their current values. An absent document is
	// created with exactly the named fields.
	Update(ctx context.Context, path string, fields Document) error

	// Delete removes the subtree at path. Deleting an absent path is a
	// no-op.
	Delete(ctx context.Context, path string) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// Transactional is the optional hardening extension for backends that can
// commit multiple path operations atomically. The Store passed to fn is
// bound to a single transaction; its writes become visible together when fn
// returns nil, and not at all when fn returns an error.
type Transactional interface {
	WithTransaction(ctx context.Context, fn func(tx Store) error) error
}

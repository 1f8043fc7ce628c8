package badger

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tastelist/store"
)

// Store implements store.Store on top of a Backend. Every public call runs
// in its own BadgerDB transaction, which makes each of the four operations
// atomic per path. WithTransaction is the multi-path escape hatch.
type Store struct {
	backend *Backend
	logger  *slog.Logger
}

var (
	_ store.Store         = (*Store)(nil)
	_ store.Transactional = (*Store)(nil)
)

// NewStore creates a Store over an open Backend.
func NewStore(backend *Backend) *Store {
	return &Store{
		backend: backend,
		logger:  slog.Default(),
	}
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Get returns the document at path, assembling descendants into a nested
// document when no exact key exists. Empty results map to ErrNotFound.
func (s *Store) Get(ctx context.Context, path string) (store.Document, error) {
	if err := store.ValidatePath(path); err != nil {
		return nil, err
	}
	var doc store.Document
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		doc, err = txGet(tx, path)
		return err
	}, false)
	return doc, mapErr(err)
}

// Set overwrites the subtree at path with doc.
func (s *Store) Set(ctx context.Context, path string, doc store.Document) error {
	if err := store.ValidatePath(path); err != nil {
		return err
	}
	return mapErr(s.backend.WithTx(func(tx *badger.Txn) error {
		if err := txSet(tx, path, doc); err != nil {
			return err
		}
		return tx.Commit()
	}, true))
}

// Update shallow-merges fields into the document at path, creating it if
// absent. Sibling fields and descendant documents are untouched.
func (s *Store) Update(ctx context.Context, path string, fields store.Document) error {
	if err := store.ValidatePath(path); err != nil {
		return err
	}
	return mapErr(s.backend.WithTx(func(tx *badger.Txn) error {
		if err := txUpdate(tx, path, fields); err != nil {
			return err
		}
		return tx.Commit()
	}, true))
}

// Delete removes the subtree at path. Absent paths are a no-op.
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := store.ValidatePath(path); err != nil {
		return err
	}
	return mapErr(s.backend.WithTx(func(tx *badger.Txn) error {
		if err := txDelete(tx, path); err != nil {
			return err
		}
		return tx.Commit()
	}, true))
}

// WithTransaction runs fn against a Store view bound to a single BadgerDB
// transaction. All writes issued through the view commit together when fn
// returns nil and are discarded when it returns an error.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return mapErr(s.backend.WithTx(func(btx *badger.Txn) error {
		if err := fn(&txnStore{tx: btx}); err != nil {
			return err
		}
		return btx.Commit()
	}, true))
}

// txnStore is a Store view over one open transaction.
type txnStore struct {
	tx *badger.Txn
}

var _ store.Store = (*txnStore)(nil)

func (t *txnStore) Get(ctx context.Context, path string) (store.Document, error) {
	if err := store.ValidatePath(path); err != nil {
		return nil, err
	}
	return txGet(t.tx, path)
}

func (t *txnStore) Set(ctx context.Context, path string, doc store.Document) error {
	if err := store.ValidatePath(path); err != nil {
		return err
	}
	return txSet(t.tx, path, doc)
}

func (t *txnStore) Update(ctx context.Context, path string, fields store.Document) error {
	if err := store.ValidatePath(path); err != nil {
		return err
	}
	return txUpdate(t.tx, path, fields)
}

func (t *txnStore) Delete(ctx context.Context, path string) error {
	if err := store.ValidatePath(path); err != nil {
		return err
	}
	return txDelete(t.tx, path)
}

// Close is a no-op; the owning WithTransaction call manages the lifecycle.
func (t *txnStore) Close() error {
	return nil
}

func txGet(tx *badger.Txn, path string) (store.Document, error) {
	item, err := tx.Get([]byte(path))
	switch {
	case err == nil:
		var doc store.Document
		verr := item.Value(func(val []byte) error {
			var uerr error
			doc, uerr = store.UnmarshalDocument(val)
			return uerr
		})
		if verr != nil {
			return nil, verr
		}
		// Empty object and absent are equivalent at this layer.
		if len(doc) == 0 {
			return nil, store.ErrNotFound
		}
		return doc, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return txAssemble(tx, path)
	default:
		return nil, err
	}
}

// txAssemble builds a nested document from all keys under path, keyed by
// path segment. "boards/b1/categories" becomes {c1: {...}, c2: {...}}.
func txAssemble(tx *badger.Txn, path string) (store.Document, error) {
	prefix := path + "/"
	root := store.Document{}

	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()
		rel := strings.TrimPrefix(string(item.Key()), prefix)

		var child store.Document
		err := item.Value(func(val []byte) error {
			var uerr error
			child, uerr = store.UnmarshalDocument(val)
			return uerr
		})
		if err != nil {
			return nil, err
		}
		if len(child) == 0 {
			continue
		}

		node := root
		segs := strings.Split(rel, "/")
		for _, seg := range segs[:len(segs)-1] {
			next, ok := node[seg].(store.Document)
			if !ok {
				next = store.Document{}
				node[seg] = next
			}
			node = next
		}
		node[segs[len(segs)-1]] = child
	}

	if len(root) == 0 {
		return nil, store.ErrNotFound
	}
	return root, nil
}

func txSet(tx *badger.Txn, path string, doc store.Document) error {
	// Set replaces the whole subtree, so stale descendants must go.
	keys, err := descendantKeys(tx, path)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}

	data, err := store.MarshalDocument(doc)
	if err != nil {
		return err
	}
	return tx.Set([]byte(path), data)
}

func txUpdate(tx *badger.Txn, path string, fields store.Document) error {
	var doc store.Document

	item, err := tx.Get([]byte(path))
	switch {
	case err == nil:
		verr := item.Value(func(val []byte) error {
			var uerr error
			doc, uerr = store.UnmarshalDocument(val)
			return uerr
		})
		if verr != nil {
			return verr
		}
	case errors.Is(err, badger.ErrKeyNotFound):
		doc = store.Document{}
	default:
		return err
	}

	doc = store.Merge(doc, fields)
	data, err := store.MarshalDocument(doc)
	if err != nil {
		return err
	}
	return tx.Set([]byte(path), data)
}

func txDelete(tx *badger.Txn, path string) error {
	keys, err := descendantKeys(tx, path)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	err = tx.Delete([]byte(path))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

// descendantKeys collects every key strictly under path. Keys are copied out
// of the iterator before any deletion happens.
func descendantKeys(tx *badger.Txn, path string) ([][]byte, error) {
	prefix := []byte(path + "/")

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	return keys, nil
}

// mapErr translates backend errors into store sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, badger.ErrDBClosed) {
		return store.ErrStoreClosed
	}
	return err
}

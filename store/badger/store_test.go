package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/tastelist/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestSetAndGet(t *testing.T) {
	st, err := NewMemoryStore()
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()

	err = st.Set(ctx, "users/u1", store.Document{"name": "Ada", "boards": []any{"b1"}})
	require.NoError(t, err)

	doc, err := st.Get(ctx, "users/u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", doc["name"])

	boards, err := store.StringList(doc, "boards")
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, boards)
}

func TestGetAbsent(t *testing.T) {
	st, err := NewMemoryStore()
	require.NoError(t, err)
	defer st.Close()

	_, err = st.Get(context.Background(), "users/nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetEmptyDocumentIsAbsent(t *testing.T) {
	st, err := NewMemoryStore()
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "users/u1", store.Document{}))

	_, err = st.Get(ctx, "users/u1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetAssemblesChildren(t *testing.T) {
	st, err := NewMemoryStore()
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "boards/b1/categories/c1", store.Document{"name": "Desserts"}))
	require.NoError(t, st.Set(ctx, "boards/b1/categories/c2", store.Document{"name": "Fast Food"}))

	doc, err := st.Get(ctx, "boards/b1/categories")
	require.NoError(t, err)
	require.Len(t, doc, 2)

	c1, ok := doc["c1"].(store.Document)
	require.True(t, ok)
	assert.Equal(t, "Desserts", c1["name"])
}

func TestGetAssemblesNestedChildren(t *testing.T) {
	st, err := NewMemoryStore()
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "boards/b1", store.Document{"name": "Board"}))
	require.NoError(t, st.Set(ctx, "boards/b1/categories/c1", store.Document{"name": "Desserts"}))

	// A collection root with no exact key assembles grandchildren too.
	doc, err := st.Get(ctx, "boards")
	require.NoError(t, err)

	b1, ok := doc["b1"].(store.Document)
	require.True(t, ok)
	assert.Equal(t, "Board", b1["name"])
}

func TestUpdateMergesSiblings(t *testing.T) {
	st, err := NewMemoryStore()
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "boards/b1", store.Document{"name": "Old", "owner": "u1"}))
	require.NoError(t, st.Update(ctx, "boards/b1", store.Document{"name": "New"}))

	doc, err := st.Get(ctx, "boards/b1")
	require.NoError(t, err)
	assert.Equal(t, "New", doc["name"])
	assert.Equal(t, "u1", doc["owner"], "update must not touch sibling fields")
}

func TestUpdateCreatesAbsentDocument(t *testing.T) {
	st, err := NewMemoryStore()
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.Update(ctx, "users/u9", store.Document{"name": "Ghost"}))

	doc, err := st.Get(ctx, "users/u9")
	require.NoError(t, err)
	assert.Equal(t, "Ghost", doc["name"])
}

func TestSetReplacesSubtree(t *testing.T) {
	st, err := NewMemoryStore()
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "boards/b1", store.Document{"name": "Board"}))
	require.NoError(t, st.Set(ctx, "boards/b1/categories/c1", store.Document{"name": "Desserts"}))

	require.NoError(t, st.Set(ctx, "boards/b1", store.Document{"name": "Fresh"}))

	_, err = st.Get(ctx, "boards/b1/categories/c1")
	assert.ErrorIs(t, err, store.ErrNotFound, "set must replace the whole subtree")
}

func TestDeleteRemovesSubtree(t *testing.T) {
	st, err := NewMemoryStore()
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "boards/b1", store.Document{"name": "Board"}))
	require.NoError(t, st.Set(ctx, "boards/b1/restaurants/r1", store.Document{"name": "Spot"}))

	require.NoError(t, st.Delete(ctx, "boards/b1"))

	_, err = st.Get(ctx, "boards/b1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Get(ctx, "boards/b1/restaurants/r1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	st, err := NewMemoryStore()
	require.NoError(t, err)
	defer st.Close()

	assert.NoError(t, st.Delete(context.Background(), "users/nobody"))
}

func TestInvalidPaths(t *testing.T) {
	st, err := NewMemoryStore()
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	for _, p := range []string{"", "/users", "users//u1"} {
		_, err := st.Get(ctx, p)
		assert.ErrorIs(t, err, store.ErrInvalidPath)
		assert.ErrorIs(t, st.Set(ctx, p, store.Document{"a": 1}), store.ErrInvalidPath)
		assert.ErrorIs(t, st.Update(ctx, p, store.Document{"a": 1}), store.ErrInvalidPath)
		assert.ErrorIs(t, st.Delete(ctx, p), store.ErrInvalidPath)
	}
}

func TestWithTransactionCommitsTogether(t *testing.T) {
	st, err := NewMemoryStore()
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	err = st.WithTransaction(ctx, func(tx store.Store) error {
		if err := tx.Set(ctx, "users/u1", store.Document{"name": "Ada"}); err != nil {
			return err
		}
		return tx.Set(ctx, "boards/b1", store.Document{"owner": "u1"})
	})
	require.NoError(t, err)

	_, err = st.Get(ctx, "users/u1")
	assert.NoError(t, err)
	_, err = st.Get(ctx, "boards/b1")
	assert.NoError(t, err)
}

func TestWithTransactionRollsBack(t *testing.T) {
	st, err := NewMemoryStore()
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	boom := errors.New("boom")
	err = st.WithTransaction(ctx, func(tx store.Store) error {
		if err := tx.Set(ctx, "users/u1", store.Document{"name": "Ada"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Get(ctx, "users/u1")
	assert.ErrorIs(t, err, store.ErrNotFound, "aborted transaction must leave no writes")
}

func TestClosedStore(t *testing.T) {
	st, err := NewMemoryStore()
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = st.Get(context.Background(), "users/u1")
	assert.ErrorIs(t, err, store.ErrStoreClosed)
}

package verify

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/tastelist/store"
	"github.com/poiesic/tastelist/store/badger"
)

func newTestStore(t *testing.T) *badger.Store {
	t.Helper()
	st, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func mustSet(t *testing.T, st store.Store, path string, doc store.Document) {
	t.Helper()
	require.NoError(t, st.Set(context.Background(), path, doc))
}

// seedConsistent writes a small graph with no violations: two users, one
// board owned by u1 with both as members, one category holding one
// restaurant.
func seedConsistent(t *testing.T, st store.Store) {
	t.Helper()
	mustSet(t, st, "users/u1", store.Document{"boards": []string{"b1"}})
	mustSet(t, st, "users/u2", store.Document{"boards": []string{"b1"}})
	mustSet(t, st, "boards/b1", store.Document{
		"name":    "weekend eats",
		"owner":   "u1",
		"members": []string{"u1", "u2"},
	})
	mustSet(t, st, "boards/b1/categories/c1", store.Document{
		"name":        "Desserts",
		"restaurants": []string{"r1"},
	})
	mustSet(t, st, "boards/b1/restaurants/r1", store.Document{
		"category_id": "c1",
		"name":        "The Sweet Spot",
		"rating_1":    4.5,
		"rating_2":    4.0,
		"rating_3":    4.8,
		"notes":       "",
		"visits":      []string{"2024-12-01"},
		"location":    "12 Baker St",
		"dishes":      []string{"Chocolate Cake"},
		"photo":       "sweet.jpg",
	})
}

func kindCounts(report *Report) map[FindingKind]int {
	counts := make(map[FindingKind]int)
	for _, f := range report.Findings {
		counts[f.Kind]++
	}
	return counts
}

func TestScan_CleanGraph(t *testing.T) {
	st := newTestStore(t)
	seedConsistent(t, st)

	v, err := NewVerifier(st)
	require.NoError(t, err)
	defer v.Close()

	report, err := v.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.UsersScanned)
	assert.Equal(t, 1, report.BoardsScanned)
	assert.Empty(t, report.Findings)
}

func TestScan_EmptyStore(t *testing.T) {
	st := newTestStore(t)

	v, err := NewVerifier(st)
	require.NoError(t, err)
	defer v.Close()

	report, err := v.Scan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.UsersScanned)
	assert.Zero(t, report.BoardsScanned)
	assert.Empty(t, report.Findings)
}

func TestScan_DetectsEveryKind(t *testing.T) {
	st := newTestStore(t)
	seedConsistent(t, st)
	ctx := context.Background()

	// u3 references a board that was never created.
	mustSet(t, st, "users/u3", store.Document{"boards": []string{"ghost"}})
	// u2 is dropped from the member set but still references b1.
	mustSet(t, st, "users/u4", store.Document{"boards": []string{}})
	require.NoError(t, st.Update(ctx, "boards/b1",
		store.Document{"members": []string{"u1", "u4", "phantom"}}))
	// b2 is owned by a user that does not exist.
	mustSet(t, st, "boards/b2", store.Document{
		"name": "orphaned", "owner": "nobody", "members": []string{},
	})
	// c1's index gains an entry with no restaurant behind it.
	require.NoError(t, st.Update(ctx, "boards/b1/categories/c1",
		store.Document{"restaurants": []string{"r1", "gone"}}))
	// r2 points at a category that does not exist.
	mustSet(t, st, "boards/b1/restaurants/r2", store.Document{
		"category_id": "missing", "name": "Lost Diner",
	})
	// r3 belongs to c1 but never made it into c1's index.
	mustSet(t, st, "boards/b1/restaurants/r3", store.Document{
		"category_id": "c1", "name": "Uncounted Cafe",
	})

	v, err := NewVerifier(st, WithPoolSize(2))
	require.NoError(t, err)
	defer v.Close()

	report, err := v.Scan(ctx)
	require.NoError(t, err)

	counts := kindCounts(report)
	assert.Equal(t, 1, counts[KindDanglingBoardRef], "u3 -> ghost")
	assert.Equal(t, 1, counts[KindMissingMember], "u2 -> b1")
	assert.Equal(t, 1, counts[KindMissingBackRef], "b1 -> u4")
	assert.Equal(t, 1, counts[KindDanglingMember], "b1 -> phantom")
	assert.Equal(t, 1, counts[KindDanglingOwner], "b2 -> nobody")
	assert.Equal(t, 1, counts[KindDanglingIndexEntry], "c1 -> gone")
	assert.Equal(t, 1, counts[KindDanglingCategoryRef], "r2 -> missing")
	assert.Equal(t, 1, counts[KindUnindexedRestaurant], "c1 misses r3")
	assert.Len(t, report.Findings, 8)
}

func TestRepair_FixesListViolations(t *testing.T) {
	st := newTestStore(t)
	seedConsistent(t, st)
	ctx := context.Background()

	mustSet(t, st, "users/u3", store.Document{"boards": []string{"ghost"}})
	mustSet(t, st, "users/u4", store.Document{"boards": []string{}})
	require.NoError(t, st.Update(ctx, "boards/b1",
		store.Document{"members": []string{"u1", "u4", "phantom"}}))
	mustSet(t, st, "boards/b2", store.Document{
		"name": "orphaned", "owner": "nobody", "members": []string{},
	})
	require.NoError(t, st.Update(ctx, "boards/b1/categories/c1",
		store.Document{"restaurants": []string{"r1", "gone"}}))
	mustSet(t, st, "boards/b1/restaurants/r2", store.Document{
		"category_id": "missing", "name": "Lost Diner",
	})
	mustSet(t, st, "boards/b1/restaurants/r3", store.Document{
		"category_id": "c1", "name": "Uncounted Cafe",
	})

	v, err := NewVerifier(st)
	require.NoError(t, err)
	defer v.Close()

	report, err := v.Scan(ctx)
	require.NoError(t, err)
	require.Len(t, report.Findings, 8)

	repaired, err := v.Repair(ctx, report)
	require.NoError(t, err)
	// Dangling owner and dangling category reference need a human; the
	// six list-shaped violations get fixed.
	assert.Equal(t, 6, repaired)

	after, err := v.Scan(ctx)
	require.NoError(t, err)
	counts := kindCounts(after)
	assert.Len(t, after.Findings, 2)
	assert.Equal(t, 1, counts[KindDanglingOwner])
	assert.Equal(t, 1, counts[KindDanglingCategoryRef])

	// Repair is idempotent: a second pass over the stale report changes
	// nothing.
	repairedAgain, err := v.Repair(ctx, report)
	require.NoError(t, err)
	assert.Zero(t, repairedAgain)
}

func TestScan_ProgressReporting(t *testing.T) {
	st := newTestStore(t)
	seedConsistent(t, st)

	var buf bytes.Buffer
	v, err := NewVerifier(st, WithProgress(&buf, 1))
	require.NoError(t, err)
	defer v.Close()

	_, err = v.Scan(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "scanned 1/1")
}

func TestScan_ReleasedPoolFailsCleanly(t *testing.T) {
	st := newTestStore(t)
	seedConsistent(t, st)

	v, err := NewVerifier(st)
	require.NoError(t, err)
	require.NoError(t, v.Close())

	_, err = v.Scan(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submit board")
}

func TestNewVerifier_RequiresStore(t *testing.T) {
	_, err := NewVerifier(nil)
	assert.ErrorIs(t, err, ErrStoreRequired)
}

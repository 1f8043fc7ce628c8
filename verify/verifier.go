package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/tastelist/store"
)

// FindingKind classifies an integrity violation.
type FindingKind string

const (
	// KindDanglingBoardRef: a user's board list names a board that does
	// not exist.
	KindDanglingBoardRef FindingKind = "dangling_board_ref"
	// KindMissingMember: a user's board list names a board whose member
	// set lacks the user.
	KindMissingMember FindingKind = "missing_member"
	// KindMissingBackRef: a board's member set names a user whose board
	// list lacks the board.
	KindMissingBackRef FindingKind = "missing_back_ref"
	// KindDanglingMember: a board's member set names a user that does not
	// exist.
	KindDanglingMember FindingKind = "dangling_member"
	// KindDanglingOwner: a board's owner does not exist.
	KindDanglingOwner FindingKind = "dangling_owner"
	// KindDanglingIndexEntry: a category's restaurant list names a
	// restaurant that does not exist.
	KindDanglingIndexEntry FindingKind = "dangling_index_entry"
	// KindUnindexedRestaurant: a restaurant is missing from its
	// category's restaurant list.
	KindUnindexedRestaurant FindingKind = "unindexed_restaurant"
	// KindDanglingCategoryRef: a restaurant's category_id names a
	// category that does not exist.
	KindDanglingCategoryRef FindingKind = "dangling_category_ref"
)

// Finding is one integrity violation. Only the ids relevant to the kind
// are set.
type Finding struct {
	Kind         FindingKind
	UserID       string
	BoardID      string
	CategoryID   string
	RestaurantID string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s user=%s board=%s category=%s restaurant=%s",
		f.Kind, f.UserID, f.BoardID, f.CategoryID, f.RestaurantID)
}

// Report is the outcome of a scan.
type Report struct {
	UsersScanned  int
	BoardsScanned int
	Findings      []Finding
}

// Verifier scans the graph for referential-integrity violations and can
// repair the list-shaped ones.
type Verifier struct {
	store      store.Store
	pool       *ants.Pool
	logger     *slog.Logger
	progressW  io.Writer
	interval   int
	maxRetries int
	retryDelay time.Duration
}

// Option configures a Verifier.
type Option func(*Verifier) error

// WithPoolSize sets the worker pool size for concurrent board scanning.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(v *Verifier) error {
		if size < 1 {
			size = 1
		}
		if v.pool != nil {
			v.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		v.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) error {
		if logger != nil {
			v.logger = logger
		}
		return nil
	}
}

// WithProgress enables progress reporting to w every interval boards.
func WithProgress(w io.Writer, interval int) Option {
	return func(v *Verifier) error {
		if interval < 1 {
			interval = 1
		}
		v.progressW = w
		v.interval = interval
		return nil
	}
}

// WithRetry sets the retry budget for the collection reads.
// Default is 3 attempts with a 100ms base delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(v *Verifier) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		v.maxRetries = maxAttempts
		v.retryDelay = baseDelay
		return nil
	}
}

// NewVerifier creates a Verifier over the given store.
func NewVerifier(st store.Store, opts ...Option) (*Verifier, error) {
	if st == nil {
		return nil, ErrStoreRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	v := &Verifier{
		store:      st,
		pool:       pool,
		logger:     slog.Default(),
		maxRetries: 3,
		retryDelay: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		if err := opt(v); err != nil {
			pool.Release()
			return nil, err
		}
	}
	return v, nil
}

// Close releases the worker pool.
func (v *Verifier) Close() error {
	v.pool.Release()
	return nil
}

// Scan walks every user and board and returns the violations it finds.
// Boards are checked concurrently on the worker pool.
func (v *Verifier) Scan(ctx context.Context) (*Report, error) {
	users, err := v.readCollection(ctx, store.UsersPrefix)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	boards, err := v.readCollection(ctx, store.BoardsPrefix)
	if err != nil {
		return nil, fmt.Errorf("read boards: %w", err)
	}

	report := &Report{
		UsersScanned:  len(users),
		BoardsScanned: len(boards),
	}
	var mu sync.Mutex
	add := func(findings ...Finding) {
		mu.Lock()
		report.Findings = append(report.Findings, findings...)
		mu.Unlock()
	}

	// User-side pass: every board reference must resolve to a board that
	// lists the user back.
	for userID, userDoc := range users {
		boardRefs, err := store.StringList(userDoc, "boards")
		if err != nil {
			v.logger.Warn("malformed user document", "user", userID, "error", err)
			continue
		}
		for _, boardID := range boardRefs {
			boardDoc, ok := boards[boardID]
			if !ok {
				add(Finding{Kind: KindDanglingBoardRef, UserID: userID, BoardID: boardID})
				continue
			}
			members, _ := store.StringList(boardDoc, "members")
			if !containsString(members, userID) {
				add(Finding{Kind: KindMissingMember, UserID: userID, BoardID: boardID})
			}
		}
	}

	// Board-side pass, one pool task per board.
	var progress *ProgressTracker
	if v.progressW != nil {
		progress = NewProgressTracker(v.progressW, len(boards), v.interval)
		progress.Start()
	}

	var wg sync.WaitGroup
	for boardID, boardDoc := range boards {
		boardID, boardDoc := boardID, boardDoc
		wg.Add(1)
		err := v.pool.Submit(func() {
			defer wg.Done()
			add(checkBoard(boardID, boardDoc, users)...)
			if progress != nil {
				progress.Increment()
			}
		})
		if err != nil {
			// Drain the tasks already submitted before abandoning the report.
			wg.Done()
			wg.Wait()
			if progress != nil {
				progress.Finish()
			}
			return nil, fmt.Errorf("submit board %s: %w", boardID, err)
		}
	}
	wg.Wait()

	if progress != nil {
		progress.Finish()
	}

	v.logger.Info("scan complete",
		"users", report.UsersScanned,
		"boards", report.BoardsScanned,
		"findings", len(report.Findings))
	return report, nil
}

// Repair fixes the list-shaped violations in a report by re-running the
// idempotent list adjustments the interrupted cascade would have made.
// Dangling owners and dangling category references need a human decision
// and are only logged. Returns the number of findings repaired.
func (v *Verifier) Repair(ctx context.Context, report *Report) (int, error) {
	repaired := 0
	for _, f := range report.Findings {
		ok, err := v.repairOne(ctx, f)
		if err != nil {
			return repaired, fmt.Errorf("repair %s: %w", f, err)
		}
		if ok {
			repaired++
		}
	}
	v.logger.Info("repair complete", "repaired", repaired, "findings", len(report.Findings))
	return repaired, nil
}

func (v *Verifier) repairOne(ctx context.Context, f Finding) (bool, error) {
	switch f.Kind {
	case KindDanglingBoardRef:
		return v.adjustList(ctx, store.UserPath(f.UserID), "boards", f.BoardID, false)
	case KindMissingMember:
		return v.adjustList(ctx, store.BoardPath(f.BoardID), "members", f.UserID, true)
	case KindMissingBackRef:
		return v.adjustList(ctx, store.UserPath(f.UserID), "boards", f.BoardID, true)
	case KindDanglingMember:
		return v.adjustList(ctx, store.BoardPath(f.BoardID), "members", f.UserID, false)
	case KindDanglingIndexEntry:
		return v.adjustList(ctx, store.CategoryPath(f.BoardID, f.CategoryID), "restaurants", f.RestaurantID, false)
	case KindUnindexedRestaurant:
		return v.adjustList(ctx, store.CategoryPath(f.BoardID, f.CategoryID), "restaurants", f.RestaurantID, true)
	default:
		v.logger.Warn("finding needs manual resolution", "finding", f.String())
		return false, nil
	}
}

// adjustList adds or removes value in the named list field of the document
// at path. A document that vanished since the scan is a no-op.
func (v *Verifier) adjustList(ctx context.Context, path, field, value string, addValue bool) (bool, error) {
	doc, err := v.store.Get(ctx, path)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	list, err := store.StringList(doc, field)
	if err != nil {
		return false, err
	}

	if addValue {
		if containsString(list, value) {
			return false, nil
		}
		list = append(list, value)
	} else {
		idx := -1
		for i, item := range list {
			if item == value {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false, nil
		}
		list = append(list[:idx:idx], list[idx+1:]...)
	}

	if err := v.store.Update(ctx, path, store.Document{field: list}); err != nil {
		return false, err
	}
	return true, nil
}

// readCollection reads a whole top-level collection, retrying transient
// failures. An absent collection is an empty map.
func (v *Verifier) readCollection(ctx context.Context, prefix string) (map[string]store.Document, error) {
	var doc store.Document
	err := RetryWithBackoff(ctx, func() error {
		var gerr error
		doc, gerr = v.store.Get(ctx, prefix)
		if errors.Is(gerr, store.ErrNotFound) {
			doc = store.Document{}
			return nil
		}
		return gerr
	}, v.maxRetries, v.retryDelay)
	if err != nil {
		return nil, err
	}

	out := make(map[string]store.Document, len(doc))
	for id, raw := range doc {
		if child, ok := raw.(store.Document); ok {
			out[id] = child
		}
	}
	return out, nil
}

// checkBoard verifies one board's member set and its category/restaurant
// index against the assembled board document.
func checkBoard(boardID string, boardDoc store.Document, users map[string]store.Document) []Finding {
	var findings []Finding

	if owner, _ := boardDoc["owner"].(string); owner != "" {
		if _, ok := users[owner]; !ok {
			findings = append(findings, Finding{Kind: KindDanglingOwner, UserID: owner, BoardID: boardID})
		}
	}

	members, _ := store.StringList(boardDoc, "members")
	for _, userID := range members {
		userDoc, ok := users[userID]
		if !ok {
			findings = append(findings, Finding{Kind: KindDanglingMember, UserID: userID, BoardID: boardID})
			continue
		}
		boardRefs, _ := store.StringList(userDoc, "boards")
		if !containsString(boardRefs, boardID) {
			findings = append(findings, Finding{Kind: KindMissingBackRef, UserID: userID, BoardID: boardID})
		}
	}

	categories := childDocuments(boardDoc["categories"])
	restaurants := childDocuments(boardDoc["restaurants"])

	for categoryID, catDoc := range categories {
		indexed, _ := store.StringList(catDoc, "restaurants")
		for _, restaurantID := range indexed {
			if _, ok := restaurants[restaurantID]; !ok {
				findings = append(findings, Finding{
					Kind: KindDanglingIndexEntry, BoardID: boardID,
					CategoryID: categoryID, RestaurantID: restaurantID,
				})
			}
		}
	}

	for restaurantID, restDoc := range restaurants {
		categoryID, _ := restDoc["category_id"].(string)
		catDoc, ok := categories[categoryID]
		if !ok {
			findings = append(findings, Finding{
				Kind: KindDanglingCategoryRef, BoardID: boardID,
				CategoryID: categoryID, RestaurantID: restaurantID,
			})
			continue
		}
		indexed, _ := store.StringList(catDoc, "restaurants")
		if !containsString(indexed, restaurantID) {
			findings = append(findings, Finding{
				Kind: KindUnindexedRestaurant, BoardID: boardID,
				CategoryID: categoryID, RestaurantID: restaurantID,
			})
		}
	}

	return findings
}

func childDocuments(v any) map[string]store.Document {
	doc, ok := v.(store.Document)
	if !ok {
		return nil
	}
	out := make(map[string]store.Document, len(doc))
	for id, raw := range doc {
		if child, ok := raw.(store.Document); ok {
			out[id] = child
		}
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

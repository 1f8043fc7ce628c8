package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/poiesic/tastelist/core"
	"github.com/poiesic/tastelist/store"
)

// BoardRepository owns CRUD, membership, and the delete cascade for boards.
type BoardRepository struct {
	store  store.Store
	logger *slog.Logger
}

// NewBoardRepository creates a BoardRepository.
func NewBoardRepository(st store.Store) *BoardRepository {
	return &BoardRepository{
		store:  st,
		logger: slog.Default(),
	}
}

// BoardUpdate names the board fields a partial edit may change.
type BoardUpdate struct {
	Name *string
}

// CreateBoard writes a new board owned by owner, with the owner as its
// first member, and adds the board to the owner's board list. The owner
// must exist. The board document is written first so the user side never
// references a board that does not exist; a failure on the user side
// surfaces as a *CascadeError and is retryable via JoinBoard.
func (r *BoardRepository) CreateBoard(ctx context.Context, id, name, owner string) (*core.Board, error) {
	const op = "CreateBoard"

	if err := core.ValidateID(id); err != nil {
		return nil, err
	}
	if err := core.ValidateID(owner); err != nil {
		return nil, err
	}
	if _, err := readUser(ctx, r.store, owner); err != nil {
		return nil, err
	}

	_, err := r.store.Get(ctx, store.BoardPath(id))
	if err == nil {
		return nil, fmt.Errorf("board %s: %w", id, ErrAlreadyExists)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("board %s: %w", id, err)
	}

	board := &core.Board{ID: id, Name: name, Owner: owner, Members: []string{owner}}
	doc, err := store.Encode(board)
	if err != nil {
		return nil, err
	}
	if err := r.store.Set(ctx, store.BoardPath(id), doc); err != nil {
		return nil, fmt.Errorf("create board %s: %w", id, err)
	}

	if err := link(ctx, r.store, owner, id); err != nil {
		return nil, cascadeErr(op, fmt.Sprintf("add board to owner %s", owner), err)
	}

	r.logger.Debug("board created", "board", id, "owner", owner)
	return board, nil
}

// EditBoard applies a partial update; only the named fields change.
func (r *BoardRepository) EditBoard(ctx context.Context, id string, update BoardUpdate) error {
	if _, err := readBoard(ctx, r.store, id); err != nil {
		return err
	}

	fields := store.Document{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if len(fields) == 0 {
		return nil
	}

	if err := r.store.Update(ctx, store.BoardPath(id), fields); err != nil {
		return fmt.Errorf("edit board %s: %w", id, err)
	}
	return nil
}

// GetBoard retrieves a board by id. Returns store.ErrNotFound if absent.
func (r *BoardRepository) GetBoard(ctx context.Context, id string) (*core.Board, error) {
	return readBoard(ctx, r.store, id)
}

// AddMember adds a user to the board's member set and the board to the
// user's list. Unlike JoinBoard, a user already in the member set is
// rejected with ErrAlreadyMember. The user must exist.
func (r *BoardRepository) AddMember(ctx context.Context, boardID, userID string) error {
	board, err := readBoard(ctx, r.store, boardID)
	if err != nil {
		return err
	}
	if board.HasMember(userID) {
		return fmt.Errorf("board %s, user %s: %w", boardID, userID, ErrAlreadyMember)
	}
	if _, err := readUser(ctx, r.store, userID); err != nil {
		return err
	}
	return link(ctx, r.store, userID, boardID)
}

// RemoveMember removes a user from the board's member set and the board
// from the user's list. Idempotent; removing an absent member is a no-op.
func (r *BoardRepository) RemoveMember(ctx context.Context, boardID, userID string) error {
	if _, err := readBoard(ctx, r.store, boardID); err != nil {
		return err
	}
	return unlink(ctx, r.store, userID, boardID)
}

// DeleteBoard cascade-deletes a board. Only the owner may delete. Order:
// detach every member's user record first, then tear down categories and
// their restaurants, then remove the board document. A partial failure
// leaves the board alive and correctly missing the detached members, which
// a retry completes; it never leaves users pointing at a deleted board.
func (r *BoardRepository) DeleteBoard(ctx context.Context, id, requesterID string) error {
	const op = "DeleteBoard"

	board, err := readBoard(ctx, r.store, id)
	if err != nil {
		return err
	}
	if board.Owner != "" && board.Owner != requesterID {
		return fmt.Errorf("board %s, requester %s: %w", id, requesterID, ErrNotOwner)
	}

	for _, member := range board.Members {
		if err := unlinkUserSide(ctx, r.store, member, id); err != nil {
			return cascadeErr(op, fmt.Sprintf("detach member %s", member), err)
		}
	}

	categories, err := r.ListCategories(ctx, id)
	if err != nil {
		return cascadeErr(op, "list categories", err)
	}
	for _, cat := range categories {
		for _, restaurantID := range cat.Restaurants {
			if err := r.store.Delete(ctx, store.RestaurantPath(id, restaurantID)); err != nil {
				return cascadeErr(op, fmt.Sprintf("delete restaurant %s", restaurantID), err)
			}
		}
		if err := r.store.Delete(ctx, store.CategoryPath(id, cat.ID)); err != nil {
			return cascadeErr(op, fmt.Sprintf("delete category %s", cat.ID), err)
		}
	}

	// Subtree delete also sweeps any restaurant the category index missed.
	if err := r.store.Delete(ctx, store.BoardPath(id)); err != nil {
		return cascadeErr(op, "delete board document", err)
	}

	r.logger.Info("board deleted", "board", id, "requester", requesterID)
	return nil
}

// ListCategories returns the board's categories sorted by id. A board with
// no categories yields an empty slice.
func (r *BoardRepository) ListCategories(ctx context.Context, boardID string) ([]*core.Category, error) {
	doc, err := r.store.Get(ctx, store.CategoriesPath(boardID))
	if errors.Is(err, store.ErrNotFound) {
		return []*core.Category{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("categories of board %s: %w", boardID, err)
	}

	categories := make([]*core.Category, 0, len(doc))
	for id, raw := range doc {
		child, ok := raw.(store.Document)
		if !ok {
			continue
		}
		var cat core.Category
		if err := store.DecodeInto(child, &cat); err != nil {
			return nil, fmt.Errorf("category %s of board %s: %w", id, boardID, err)
		}
		cat.ID = id
		if cat.Restaurants == nil {
			cat.Restaurants = []string{}
		}
		categories = append(categories, &cat)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

// ListRestaurants returns the board's restaurants sorted by id. A board
// with no restaurants yields an empty slice.
func (r *BoardRepository) ListRestaurants(ctx context.Context, boardID string) ([]*core.Restaurant, error) {
	doc, err := r.store.Get(ctx, store.RestaurantsPath(boardID))
	if errors.Is(err, store.ErrNotFound) {
		return []*core.Restaurant{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("restaurants of board %s: %w", boardID, err)
	}

	restaurants := make([]*core.Restaurant, 0, len(doc))
	for id, raw := range doc {
		child, ok := raw.(store.Document)
		if !ok {
			continue
		}
		var rest core.Restaurant
		if err := store.DecodeInto(child, &rest); err != nil {
			return nil, fmt.Errorf("restaurant %s of board %s: %w", id, boardID, err)
		}
		rest.ID = id
		restaurants = append(restaurants, &rest)
	}
	sort.Slice(restaurants, func(i, j int) bool { return restaurants[i].ID < restaurants[j].ID })
	return restaurants, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/tastelist/core"
	"github.com/poiesic/tastelist/store"
)

// CategoryRepository owns CRUD and the restaurant cascade for categories.
type CategoryRepository struct {
	store  store.Store
	logger *slog.Logger
}

// NewCategoryRepository creates a CategoryRepository.
func NewCategoryRepository(st store.Store) *CategoryRepository {
	return &CategoryRepository{
		store:  st,
		logger: slog.Default(),
	}
}

// CategoryUpdate names the category fields a partial edit may change.
type CategoryUpdate struct {
	Name    *string
	Caption *string
}

// AddCategory writes a new category under the board with an empty
// restaurant list. The id must be well-formed and the board must exist.
func (r *CategoryRepository) AddCategory(ctx context.Context, boardID, categoryID, name, caption string) (*core.Category, error) {
	if err := core.ValidateID(categoryID); err != nil {
		return nil, err
	}
	if _, err := readBoard(ctx, r.store, boardID); err != nil {
		return nil, err
	}

	_, err := r.store.Get(ctx, store.CategoryPath(boardID, categoryID))
	if err == nil {
		return nil, fmt.Errorf("category %s in board %s: %w", categoryID, boardID, ErrAlreadyExists)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("category %s in board %s: %w", categoryID, boardID, err)
	}

	cat := &core.Category{ID: categoryID, Name: name, Caption: caption, Restaurants: []string{}}
	doc, err := store.Encode(cat)
	if err != nil {
		return nil, err
	}
	if err := r.store.Set(ctx, store.CategoryPath(boardID, categoryID), doc); err != nil {
		return nil, fmt.Errorf("create category %s in board %s: %w", categoryID, boardID, err)
	}

	r.logger.Debug("category created", "board", boardID, "category", categoryID)
	return cat, nil
}

// EditCategory applies a partial update; only the named fields change.
func (r *CategoryRepository) EditCategory(ctx context.Context, boardID, categoryID string, update CategoryUpdate) error {
	if _, err := readCategory(ctx, r.store, boardID, categoryID); err != nil {
		return err
	}

	fields := store.Document{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Caption != nil {
		fields["caption"] = *update.Caption
	}
	if len(fields) == 0 {
		return nil
	}

	if err := r.store.Update(ctx, store.CategoryPath(boardID, categoryID), fields); err != nil {
		return fmt.Errorf("edit category %s in board %s: %w", categoryID, boardID, err)
	}
	return nil
}

// GetCategory retrieves a category. Returns store.ErrNotFound if absent.
func (r *CategoryRepository) GetCategory(ctx context.Context, boardID, categoryID string) (*core.Category, error) {
	return readCategory(ctx, r.store, boardID, categoryID)
}

// DeleteCategory removes a category and every restaurant assigned to it.
// Restaurants go first, driven by the category's explicit id list, then the
// category document. Re-runnable: already-deleted restaurants are no-ops.
func (r *CategoryRepository) DeleteCategory(ctx context.Context, boardID, categoryID string) error {
	const op = "DeleteCategory"

	cat, err := readCategory(ctx, r.store, boardID, categoryID)
	if err != nil {
		return err
	}

	for _, restaurantID := range cat.Restaurants {
		if err := r.store.Delete(ctx, store.RestaurantPath(boardID, restaurantID)); err != nil {
			return cascadeErr(op, fmt.Sprintf("delete restaurant %s", restaurantID), err)
		}
	}

	if err := r.store.Delete(ctx, store.CategoryPath(boardID, categoryID)); err != nil {
		return cascadeErr(op, "delete category document", err)
	}

	r.logger.Debug("category deleted", "board", boardID, "category", categoryID)
	return nil
}

// readCategory loads and decodes a category document.
func readCategory(ctx context.Context, st store.Store, boardID, categoryID string) (*core.Category, error) {
	doc, err := st.Get(ctx, store.CategoryPath(boardID, categoryID))
	if err != nil {
		return nil, fmt.Errorf("category %s in board %s: %w", categoryID, boardID, err)
	}
	var cat core.Category
	if err := store.DecodeInto(doc, &cat); err != nil {
		return nil, fmt.Errorf("category %s in board %s: %w", categoryID, boardID, err)
	}
	cat.ID = categoryID
	if cat.Restaurants == nil {
		cat.Restaurants = []string{}
	}
	return &cat, nil
}

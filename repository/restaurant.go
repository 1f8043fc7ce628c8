package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/tastelist/core"
	"github.com/poiesic/tastelist/store"
)

// RestaurantRepository owns CRUD, rating/visit/dish edits, and the
// category-index maintenance for restaurants.
type RestaurantRepository struct {
	store  store.Store
	logger *slog.Logger
}

// NewRestaurantRepository creates a RestaurantRepository.
func NewRestaurantRepository(st store.Store) *RestaurantRepository {
	return &RestaurantRepository{
		store:  st,
		logger: slog.Default(),
	}
}

// AddRestaurant validates and writes a new restaurant, then registers it in
// the category's restaurant list. Validation happens before any write:
// ErrMissingField for absent required fields, ErrInvalidRating for ratings
// outside [0, 10]. The category must exist in the same board.
func (r *RestaurantRepository) AddRestaurant(ctx context.Context, boardID, categoryID, restaurantID string, rest *core.Restaurant) (*core.Restaurant, error) {
	const op = "AddRestaurant"

	if err := core.ValidateID(restaurantID); err != nil {
		return nil, err
	}
	if err := core.ValidateRestaurant(rest); err != nil {
		return nil, err
	}
	cat, err := readCategory(ctx, r.store, boardID, categoryID)
	if err != nil {
		return nil, err
	}

	_, err = r.store.Get(ctx, store.RestaurantPath(boardID, restaurantID))
	if err == nil {
		return nil, fmt.Errorf("restaurant %s in board %s: %w", restaurantID, boardID, ErrAlreadyExists)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("restaurant %s in board %s: %w", restaurantID, boardID, err)
	}

	stored := *rest
	stored.ID = restaurantID
	stored.CategoryID = categoryID
	doc, err := store.Encode(&stored)
	if err != nil {
		return nil, err
	}
	if err := r.store.Set(ctx, store.RestaurantPath(boardID, restaurantID), doc); err != nil {
		return nil, fmt.Errorf("create restaurant %s in board %s: %w", restaurantID, boardID, err)
	}

	if !cat.HasRestaurant(restaurantID) {
		list := append(cat.Restaurants, restaurantID)
		err := r.store.Update(ctx, store.CategoryPath(boardID, categoryID), store.Document{"restaurants": list})
		if err != nil {
			return nil, cascadeErr(op, fmt.Sprintf("register with category %s", categoryID), err)
		}
	}

	r.logger.Debug("restaurant created", "board", boardID, "category", categoryID, "restaurant", restaurantID)
	return &stored, nil
}

// GetRestaurant retrieves a restaurant. Returns store.ErrNotFound if absent.
func (r *RestaurantRepository) GetRestaurant(ctx context.Context, boardID, restaurantID string) (*core.Restaurant, error) {
	return readRestaurant(ctx, r.store, boardID, restaurantID)
}

// EditRating sets rating k (1..3) to value. Out-of-range values are
// rejected with ErrInvalidRating, never clamped.
func (r *RestaurantRepository) EditRating(ctx context.Context, boardID, restaurantID string, k int, value float64) error {
	if err := core.ValidateRatingIndex(k); err != nil {
		return err
	}
	if err := core.ValidateRatingValue(value); err != nil {
		return err
	}
	if _, err := readRestaurant(ctx, r.store, boardID, restaurantID); err != nil {
		return err
	}

	field := fmt.Sprintf("rating_%d", k)
	err := r.store.Update(ctx, store.RestaurantPath(boardID, restaurantID), store.Document{field: value})
	if err != nil {
		return fmt.Errorf("edit %s of restaurant %s: %w", field, restaurantID, err)
	}
	return nil
}

// EditNotes replaces the restaurant's notes.
func (r *RestaurantRepository) EditNotes(ctx context.Context, boardID, restaurantID, notes string) error {
	if _, err := readRestaurant(ctx, r.store, boardID, restaurantID); err != nil {
		return err
	}
	err := r.store.Update(ctx, store.RestaurantPath(boardID, restaurantID), store.Document{"notes": notes})
	if err != nil {
		return fmt.Errorf("edit notes of restaurant %s: %w", restaurantID, err)
	}
	return nil
}

// AddVisit appends a visit date (DateFormat) to the restaurant's visit
// list.
func (r *RestaurantRepository) AddVisit(ctx context.Context, boardID, restaurantID, visitDate string) error {
	if err := core.ValidateDate(visitDate); err != nil {
		return err
	}
	rest, err := readRestaurant(ctx, r.store, boardID, restaurantID)
	if err != nil {
		return err
	}

	visits := append(rest.Visits, visitDate)
	err = r.store.Update(ctx, store.RestaurantPath(boardID, restaurantID), store.Document{"visits": visits})
	if err != nil {
		return fmt.Errorf("add visit to restaurant %s: %w", restaurantID, err)
	}
	return nil
}

// DeleteVisit removes the most recent visit date. A restaurant with no
// visits is a no-op. Returns the remaining visits.
func (r *RestaurantRepository) DeleteVisit(ctx context.Context, boardID, restaurantID string) ([]string, error) {
	rest, err := readRestaurant(ctx, r.store, boardID, restaurantID)
	if err != nil {
		return nil, err
	}
	if len(rest.Visits) == 0 {
		return rest.Visits, nil
	}

	visits := rest.Visits[:len(rest.Visits)-1]
	err = r.store.Update(ctx, store.RestaurantPath(boardID, restaurantID), store.Document{"visits": visits})
	if err != nil {
		return nil, fmt.Errorf("delete visit from restaurant %s: %w", restaurantID, err)
	}
	return visits, nil
}

// EditDishes replaces the dish list wholesale. Order is a ranking, so the
// same call both sets and reorders; the stored order is exactly the given
// order.
func (r *RestaurantRepository) EditDishes(ctx context.Context, boardID, restaurantID string, dishes []string) error {
	if _, err := readRestaurant(ctx, r.store, boardID, restaurantID); err != nil {
		return err
	}
	if dishes == nil {
		dishes = []string{}
	}
	err := r.store.Update(ctx, store.RestaurantPath(boardID, restaurantID), store.Document{"dishes": dishes})
	if err != nil {
		return fmt.Errorf("edit dishes of restaurant %s: %w", restaurantID, err)
	}
	return nil
}

// AddDish appends a dish to the end of the ranking.
func (r *RestaurantRepository) AddDish(ctx context.Context, boardID, restaurantID, dish string) error {
	rest, err := readRestaurant(ctx, r.store, boardID, restaurantID)
	if err != nil {
		return err
	}
	dishes := append(rest.Dishes, dish)
	err = r.store.Update(ctx, store.RestaurantPath(boardID, restaurantID), store.Document{"dishes": dishes})
	if err != nil {
		return fmt.Errorf("add dish to restaurant %s: %w", restaurantID, err)
	}
	return nil
}

// DeleteDish removes the first occurrence of dish from the ranking.
// Idempotent; an absent dish is a no-op.
func (r *RestaurantRepository) DeleteDish(ctx context.Context, boardID, restaurantID, dish string) error {
	rest, err := readRestaurant(ctx, r.store, boardID, restaurantID)
	if err != nil {
		return err
	}
	dishes, removed := removeValue(rest.Dishes, dish)
	if !removed {
		return nil
	}
	err = r.store.Update(ctx, store.RestaurantPath(boardID, restaurantID), store.Document{"dishes": dishes})
	if err != nil {
		return fmt.Errorf("delete dish from restaurant %s: %w", restaurantID, err)
	}
	return nil
}

// DeleteRestaurant detaches the restaurant from its category's list, then
// removes the document. Deleting an absent restaurant is a no-op. The
// detach comes first so a crash leaves a document that a retry can still
// find and remove, not an index entry pointing at nothing.
func (r *RestaurantRepository) DeleteRestaurant(ctx context.Context, boardID, restaurantID string) error {
	const op = "DeleteRestaurant"

	rest, err := readRestaurant(ctx, r.store, boardID, restaurantID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if rest.CategoryID != "" {
		if err := r.detachFromCategory(ctx, boardID, rest.CategoryID, restaurantID); err != nil {
			return cascadeErr(op, fmt.Sprintf("detach from category %s", rest.CategoryID), err)
		}
	}

	if err := r.store.Delete(ctx, store.RestaurantPath(boardID, restaurantID)); err != nil {
		return cascadeErr(op, "delete restaurant document", err)
	}

	r.logger.Debug("restaurant deleted", "board", boardID, "restaurant", restaurantID)
	return nil
}

// MoveCategory reassigns a restaurant to another category: the document's
// category_id changes first, then the old category's list drops the id,
// then the new category's list gains it. Three writes with no atomicity; a
// failure partway surfaces as *CascadeError and the whole move is
// re-runnable.
func (r *RestaurantRepository) MoveCategory(ctx context.Context, boardID, restaurantID, oldCategoryID, newCategoryID string) error {
	const op = "MoveCategory"

	rest, err := readRestaurant(ctx, r.store, boardID, restaurantID)
	if err != nil {
		return err
	}
	newCat, err := readCategory(ctx, r.store, boardID, newCategoryID)
	if err != nil {
		return err
	}

	if rest.CategoryID != newCategoryID {
		err := r.store.Update(ctx, store.RestaurantPath(boardID, restaurantID), store.Document{"category_id": newCategoryID})
		if err != nil {
			return fmt.Errorf("reassign restaurant %s: %w", restaurantID, err)
		}
	}

	if err := r.detachFromCategory(ctx, boardID, oldCategoryID, restaurantID); err != nil {
		return cascadeErr(op, fmt.Sprintf("remove from category %s", oldCategoryID), err)
	}

	if !newCat.HasRestaurant(restaurantID) {
		list := append(newCat.Restaurants, restaurantID)
		err := r.store.Update(ctx, store.CategoryPath(boardID, newCategoryID), store.Document{"restaurants": list})
		if err != nil {
			return cascadeErr(op, fmt.Sprintf("add to category %s", newCategoryID), err)
		}
	}

	r.logger.Debug("restaurant moved", "board", boardID, "restaurant", restaurantID,
		"from", oldCategoryID, "to", newCategoryID)
	return nil
}

// detachFromCategory removes restaurantID from a category's list. Absent
// categories and absent entries are no-ops, which keeps deletes and moves
// re-runnable.
func (r *RestaurantRepository) detachFromCategory(ctx context.Context, boardID, categoryID, restaurantID string) error {
	cat, err := readCategory(ctx, r.store, boardID, categoryID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	list, removed := removeValue(cat.Restaurants, restaurantID)
	if !removed {
		return nil
	}
	return r.store.Update(ctx, store.CategoryPath(boardID, categoryID), store.Document{"restaurants": list})
}

// readRestaurant loads and decodes a restaurant document.
func readRestaurant(ctx context.Context, st store.Store, boardID, restaurantID string) (*core.Restaurant, error) {
	doc, err := st.Get(ctx, store.RestaurantPath(boardID, restaurantID))
	if err != nil {
		return nil, fmt.Errorf("restaurant %s in board %s: %w", restaurantID, boardID, err)
	}
	var rest core.Restaurant
	if err := store.DecodeInto(doc, &rest); err != nil {
		return nil, fmt.Errorf("restaurant %s in board %s: %w", restaurantID, boardID, err)
	}
	rest.ID = restaurantID
	if rest.Visits == nil {
		rest.Visits = []string{}
	}
	if rest.Dishes == nil {
		rest.Dishes = []string{}
	}
	return &rest, nil
}

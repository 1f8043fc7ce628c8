package repository

import (
	"context"
	"testing"

	"github.com/poiesic/tastelist/core"
	"github.com/poiesic/tastelist/store"
	storebadger "github.com/poiesic/tastelist/store/badger"
)

type testEnv struct {
	store       store.Store
	users       *UserRepository
	boards      *BoardRepository
	categories  *CategoryRepository
	restaurants *RestaurantRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := storebadger.NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create in-memory store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	boards := NewBoardRepository(st)
	return &testEnv{
		store:       st,
		users:       NewUserRepository(st, boards),
		boards:      boards,
		categories:  NewCategoryRepository(st),
		restaurants: NewRestaurantRepository(st),
	}
}

// seedBoard creates a user and a board owned by that user.
func (e *testEnv) seedBoard(t *testing.T, userID, boardID string) {
	t.Helper()
	ctx := context.Background()
	if _, err := e.users.CreateUser(ctx, userID, ""); err != nil {
		t.Fatalf("Failed to create user %s: %v", userID, err)
	}
	if _, err := e.boards.CreateBoard(ctx, boardID, "Board "+boardID, userID); err != nil {
		t.Fatalf("Failed to create board %s: %v", boardID, err)
	}
}

// seedCategory adds a category to an existing board.
func (e *testEnv) seedCategory(t *testing.T, boardID, categoryID string) {
	t.Helper()
	if _, err := e.categories.AddCategory(context.Background(), boardID, categoryID, "Category "+categoryID, ""); err != nil {
		t.Fatalf("Failed to create category %s: %v", categoryID, err)
	}
}

// seedRestaurant adds a valid restaurant to an existing category.
func (e *testEnv) seedRestaurant(t *testing.T, boardID, categoryID, restaurantID string) *core.Restaurant {
	t.Helper()
	rest, err := e.restaurants.AddRestaurant(context.Background(), boardID, categoryID, restaurantID, testRestaurant())
	if err != nil {
		t.Fatalf("Failed to create restaurant %s: %v", restaurantID, err)
	}
	return rest
}

func testRestaurant() *core.Restaurant {
	return &core.Restaurant{
		Name:     "The Sweet Spot",
		Rating1:  4.5,
		Rating2:  4.0,
		Rating3:  4.8,
		Notes:    "Best for chocolate lovers.",
		Visits:   []string{"2024-12-01"},
		Location: "123 Candy Lane, Dessertville",
		Dishes:   []string{"Chocolate Cake", "Brownie Sundae"},
		Photo:    "https://example.com/photos/sweet-spot.jpg",
	}
}

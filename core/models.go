package core

import "time"

// DateFormat is the wire format for all date strings (visits, last_active).
const DateFormat = "2006-01-02"

// User is a person who owns or participates in boards.
// Boards is a duplicate-free membership list; order is preserved as written.
type User struct {
	ID         string   `json:"-"`
	Name       string   `json:"name,omitempty"`
	Boards     []string `json:"boards"`
	LastActive string   `json:"last_active,omitempty"`
}

// HasBoard reports whether the user's board list contains id.
func (u *User) HasBoard(id string) bool {
	for _, b := range u.Boards {
		if b == id {
			return true
		}
	}
	return false
}

// Board is a named, shareable collection of categories and restaurants.
// Members is a duplicate-free set of user ids; the owner is always a member.
// Categories and restaurants live under the board in the store, not inside
// the board document itself.
type Board struct {
	ID      string   `json:"-"`
	Name    string   `json:"name"`
	Owner   string   `json:"owner"`
	Members []string `json:"members"`
}

// HasMember reports whether the board's member set contains userID.
func (b *Board) HasMember(userID string) bool {
	for _, m := range b.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Category groups restaurants within a board. Restaurants is the explicit
// id list of the restaurants assigned to this category, maintained on every
// restaurant create, delete, and move.
type Category struct {
	ID          string   `json:"-"`
	Name        string   `json:"name"`
	Caption     string   `json:"caption,omitempty"`
	Restaurants []string `json:"restaurants"`
}

// HasRestaurant reports whether the category's id list contains restaurantID.
func (c *Category) HasRestaurant(restaurantID string) bool {
	for _, r := range c.Restaurants {
		if r == restaurantID {
			return true
		}
	}
	return false
}

// Restaurant is a rated entry within a board, assigned to exactly one
// category via CategoryID. Dishes is an ordered ranking, not a set; Visits
// is an append-only list of date strings in DateFormat.
type Restaurant struct {
	ID         string   `json:"-"`
	CategoryID string   `json:"category_id"`
	Name       string   `json:"name"`
	Rating1    float64  `json:"rating_1"`
	Rating2    float64  `json:"rating_2"`
	Rating3    float64  `json:"rating_3"`
	Notes      string   `json:"notes"`
	Visits     []string `json:"visits"`
	Location   string   `json:"location"`
	Dishes     []string `json:"dishes"`
	Photo      string   `json:"photo"`
}

// Rating returns the k-th rating (k in 1..3). Callers must validate k first.
func (r *Restaurant) Rating(k int) float64 {
	switch k {
	case 1:
		return r.Rating1
	case 2:
		return r.Rating2
	case 3:
		return r.Rating3
	}
	return 0
}

// FormatDate renders t as a date string in DateFormat.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

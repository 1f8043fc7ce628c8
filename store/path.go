package store

import (
	"fmt"
	"strings"
)

// Collection roots for the tastelist schema.
const (
	UsersPrefix  = "users"
	BoardsPrefix = "boards"
)

// JoinPath joins path segments with slashes after validating each one.
// Panics are never used; malformed segments surface from ValidatePath at
// call sites that take caller input.
func JoinPath(segments ...string) string {
	return strings.Join(segments, "/")
}

// SplitPath splits a slash-separated path into its segments.
func SplitPath(path string) []string {
	return strings.Split(path, "/")
}

// ValidatePath checks that a path is non-empty and that every segment is a
// well-formed key: no empty segments, no ".", no "..", no whitespace.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	if strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	for _, seg := range SplitPath(path) {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
		if strings.ContainsAny(seg, " \t\n") {
			return fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return nil
}

// UserPath returns the path of a user document.
func UserPath(userID string) string {
	return JoinPath(UsersPrefix, userID)
}

// BoardPath returns the path of a board document.
func BoardPath(boardID string) string {
	return JoinPath(BoardsPrefix, boardID)
}

// CategoryPath returns the path of a category document within a board.
func CategoryPath(boardID, categoryID string) string {
	return JoinPath(BoardsPrefix, boardID, "categories", categoryID)
}

// CategoriesPath returns the path of a board's category collection.
func CategoriesPath(boardID string) string {
	return JoinPath(BoardsPrefix, boardID, "categories")
}

// RestaurantPath returns the path of a restaurant document within a board.
func RestaurantPath(boardID, restaurantID string) string {
	return JoinPath(BoardsPrefix, boardID, "restaurants", restaurantID)
}

// RestaurantsPath returns the path of a board's restaurant collection.
func RestaurantsPath(boardID string) string {
	return JoinPath(BoardsPrefix, boardID, "restaurants")
}

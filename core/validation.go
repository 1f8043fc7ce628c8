// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
	"time"
)

// ValidateID validates an entity identifier. An id must be non-empty and
// must not contain path separators or whitespace, since ids become store
// path segments.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if strings.ContainsAny(id, "/ \t\n") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// ValidateRatingValue validates that a rating value is within [0, 10].
func ValidateRatingValue(value float64) error {
	if value < 0 || value > 10 {
		return fmt.Errorf("%w: value %v outside [0, 10]", ErrInvalidRating, value)
	}
	return nil
}

// ValidateRatingIndex validates that a rating index is 1, 2, or 3.
func ValidateRatingIndex(k int) error {
	if k < 1 || k > 3 {
		return fmt.Errorf("%w: index %d, want 1..3", ErrInvalidRating, k)
	}
	return nil
}

// ValidateRestaurant validates a Restaurant according to domain rules.
//
// Validation rules:
//   - Name, Location, and Photo must not be empty
//   - Visits and Dishes must be non-nil (empty is fine)
//   - All three ratings must be within [0, 10]
//
// NOT validated (assigned by the repository):
//   - ID (taken from the caller or generated)
//   - CategoryID (the repository checks the category exists)
//
// Notes may be empty.
func ValidateRestaurant(r *Restaurant) error {
	if r == nil {
		return fmt.Errorf("%w: restaurant is nil", ErrInvalidRestaurant)
	}

	required := []struct {
		field string
		ok    bool
	}{
		{"name", r.Name != ""},
		{"location", r.Location != ""},
		{"photo", r.Photo != ""},
		{"visits", r.Visits != nil},
		{"dishes", r.Dishes != nil},
	}
	for _, f := range required {
		if !f.ok {
			return fmt.Errorf("%w: %w: %s", ErrInvalidRestaurant, ErrMissingField, f.field)
		}
	}

	for k := 1; k <= 3; k++ {
		if err := ValidateRatingValue(r.Rating(k)); err != nil {
			return fmt.Errorf("%w: rating_%d: %w", ErrInvalidRestaurant, k, err)
		}
	}

	for _, v := range r.Visits {
		if err := ValidateDate(v); err != nil {
			return fmt.Errorf("%w: visit: %w", ErrInvalidRestaurant, err)
		}
	}

	return nil
}

// ValidateDate validates that s is a date string in DateFormat.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateFormat, s); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return nil
}

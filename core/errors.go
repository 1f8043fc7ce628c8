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

import "errors"

// Domain validation errors
var (
	// ErrInvalidID indicates an entity id is empty or not a well-formed
	// identifier.
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidRating indicates a rating value outside [0, 10] or a rating
	// index outside 1..3.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrMissingField indicates a required restaurant field is absent.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidRestaurant indicates a Restaurant failed validation.
	ErrInvalidRestaurant = errors.New("invalid restaurant")

	// ErrInvalidDate indicates a date string is not in DateFormat.
	ErrInvalidDate = errors.New("invalid date")
)

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


// Package core defines the domain model for tastelist: users, boards,
// categories, and restaurants, together with the validation rules and
// identifier helpers shared by every other package.
//
// The model is deliberately denormalized. A user carries the list of boards
// it belongs to, a board carries its member list, and a category carries the
// id list of its restaurants. Keeping both sides of each relationship
// consistent is the job of the repository layer; this package only defines
// the shapes and the field-level rules (id well-formedness, rating ranges,
// required restaurant fields).
//
// # Identifiers
//
// Entity ids are caller-supplied strings. When the caller has no natural id,
// NewID generates a random one and BoardCode derives a short, deterministic,
// shareable code from a board name.
package core

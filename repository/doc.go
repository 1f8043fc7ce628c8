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


// Package repository implements the cascade-consistent mutation layer over
// the path-addressed store: one repository per entity type (user, board,
// category, restaurant), each owning CRUD plus the relationship maintenance
// that keeps the denormalized graph consistent.
//
// # Write ordering
//
// The store gives no multi-path transactions, so every multi-path mutation
// is a fixed-order sequence of single-path writes. The order is chosen so
// that a crash between writes leaves the safer orphan: external references
// are detached before internal structure is destroyed, and a user document
// outlives the cleanup of its boards. Validation always happens before the
// first write (fail fast, no partial state); an error after the first write
// surfaces as a *CascadeError naming the step that failed. Every cascade
// step is idempotent, so retrying the whole operation runs it to
// completion.
//
// # Relationship writes
//
// User-board membership is always written through the link/unlink
// primitive, which updates both sides in a fixed order. link writes the
// board's member set first, then the user's board list; unlink detaches the
// user side first. Both are no-ops on the side that is already in the
// desired state.
//
// # Policies
//
// Creation rejects duplicates with ErrAlreadyExists; AddMember rejects a
// present member with ErrAlreadyMember; JoinBoard, LeaveBoard, and
// RemoveMember are idempotent. Concurrent writers to the same entity can
// still race at the store layer (read-modify-write of a member list); the
// store's optional Transactional extension is the hardening path for
// deployments that need it.
package repository

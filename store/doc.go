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


// Package store defines the path-addressed document store abstraction that
// the repository layer is written against.
//
// A store is a hierarchical key-value space where any subtree is addressable
// by a slash-separated path ("boards/b1/categories/c1"). It exposes exactly
// four operations: Get, Set, Update (shallow merge of named fields), and
// Delete. Each operation is atomic per call, but there is no coordination
// across calls: a multi-path mutation is a sequence of independent writes,
// and the repository layer orders those writes so that a partial failure is
// safely retryable.
//
// # Backends
//
// Backend packages return their concrete store type from public
// constructors; consumers hold it in a Store-typed field and never couple
// to the engine:
//
//	backend, err := badger.OpenBackend(path, false)
//	st := badger.NewStore(backend) // *badger.Store, satisfies store.Store
//
// Backends that can offer genuine multi-path atomicity additionally
// implement Transactional; callers that want the hardening can type-assert
// for it and collapse a write sequence into a single commit.
//
// # Conventions
//
// A Get of a path holding an empty object is reported as ErrNotFound: the
// empty container and the absent container are the same thing at this
// layer. Update on an absent path creates the document with exactly the
// named fields. Set and Delete apply to the whole subtree under the path.
package store

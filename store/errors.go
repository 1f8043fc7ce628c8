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


package store

import "errors"

var (
	// ErrNotFound indicates that no document exists at the requested path.
	// An empty document is equivalent to an absent one.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidPath indicates a malformed store path.
	ErrInvalidPath = errors.New("invalid path")

	// ErrStoreClosed indicates that the storage backend is closed.
	ErrStoreClosed = errors.New("store is closed")

	// ErrSerializationFailed indicates an encode/decode failure.
	ErrSerializationFailed = errors.New("serialization failed")
)

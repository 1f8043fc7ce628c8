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

// Package verify walks the whole user/board/category/restaurant graph and
// reports referential-integrity violations: dangling board references in
// user records, one-sided memberships, restaurants pointing at missing
// categories, and category index entries out of sync with the restaurants
// they name.
//
// The store gives no cross-path transactions, so an interrupted cascade can
// leave the graph in exactly these states. Scanning plus Repair is the
// recovery path: every fix is an idempotent list adjustment, safe to re-run
// any number of times.
//
// Boards are scanned concurrently on a worker pool; pool size, logging,
// and progress reporting are configurable through options.
package verify

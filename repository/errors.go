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


package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyExists indicates a create collided with an existing entity.
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrAlreadyMember indicates the user is already in the board's member
	// set. AddMember rejects duplicates; JoinBoard does not.
	ErrAlreadyMember = errors.New("user is already a member")

	// ErrNotOwner indicates the requester does not own the board.
	ErrNotOwner = errors.New("requester is not the board owner")
)

// CascadeError reports a multi-path mutation that failed after its first
// write. Step names which part of the sequence failed; the completed steps
// are all idempotent, so retrying the whole operation is the recovery path.
type CascadeError struct {
	Op   string // the repository operation, e.g. "DeleteBoard"
	Step string // the step that failed, e.g. "detach member u2"
	Err  error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("%s: step %q failed: %v", e.Op, e.Step, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}

func cascadeErr(op, step string, err error) error {
	return &CascadeError{Op: op, Step: step, Err: err}
}

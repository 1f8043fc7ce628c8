package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/tastelist/core"
	"github.com/poiesic/tastelist/store"
)

// UserRepository owns CRUD and relationship maintenance for users.
type UserRepository struct {
	store  store.Store
	boards *BoardRepository
	clock  func() time.Time
	loc    *time.Location
	logger *slog.Logger
}

// UserOption configures a UserRepository.
type UserOption func(*UserRepository)

// WithClock sets the time source used for last-active stamps.
// Default is time.Now.
func WithClock(clock func() time.Time) UserOption {
	return func(r *UserRepository) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithLocation sets the location used to render last-active dates.
// Default is UTC; deployments wanting local dates opt in explicitly.
func WithLocation(loc *time.Location) UserOption {
	return func(r *UserRepository) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithUserLogger sets a custom logger. Default is slog.Default().
func WithUserLogger(logger *slog.Logger) UserOption {
	return func(r *UserRepository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewUserRepository creates a UserRepository. The board repository is
// needed for the owner cascade in DeleteUser.
func NewUserRepository(st store.Store, boards *BoardRepository, opts ...UserOption) *UserRepository {
	r := &UserRepository{
		store:  st,
		boards: boards,
		clock:  time.Now,
		loc:    time.UTC,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateUser writes a new user document with an empty board list.
// Returns ErrAlreadyExists if the id is taken; there is no silent
// overwrite.
func (r *UserRepository) CreateUser(ctx context.Context, id, name string) (*core.User, error) {
	if err := core.ValidateID(id); err != nil {
		return nil, err
	}

	_, err := r.store.Get(ctx, store.UserPath(id))
	if err == nil {
		return nil, fmt.Errorf("user %s: %w", id, ErrAlreadyExists)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}

	// A fresh slice per call; board lists are never shared between users.
	user := &core.User{ID: id, Name: name, Boards: []string{}}
	doc, err := store.Encode(user)
	if err != nil {
		return nil, err
	}
	if err := r.store.Set(ctx, store.UserPath(id), doc); err != nil {
		return nil, fmt.Errorf("create user %s: %w", id, err)
	}

	r.logger.Debug("user created", "user", id)
	return user, nil
}

// GetUser retrieves a user by id. Returns store.ErrNotFound if absent.
func (r *UserRepository) GetUser(ctx context.Context, id string) (*core.User, error) {
	return readUser(ctx, r.store, id)
}

// GetUserBoards returns the user's board list. An absent user yields an
// empty list, never nil and never an error.
func (r *UserRepository) GetUserBoards(ctx context.Context, id string) ([]string, error) {
	user, err := readUser(ctx, r.store, id)
	if errors.Is(err, store.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return user.Boards, nil
}

// JoinBoard adds the board to the user's list and the user to the board's
// member set. Idempotent: joining a board twice leaves the same state as
// joining it once. The board must exist.
func (r *UserRepository) JoinBoard(ctx context.Context, userID, boardID string) error {
	return link(ctx, r.store, userID, boardID)
}

// LeaveBoard removes the board from the user's list and the user from the
// board's member set. Idempotent; absent entries are no-ops.
func (r *UserRepository) LeaveBoard(ctx context.Context, userID, boardID string) error {
	return unlink(ctx, r.store, userID, boardID)
}

// UpdateLastActive stamps the user with the current date (UTC unless the
// repository was configured with another location).
func (r *UserRepository) UpdateLastActive(ctx context.Context, userID string) error {
	if _, err := readUser(ctx, r.store, userID); err != nil {
		return err
	}
	stamp := core.FormatDate(r.clock().In(r.loc))
	err := r.store.Update(ctx, store.UserPath(userID), store.Document{"last_active": stamp})
	if err != nil {
		return fmt.Errorf("update last_active for user %s: %w", userID, err)
	}
	return nil
}

// DeleteUser removes a user and cleans up every board reference. Boards the
// user owns are cascade-deleted; boards the user merely belongs to lose the
// membership. The user document is removed last, so a crash mid-cleanup
// leaves a recoverable user record to retry against rather than a dangling
// board reference with no owner.
func (r *UserRepository) DeleteUser(ctx context.Context, userID string) error {
	const op = "DeleteUser"

	user, err := readUser(ctx, r.store, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, boardID := range user.Boards {
		board, err := readBoard(ctx, r.store, boardID)
		if errors.Is(err, store.ErrNotFound) {
			// Already gone; nothing to detach.
			continue
		}
		if err != nil {
			return cascadeErr(op, fmt.Sprintf("read board %s", boardID), err)
		}

		if board.Owner == userID {
			if err := r.boards.DeleteBoard(ctx, boardID, userID); err != nil {
				return cascadeErr(op, fmt.Sprintf("delete owned board %s", boardID), err)
			}
		} else {
			if err := unlink(ctx, r.store, userID, boardID); err != nil {
				return cascadeErr(op, fmt.Sprintf("leave board %s", boardID), err)
			}
		}
	}

	if err := r.store.Delete(ctx, store.UserPath(userID)); err != nil {
		return cascadeErr(op, "delete user document", err)
	}

	r.logger.Debug("user deleted", "user", userID)
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/poiesic/tastelist/core"
	"github.com/poiesic/tastelist/store"
)

// link adds userID to the board's member set and boardID to the user's
// board list. Both documents are read before the first write, so an absent
// user or board fails with nothing changed. Writes go board side first: a
// member entry pointing at a user who has not picked up the back-reference
// yet is recoverable by retrying. Each side is skipped when already in the
// desired state.
func link(ctx context.Context, st store.Store, userID, boardID string) error {
	board, err := readBoard(ctx, st, boardID)
	if err != nil {
		return err
	}
	user, err := readUser(ctx, st, userID)
	if err != nil {
		return err
	}

	if !board.HasMember(userID) {
		members := append(board.Members, userID)
		err := st.Update(ctx, store.BoardPath(boardID), store.Document{"members": members})
		if err != nil {
			return fmt.Errorf("add member %s to board %s: %w", userID, boardID, err)
		}
	}

	if !user.HasBoard(boardID) {
		boards := append(user.Boards, boardID)
		err := st.Update(ctx, store.UserPath(userID), store.Document{"boards": boards})
		if err != nil {
			return fmt.Errorf("add board %s to user %s: %w", boardID, userID, err)
		}
	}

	return nil
}

// unlink removes boardID from the user's board list and userID from the
// board's member set. User side first: on teardown the external reference
// goes before the structure it points at. Absent documents and absent
// entries are no-ops.
func unlink(ctx context.Context, st store.Store, userID, boardID string) error {
	if err := unlinkUserSide(ctx, st, userID, boardID); err != nil {
		return err
	}
	return unlinkBoardSide(ctx, st, userID, boardID)
}

func unlinkUserSide(ctx context.Context, st store.Store, userID, boardID string) error {
	user, err := readUser(ctx, st, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	boards, removed := removeValue(user.Boards, boardID)
	if !removed {
		return nil
	}
	err = st.Update(ctx, store.UserPath(userID), store.Document{"boards": boards})
	if err != nil {
		return fmt.Errorf("remove board %s from user %s: %w", boardID, userID, err)
	}
	return nil
}

func unlinkBoardSide(ctx context.Context, st store.Store, userID, boardID string) error {
	board, err := readBoard(ctx, st, boardID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	members, removed := removeValue(board.Members, userID)
	if !removed {
		return nil
	}
	err = st.Update(ctx, store.BoardPath(boardID), store.Document{"members": members})
	if err != nil {
		return fmt.Errorf("remove member %s from board %s: %w", userID, boardID, err)
	}
	return nil
}

// readUser loads and decodes a user document.
func readUser(ctx context.Context, st store.Store, userID string) (*core.User, error) {
	doc, err := st.Get(ctx, store.UserPath(userID))
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}
	var user core.User
	if err := store.DecodeInto(doc, &user); err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}
	user.ID = userID
	if user.Boards == nil {
		user.Boards = []string{}
	}
	return &user, nil
}

// readBoard loads and decodes a board document.
func readBoard(ctx context.Context, st store.Store, boardID string) (*core.Board, error) {
	doc, err := st.Get(ctx, store.BoardPath(boardID))
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", boardID, err)
	}
	var board core.Board
	if err := store.DecodeInto(doc, &board); err != nil {
		return nil, fmt.Errorf("board %s: %w", boardID, err)
	}
	board.ID = boardID
	if board.Members == nil {
		board.Members = []string{}
	}
	return &board, nil
}

// removeValue removes the first occurrence of v from list, reporting
// whether anything was removed. The input slice is not modified.
func removeValue(list []string, v string) ([]string, bool) {
	for i, item := range list {
		if item == v {
			out := make([]string, 0, len(list)-1)
			out = append(out, list[:i]...)
			out = append(out, list[i+1:]...)
			return out, true
		}
	}
	return list, false
}

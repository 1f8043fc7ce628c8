package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// NewID generates a random entity id. Used when the caller has no natural
// identifier for a user, board, category, or restaurant.
func NewID() string {
	return uuid.NewString()
}

// BoardCode derives a short, deterministic, shareable code from text using
// BLAKE2b hashing. Identical input produces the identical code, so a board
// created twice from the same seed data lands on the same id.
func BoardCode(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 16 hex chars
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Package tokenhash generates opaque refresh tokens and derives the hashes
// under which they are stored. Tokens must hash deterministically so that a
// presented token can be matched with a single indexed lookup.
package tokenhash

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// tokenBytes gives 256 bits of entropy per token.
const tokenBytes = 32

// New returns a fresh opaque refresh token as lowercase hex.
func New() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("tokenhash: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Hash returns the hex SHA-256 of token. Only this value is ever persisted.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

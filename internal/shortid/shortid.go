// Package shortid generates the opaque identifiers that key link records.
package shortid

import (
	"crypto/rand"
	"fmt"
)

// Length is the identifier length in characters.
const Length = 8

// alphabet is URL-safe and 64 characters long, so each random byte maps to
// a character without modulo bias.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// New returns a random URL-safe identifier of Length characters.
func New() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	for i, b := range buf {
		buf[i] = alphabet[b&63]
	}

	return string(buf), nil
}

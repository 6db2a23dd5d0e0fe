// Package sha256 derives stable hex digests used as cache keys.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher digests byte slices.
type Hasher struct{}

// New returns a SHA-256 hasher.
func New() *Hasher {
	return &Hasher{}
}

// Hash returns the hex digest of data.
func (h *Hasher) Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Key hashes a string, typically a request URL, into a filesystem-safe key.
func Key(s string) string {
	return New().Hash([]byte(s))
}

// Package token generates and hashes the opaque credentials used for
// refresh and password-reset flows. Raw values carry 256 bits of entropy,
// are handed out exactly once, and only their SHA-256 digest is stored.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

const rawSize = 32

// NewOpaque returns a new random opaque credential.
func NewOpaque() (string, error) {
	raw := make([]byte, rawSize)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// Hash returns the hex-encoded SHA-256 digest of a raw credential. This is
// the only form that ever reaches persistence or logs.
func Hash(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h)
}

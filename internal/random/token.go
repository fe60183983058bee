// Package random provides crypto/rand-backed token helpers.
package random

import (
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewToken generates an opaque 64-character hex token suitable for
// single-use verification links.
func NewToken() (string, error) {
	var b [32]byte
	if _, err := crand.Read(b[:]); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

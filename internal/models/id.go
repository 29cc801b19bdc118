package models

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random identifier with the given prefix, e.g. "usr_9f2c...".
func NewID(prefix string) string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand failure is not recoverable
	}
	return prefix + "_" + hex.EncodeToString(b)
}

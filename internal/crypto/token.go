package crypto

import (
	"crypto/rand"

	"github.com/mr-tron/base58"
)

// NewToken returns a base58-encoded random token with n bytes of entropy.
// Used for session tokens, admin tokens and batch ids.
func NewToken(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return base58.Encode(b)
}

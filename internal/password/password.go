// Package password holds the credential primitives: salt generation,
// salted password digests, and the second-order confirmation digest
// embedded in session tokens.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// SaltSize is the length of the per-credential random salt.
const SaltSize = 64

// GenerateSalt returns a fresh random salt from crypto/rand.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// Hash computes the stored digest SHA3-512(salt || plaintext).
//
// This is a single unstretched pass. Moving to a memory-hard KDF would
// invalidate every stored hash, so the scheme stays as is until the
// owner signs off on a migration (see DESIGN.md).
func Hash(salt []byte, plaintext string) []byte {
	h := sha3.New512()
	h.Write(salt)
	h.Write([]byte(plaintext))
	return h.Sum(nil)
}

// Verify recomputes the digest for a candidate plaintext and compares
// it against the stored hash in constant time.
func Verify(salt, storedHash []byte, candidate string) bool {
	digest := Hash(salt, candidate)
	return subtle.ConstantTimeCompare(digest, storedHash) == 1
}

// Confirmation derives the second-order digest carried in session
// tokens: base64(SHA3-512(storedHash)). The token never holds the
// stored hash itself, and rotating the stored hash invalidates every
// token derived from the old one.
func Confirmation(storedHash []byte) string {
	h := sha3.New512()
	h.Write(storedHash)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// ConfirmationMatches compares a token-supplied confirmation value
// against one freshly derived from the current stored hash, in
// constant time.
func ConfirmationMatches(storedHash []byte, confirmation string) bool {
	derived := Confirmation(storedHash)
	return subtle.ConstantTimeCompare([]byte(derived), []byte(confirmation)) == 1
}

// Package cryptox implements the salted password digests stored in the
// accounts document. Every digest keeps its salt next to the hash, separated
// by a colon, so a password can be verified without storing the plaintext.
package cryptox

import (
	"crypto/subtle"
	"fmt"
	"strings"
)

// PasswordHasher creates and verifies salted password digests.
//
// Implementations must be safe for concurrent use.
type PasswordHasher interface {
	// Hash returns a freshly salted digest of password.
	Hash(password string) (string, error)

	// Verify reports whether password matches digest. Malformed digests
	// never match.
	Verify(password, digest string) bool
}

// Hasher names accepted by NewPasswordHasher.
const (
	HasherSalted = "salted"
	HasherArgon2 = "argon2"
)

// NewPasswordHasher returns the hasher registered under kind.
func NewPasswordHasher(kind string) (PasswordHasher, error) {
	switch strings.ToLower(kind) {
	case "", HasherSalted:
		return NewSaltedHasher(), nil
	case HasherArgon2:
		return NewArgon2Hasher(), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", kind)
	}
}

const digestSeparator = ":"

func splitDigest(digest string) (salt, hash string, ok bool) {
	salt, hash, ok = strings.Cut(digest, digestSeparator)
	if !ok || salt == "" || hash == "" {
		return "", "", false
	}
	return salt, hash, true
}

func equalDigests(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

package cryptox

import (
	"encoding/hex"
	"strings"

	"github.com/dmitrijs2005/ftpaccounts/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	argon2SaltSize = 16
	argon2KeySize  = 32
)

// Argon2Hasher produces "<hex salt>:<hex argon2id key>" digests.
type Argon2Hasher struct{}

func NewArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{}
}

// DeriveKey stretches password with salt using argon2id.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, argon2KeySize)
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt := common.GenerateRandByteArray(argon2SaltSize)

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	key := DeriveKey(pw, salt)
	return hex.EncodeToString(salt) + digestSeparator + hex.EncodeToString(key), nil
}

func (h *Argon2Hasher) Verify(password, digest string) bool {
	saltHex, keyHex, ok := splitDigest(digest)
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	if _, err := hex.DecodeString(keyHex); err != nil {
		return false
	}

	pw := []byte(password)
	defer common.WipeByteArray(pw)

	return equalDigests(hex.EncodeToString(DeriveKey(pw, salt)), strings.ToLower(keyHex))
}

package cryptox

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"
)

const (
	saltedIterations = 1000
	saltedMaxSalt    = 99999999
)

// SaltedHasher produces digests compatible with existing FTP user files:
// "<decimal salt>:<HEX>", where HEX is upper-case hex MD5 applied
// saltedIterations times, starting from salt+password and feeding each
// round the previous round's hex string.
type SaltedHasher struct{}

func NewSaltedHasher() *SaltedHasher {
	return &SaltedHasher{}
}

func (h *SaltedHasher) Hash(password string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(saltedMaxSalt))
	if err != nil {
		return "", err
	}
	salt := strconv.FormatInt(n.Int64(), 10)
	return salt + digestSeparator + saltedDigest(salt, password), nil
}

func (h *SaltedHasher) Verify(password, digest string) bool {
	salt, hash, ok := splitDigest(digest)
	if !ok {
		return false
	}
	return equalDigests(strings.ToUpper(hash), saltedDigest(salt, password))
}

func saltedDigest(salt, password string) string {
	hash := salt + password
	for i := 0; i < saltedIterations; i++ {
		sum := md5.Sum([]byte(hash))
		hash = strings.ToUpper(hex.EncodeToString(sum[:]))
	}
	return hash
}

package common

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"
)

// MakeRandHexString returns size random bytes encoded as hex, so the result
// is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateRandByteArray returns n bytes from crypto/rand. It panics if the
// system random source fails, which leaves no safe way to continue.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// GenerateCredential returns a random string of the given length drawn
// uniformly from CredentialCharset.
func GenerateCredential(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("credential length must be positive")
	}
	max := big.NewInt(int64(len(CredentialCharset)))
	out := make([]byte, length)
	for i := range out {
		// rand.Int samples without modulo bias
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = CredentialCharset[n.Int64()]
	}
	return string(out), nil
}

// WipeByteArray overwrites b with zeros. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Package crypto derives the keys the web front end signs its cookies with.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	iterations = 100000
	// KeySize is the length of every key returned by this package.
	KeySize = 32
)

// DeriveKey stretches secret into a KeySize key using PBKDF2-SHA256.
// The same secret always yields the same key, so cookies stay valid across
// restarts and replicas. An empty secret returns nil.
func DeriveKey(secret string) []byte {
	if secret == "" {
		return nil
	}

	// Fixed salt derived from the secret itself; nothing is stored alongside the key
	salt := sha256.Sum256([]byte(secret + "academy-site-salt"))

	return pbkdf2.Key([]byte(secret), salt[:], iterations, KeySize, sha256.New)
}

// RandomKey returns a fresh KeySize key from crypto/rand.
func RandomKey() ([]byte, error) {
	return randomKey(rand.Reader)
}

func randomKey(r io.Reader) ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	return key, nil
}

// KeyOrRandom derives a key from secret, or generates a random one when secret
// is empty. generated reports which happened.
func KeyOrRandom(secret string) (key []byte, generated bool, err error) {
	if key := DeriveKey(secret); key != nil {
		return key, false, nil
	}
	key, err = RandomKey()
	if err != nil {
		return nil, false, err
	}
	return key, true, nil
}

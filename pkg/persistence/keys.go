package persistence

import (
	"crypto/rand"
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// defaultKeyDerivationIterations matches the reference engine's
// encryption package's default PBKDF2 work factor.
const defaultKeyDerivationIterations = 600000

// DeriveKey derives a 32-byte AES-256 key from password and salt via
// PBKDF2-HMAC-SHA256, for operators who want to configure
// EncryptedStore from a passphrase instead of managing a raw key.
// iterations <= 0 falls back to defaultKeyDerivationIterations.
func DeriveKey(password, salt []byte, iterations int) []byte {
	if iterations <= 0 {
		iterations = defaultKeyDerivationIterations
	}
	return pbkdf2.Key(password, salt, iterations, 32, sha256.New)
}

// GenerateSalt returns a fresh cryptographically random 32-byte salt
// for use with DeriveKey. Generate once per installation and store it
// alongside (not instead of) the derived key's ciphertexts.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

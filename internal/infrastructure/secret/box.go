package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrMalformed is returned when a stored value cannot be decrypted,
// typically because the secret key changed or the column was tampered with.
var ErrMalformed = errors.New("malformed encrypted value")

// Box seals and opens short secrets for at-rest storage using AES-GCM.
// Values are encoded as base64(nonce || ciphertext) so they fit text
// columns.
type Box struct {
	aead cipher.AEAD
}

// NewBox derives a sealing key from the configured secret. Any non-empty
// passphrase works; it is stretched to key size with SHA-256.
func NewBox(secretKey string) (*Box, error) {
	if secretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	key := sha256.Sum256([]byte(secretKey))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Box{aead: aead}, nil
}

// Seal encrypts plaintext. Sealing the same value twice yields different
// outputs; equality checks must go through Open.
func (b *Box) Seal(plaintext string) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := b.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal.
func (b *Box) Open(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrMalformed
	}
	if len(sealed) < b.aead.NonceSize() {
		return "", ErrMalformed
	}

	nonce, ciphertext := sealed[:b.aead.NonceSize()], sealed[b.aead.NonceSize():]
	plaintext, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrMalformed
	}
	return string(plaintext), nil
}

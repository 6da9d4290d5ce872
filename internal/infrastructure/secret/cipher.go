// Package secret seals marketplace API keys before they reach storage.
package secret

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// sealedPrefix marks values produced by Cipher.Seal
const sealedPrefix = "xc1:"

const hkdfInfo = "retailcrm/marketplace-credential"

var (
	ErrEmptyKey      = errors.New("secret: encryption key is required")
	ErrMalformedData = errors.New("secret: sealed value is malformed")
	ErrDecrypt       = errors.New("secret: failed to open sealed value")
)

// Cipher encrypts short secrets with XChaCha20-Poly1305.
// The AEAD key is derived from the configured passphrase with HKDF-SHA256.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives a key from passphrase
func NewCipher(passphrase string) (*Cipher, error) {
	if strings.TrimSpace(passphrase) == "" {
		return nil, ErrEmptyKey
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(passphrase), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("secret: derive key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("secret: init aead: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Seal encrypts plaintext. additionalData binds the value to its owner row,
// so a sealed key copied to another row fails to open.
func (c *Cipher) Seal(plaintext, additionalData string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("secret: nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), []byte(additionalData))
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal. Values without the sealed prefix
// are returned unchanged so rows written before encryption stay readable.
func (c *Cipher) Open(value, additionalData string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}

	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	if len(raw) < c.aead.NonceSize()+c.aead.Overhead() {
		return "", ErrMalformedData
	}

	nonce, ciphertext := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, []byte(additionalData))
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}

// IsSealed reports whether value was produced by Seal
func IsSealed(value string) bool {
	return strings.HasPrefix(value, sealedPrefix)
}

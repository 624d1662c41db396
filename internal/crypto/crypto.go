// Package crypto seals small secrets (the routing API key) for storage at rest.
//
// Sealed values look like "v1:<base64(salt|nonce|ciphertext)>". The key is derived from a
// passphrase with PBKDF2-SHA256 and a random per-value salt; sealing uses AES-256-GCM.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	sealedPrefix = "v1:"
	saltSize     = 16
	iterations   = 100000
	keySize      = 32 // AES-256
)

var (
	// ErrNoPassphrase is returned when sealing or opening without a passphrase.
	ErrNoPassphrase = errors.New("no passphrase configured")

	// ErrWrongPassphrase is returned when a sealed value cannot be authenticated.
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted value")
)

// Sealer encrypts and decrypts values with a passphrase-derived key.
// A nil *Sealer passes plaintext through unchanged.
type Sealer struct {
	passphrase []byte
}

// NewSealer returns a Sealer for the passphrase, or nil when the passphrase is empty.
func NewSealer(passphrase string) *Sealer {
	if passphrase == "" {
		return nil
	}
	return &Sealer{passphrase: []byte(passphrase)}
}

// IsSealed reports whether s carries the sealed-value prefix.
func IsSealed(s string) bool {
	return strings.HasPrefix(s, sealedPrefix)
}

// Seal encrypts plaintext. An empty plaintext seals to "".
func (s *Sealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	if s == nil {
		return plaintext, nil
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	gcm, err := s.aead(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	out := make([]byte, 0, saltSize+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, []byte(plaintext), nil)

	return sealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open decrypts a sealed value. Values without the sealed prefix are returned unchanged so
// keys saved before a passphrase was configured keep working.
func (s *Sealer) Open(value string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}
	if s == nil {
		return "", ErrNoPassphrase
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("decoding sealed value: %w", err)
	}
	if len(data) < saltSize {
		return "", ErrWrongPassphrase
	}

	salt, rest := data[:saltSize], data[saltSize:]
	gcm, err := s.aead(salt)
	if err != nil {
		return "", err
	}
	if len(rest) < gcm.NonceSize() {
		return "", ErrWrongPassphrase
	}

	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrWrongPassphrase
	}

	return string(plaintext), nil
}

func (s *Sealer) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(s.passphrase, salt, iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return gcm, nil
}

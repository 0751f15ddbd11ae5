// Package cipher provides the process-wide authenticated encryption used to
// protect stored credential passwords.
package cipher

import (
	"crypto/aes"
	gocipher "crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/ericfisherdev/docnest/internal/domain/port/driven"
)

// KeySize is the required AES-256 key length in bytes.
const KeySize = 32

// Compile-time interface satisfaction check.
var _ driven.Cipher = (*AESGCM)(nil)

// AESGCM encrypts with AES-256-GCM. Output is base64(nonce || ciphertext || tag).
// The AEAD is built once and never mutated, so an AESGCM is safe for
// concurrent use.
type AESGCM struct {
	aead gocipher.AEAD
}

// New builds an AESGCM from a raw 32-byte key. Any other length yields
// driven.ErrInvalidKey.
func New(key []byte) (*AESGCM, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", driven.ErrInvalidKey, len(key), KeySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	aead, err := gocipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}

	return &AESGCM{aead: aead}, nil
}

// ParseKey decodes a base64 key. Standard and URL-safe alphabets are both
// accepted, with or without padding, so Fernet-style keys work unchanged.
func ParseKey(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, driven.ErrInvalidKey
	}

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		key, err := enc.DecodeString(encoded)
		if err != nil {
			continue
		}
		if len(key) != KeySize {
			return nil, fmt.Errorf("%w: decoded key is %d bytes, want %d", driven.ErrInvalidKey, len(key), KeySize)
		}
		return key, nil
	}

	return nil, fmt.Errorf("%w: not valid base64", driven.ErrInvalidKey)
}

// Encrypt seals plaintext under a fresh random nonce.
func (c *AESGCM) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Every failure wraps
// driven.ErrDecryption; the input itself is never included in the error.
func (c *AESGCM) Decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: invalid encoding", driven.ErrDecryption)
	}

	nonceSize := c.aead.NonceSize()
	if len(data) < nonceSize+c.aead.Overhead() {
		return "", fmt.Errorf("%w: ciphertext too short", driven.ErrDecryption)
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", driven.ErrDecryption)
	}

	return string(plaintext), nil
}

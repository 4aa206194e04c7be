package util

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// keySalt is fixed so the same passphrase always opens data written by earlier runs.
var keySalt = []byte("p4d/at-rest/v1")

// Cipher seals values at rest with AES-256-GCM. A nil *Cipher passes data through
// unchanged, which is what an empty encryption key in config means.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives a 32 byte key from passphrase with PBKDF2-SHA256.
// It returns nil, nil for an empty passphrase.
func NewCipher(passphrase string) (*Cipher, error) {
	if passphrase == "" {
		return nil, nil
	}
	key := pbkdf2.Key([]byte(passphrase), keySalt, 100_000, 32, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Seal returns nonce+ciphertext.
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	if c == nil {
		return plaintext, nil
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal.
func (c *Cipher) Open(data []byte) ([]byte, error) {
	if c == nil {
		return data, nil
	}
	ns := c.aead.NonceSize()
	if len(data) < ns {
		return nil, fmt.Errorf("cipher too short")
	}
	plaintext, err := c.aead.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

// SealString encrypts plain and encodes it as base64. Empty input stays empty.
func (c *Cipher) SealString(plain string) (string, error) {
	if c == nil || plain == "" {
		return plain, nil
	}
	b, err := c.Seal([]byte(plain))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// OpenString 尝试解密 base64+AES，失败则返回原值
func (c *Cipher) OpenString(s string) string {
	if c == nil || s == "" {
		return s
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return s
	}
	plain, err := c.Open(b)
	if err != nil {
		return s
	}
	return string(plain)
}

// Package encryption seals secret setting values at rest with an AEAD cipher.
//
// ChaCha20-Poly1305 is the default; AES-256-GCM is available for hosts that
// must stick to FIPS-listed primitives. Keys are derived from a passphrase
// with SHA-256 and ciphertexts are base64 strings carrying their nonce.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// Encryptor encrypts and decrypts short strings.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Algorithm names a supported AEAD.
type Algorithm string

const (
	AlgorithmChaCha20 Algorithm = "chacha20-poly1305"
	AlgorithmAESGCM   Algorithm = "aes-256-gcm"
)

// Cipher is an Encryptor backed by a cipher.AEAD.
type Cipher struct {
	aead      cipher.AEAD
	algorithm Algorithm
}

// New returns a Cipher for key using alg. An empty alg selects ChaCha20.
func New(key string, alg Algorithm) (*Cipher, error) {
	if key == "" {
		return nil, fmt.Errorf("encryption key is empty")
	}
	sum := sha256.Sum256([]byte(key))

	var (
		aead cipher.AEAD
		err  error
	)
	switch alg {
	case "", AlgorithmChaCha20:
		alg = AlgorithmChaCha20
		aead, err = chacha20poly1305.New(sum[:])
	case AlgorithmAESGCM:
		var block cipher.Block
		block, err = aes.NewCipher(sum[:])
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	default:
		return nil, fmt.Errorf("unsupported algorithm %q", alg)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", alg, err)
	}
	return &Cipher{aead: aead, algorithm: alg}, nil
}

// Algorithm reports which AEAD the Cipher uses.
func (c *Cipher) Algorithm() Algorithm { return c.algorithm }

// Encrypt seals plaintext under a fresh random nonce.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}

	nonceSize := c.aead.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	plaintext, err := c.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plaintext), nil
}

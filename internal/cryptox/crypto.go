// Package cryptox implements the vault's stateless authenticated encryption.
//
// Every sealed payload is framed as
//
//	[algorithm byte][nonce][ciphertext || tag]
//
// A fresh random nonce is drawn for each Encrypt call, so identical
// plaintexts never produce identical ciphertexts. Decrypt reads the algorithm
// byte, which keeps payloads produced under either supported AEAD readable
// regardless of which one is configured for new writes.
//
// Any failure in Decrypt (truncated frame, unknown algorithm, wrong key,
// tampering) is reported as common.ErrDecryption and no plaintext is returned.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the required key length for all supported algorithms.
const KeySize = 32

// Algorithm identifies the AEAD used for a payload. The value is written as
// the first byte of every frame and must never be renumbered.
type Algorithm byte

const (
	AES256GCM         Algorithm = 1
	XChaCha20Poly1305 Algorithm = 2
)

func (a Algorithm) String() string {
	switch a {
	case AES256GCM:
		return "aes-256-gcm"
	case XChaCha20Poly1305:
		return "xchacha20-poly1305"
	}
	return fmt.Sprintf("unknown(%d)", byte(a))
}

// ParseAlgorithm maps a configuration name to an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "aes-256-gcm", "aes-gcm":
		return AES256GCM, nil
	case "xchacha20-poly1305", "xchacha20":
		return XChaCha20Poly1305, nil
	}
	return 0, fmt.Errorf("%w: unknown cipher %q", common.ErrValidation, name)
}

// Cipher seals and opens payloads. It holds no key and no mutable state, so a
// single value may be shared freely.
type Cipher struct {
	alg Algorithm
}

// NewCipher returns a Cipher that encrypts with alg.
func NewCipher(alg Algorithm) (*Cipher, error) {
	if _, err := newAEAD(alg, make([]byte, KeySize)); err != nil {
		return nil, err
	}
	return &Cipher{alg: alg}, nil
}

// Algorithm reports the algorithm used for new payloads.
func (c *Cipher) Algorithm() Algorithm {
	return c.alg
}

// Encrypt seals plaintext under key.
func (c *Cipher) Encrypt(key, plaintext []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: invalid key size: expected %d bytes, got %d", common.ErrValidation, KeySize, len(key))
	}

	aead, err := newAEAD(c.alg, key)
	if err != nil {
		return nil, err
	}

	nonceSize := aead.NonceSize()
	out := make([]byte, 1+nonceSize, 1+nonceSize+len(plaintext)+aead.Overhead())
	out[0] = byte(c.alg)
	if _, err := rand.Read(out[1:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return aead.Seal(out, out[1:], plaintext, nil), nil
}

// Decrypt verifies and opens a payload produced by Encrypt.
func (c *Cipher) Decrypt(key, ciphertext []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: invalid key size: expected %d bytes, got %d", common.ErrDecryption, KeySize, len(key))
	}
	if len(ciphertext) < 1 {
		return nil, fmt.Errorf("%w: empty ciphertext", common.ErrDecryption)
	}

	aead, err := newAEAD(Algorithm(ciphertext[0]), key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrDecryption, err)
	}

	body := ciphertext[1:]
	nonceSize := aead.NonceSize()
	if len(body) < nonceSize+aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", common.ErrDecryption)
	}

	plaintext, err := aead.Open(nil, body[:nonceSize], body[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed: %w", common.ErrDecryption, err)
	}
	return plaintext, nil
}

func newAEAD(alg Algorithm, key []byte) (cipher.AEAD, error) {
	switch alg {
	case AES256GCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create AES cipher: %w", err)
		}
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCM: %w", err)
		}
		return gcm, nil
	case XChaCha20Poly1305:
		aead, err := chacha20poly1305.NewX(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create XChaCha20-Poly1305: %w", err)
		}
		return aead, nil
	}
	return nil, fmt.Errorf("unsupported algorithm %s", alg)
}

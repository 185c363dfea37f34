package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// ivSize is the initialization vector length prepended to every blob.
// The stored format is base64(iv || ciphertext).
const ivSize = 16

// ErrDecrypt is returned when a blob is malformed, truncated, or fails
// authentication. A stored credential that cannot be decrypted is an
// integrity fault, not a wrong-password case.
var ErrDecrypt = errors.New("cannot decrypt blob")

// Cipher performs reversible encryption of credential strings.
//
// Passwords are encrypted, not hashed: login decrypts the stored blob
// and compares plaintext. This is a known weakness of the scheme
// (compromise of the secret exposes every stored password) that the
// login flow depends on, so it is kept as-is.
type Cipher struct {
	aead cipher.AEAD
}

// New derives a 32-byte AES key from the configured secret via SHA-256
// and returns a ready-to-use cipher. The key derivation happens once;
// the plaintext secret is not retained.
func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, errors.New("cipher secret is not configured")
	}

	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}

	// GCM with a 16-byte nonce keeps the IV-prepend wire format while
	// authenticating the ciphertext, so tampering is detected on decrypt.
	aead, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher mode: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt encrypts plaintext with a fresh random IV and returns
// base64(iv || ciphertext). Two calls with the same plaintext produce
// different blobs.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	sealed := c.aead.Seal(iv, iv, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt: decode, split the fixed-size IV prefix,
// decrypt the remainder. Any malformed or tampered input fails with
// ErrDecrypt.
func (c *Cipher) Decrypt(encoded string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	if len(blob) < ivSize {
		return "", fmt.Errorf("%w: blob shorter than iv", ErrDecrypt)
	}

	iv, ciphertext := blob[:ivSize], blob[ivSize:]
	plaintext, err := c.aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	return string(plaintext), nil
}

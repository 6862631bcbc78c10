package credstore

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. N=2^15 keeps unlock under ~100ms on modest hardware
// while still being expensive to brute-force.
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// cipher seals and opens credential values with a key derived from the
// configured passphrase and a per-store random salt.
type cipher struct {
	key []byte
}

func newCipher(passphrase string, salt []byte) (*cipher, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return &cipher{key: key}, nil
}

// seal encrypts value, prefixing the random nonce to the ciphertext.
func (c *cipher) seal(value string) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, []byte(value), nil), nil
}

// open decrypts a sealed value produced by seal.
func (c *cipher) open(sealed []byte) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize() {
		return "", fmt.Errorf("sealed value too short")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("open sealed value: %w", err)
	}
	return string(plaintext), nil
}

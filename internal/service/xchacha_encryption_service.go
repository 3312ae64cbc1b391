package service

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// XChaChaEncryptionService implements ports.SecurityProvider using XChaCha20-Poly1305.
// The 24-byte nonce is random per message.
type XChaChaEncryptionService struct {
	aead cipher.AEAD
}

// NewXChaChaEncryptionService creates a new XChaCha20-Poly1305 encryption service.
func NewXChaChaEncryptionService(hexKey string) (*XChaChaEncryptionService, error) {
	key, err := decodeKey(hexKey)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305: %w", err)
	}

	return &XChaChaEncryptionService{aead: aead}, nil
}

// EncryptBytes returns nonce(24) + ciphertext + tag.
func (s *XChaChaEncryptionService) EncryptBytes(plaintext []byte) ([]byte, error) {
	return seal(s.aead, plaintext)
}

// DecryptBytes opens a blob produced by EncryptBytes with the same key.
func (s *XChaChaEncryptionService) DecryptBytes(ciphertext []byte) ([]byte, error) {
	return open(s.aead, ciphertext)
}

package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"crypto-payments/internal/core/ports"
)

// NewSecurityProvider builds the private key cipher named by provider ("aes" or "xchacha").
func NewSecurityProvider(provider, hexKey string) (ports.SecurityProvider, error) {
	switch provider {
	case "", "aes":
		return NewAESEncryptionService(hexKey)
	case "xchacha":
		return NewXChaChaEncryptionService(hexKey)
	default:
		return nil, fmt.Errorf("unknown security provider %q", provider)
	}
}

func decodeKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decoding key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// AESEncryptionService implements ports.SecurityProvider using AES-256-GCM.
type AESEncryptionService struct {
	aead cipher.AEAD
}

// NewAESEncryptionService creates a new AES-256-GCM encryption service.
// hexKey must be a 64-character hex string (32 bytes decoded).
func NewAESEncryptionService(hexKey string) (*AESEncryptionService, error) {
	key, err := decodeKey(hexKey)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}

	return &AESEncryptionService{aead: aesGCM}, nil
}

// EncryptBytes returns nonce(12) + ciphertext + tag.
func (s *AESEncryptionService) EncryptBytes(plaintext []byte) ([]byte, error) {
	return seal(s.aead, plaintext)
}

// DecryptBytes opens a blob produced by EncryptBytes with the same key.
func (s *AESEncryptionService) DecryptBytes(ciphertext []byte) ([]byte, error) {
	return open(s.aead, ciphertext)
}

func seal(aead cipher.AEAD, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

func open(aead cipher.AEAD, ciphertext []byte) ([]byte, error) {
	nonceSize := aead.NonceSize()
	if len(ciphertext) < nonceSize+aead.Overhead() {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, body := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := aead.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	return plaintext, nil
}

package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

var (
	ErrInvalidKey    = errors.New("session key must be 32 bytes")
	ErrCorruptSealed = errors.New("sealed session value is corrupted")
)

// Sealed encrypts values before they reach store, so tokens kept in a shared
// database are unreadable without the key. Keys are left in the clear.
type Sealed struct {
	store Store
	key   []byte
}

// NewSealed wraps store. keyBase64 is a standard base64 encoded 32 byte key.
func NewSealed(store Store, keyBase64 string) (*Sealed, error) {
	key, err := base64.StdEncoding.DecodeString(keyBase64)
	if err != nil {
		return nil, fmt.Errorf("decoding session key: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, ErrInvalidKey
	}
	return &Sealed{store: store, key: key}, nil
}

func (s *Sealed) Set(ctx context.Context, key, value string) error {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(value)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}
	// The key is bound as additional data so a value cannot be moved to another key.
	sealed := aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return s.store.Set(ctx, key, base64.RawStdEncoding.EncodeToString(sealed))
}

func (s *Sealed) Get(ctx context.Context, key string) (string, error) {
	encoded, err := s.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	sealed, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrCorruptSealed
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return "", ErrCorruptSealed
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", ErrCorruptSealed
	}
	return string(plain), nil
}

func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, key)
}

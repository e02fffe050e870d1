package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/strata/pkg/ports"
)

// ErrDecrypt is returned when no configured key opens an entry.
var ErrDecrypt = errors.New("decryption failed with all available keys")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.DocumentCache
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals every cached entry
// with AES-GCM. Entry names stay in clear so listings keep working.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.DocumentCache) ports.DocumentCache {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Put(ctx context.Context, id string, entries map[string][]byte) error {
	sealed := make(map[string][]byte, len(entries))
	for name, data := range entries {
		ciphertext, err := encrypt(data, m.config.ActiveKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt entry %s: %w", name, err)
		}
		sealed[name] = ciphertext
	}
	return m.next.Put(ctx, id, sealed)
}

func (m *encryptionMiddleware) Archive(ctx context.Context, id string) (ports.Archive, error) {
	archive, err := m.next.Archive(ctx, id)
	if err != nil {
		return nil, err
	}
	return &decryptingArchive{next: archive, config: m.config}, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

type decryptingArchive struct {
	next   ports.Archive
	config EncryptionConfig
}

func (a *decryptingArchive) ReadEntry(ctx context.Context, name string) ([]byte, error) {
	ciphertext, err := a.next.ReadEntry(ctx, name)
	if err != nil {
		return nil, err
	}
	plain, err := decryptWithRotation(ciphertext, a.config.ActiveKey, a.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", name, err)
	}
	return plain, nil
}

func (a *decryptingArchive) HasEntry(ctx context.Context, name string) (bool, error) {
	return a.next.HasEntry(ctx, name)
}

func (a *decryptingArchive) ListEntries(ctx context.Context) ([]string, error) {
	return a.next.ListEntries(ctx)
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, ErrDecrypt
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}

package secrets

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"runtime"
)

// Sealing keeps the access token out of plain text in the durable store.
// It is obfuscation keyed per OS user, not a replacement for a keychain.

// KV is the durable key-value area being wrapped.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// SealedStorage encrypts the values of selected keys with AES-GCM before
// they reach the inner store. Other keys pass through untouched.
type SealedStorage struct {
	inner  KV
	aead   cipher.AEAD
	sealed map[string]bool
}

// NewSealedStorage seals the listed keys with a 32-byte key.
func NewSealedStorage(inner KV, key []byte, keys ...string) (*SealedStorage, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("secrets: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secrets: %w", err)
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return &SealedStorage{inner: inner, aead: gcm, sealed: set}, nil
}

// MasterKey derives the sealing key for the current OS user.
func MasterKey() []byte {
	base := fmt.Sprintf("edushop-%s-%s", runtime.GOOS, os.Getenv("USER"))
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func (s *SealedStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok || !s.sealed[key] {
		return v, ok, err
	}
	plain, err := s.open(v)
	if err != nil {
		return "", false, fmt.Errorf("secrets: open %q: %w", key, err)
	}
	return plain, true, nil
}

func (s *SealedStorage) Set(ctx context.Context, key, value string) error {
	if !s.sealed[key] {
		return s.inner.Set(ctx, key, value)
	}
	ct, err := s.seal(value)
	if err != nil {
		return fmt.Errorf("secrets: seal %q: %w", key, err)
	}
	return s.inner.Set(ctx, key, ct)
}

func (s *SealedStorage) Delete(ctx context.Context, keys ...string) error {
	return s.inner.Delete(ctx, keys...)
}

func (s *SealedStorage) seal(plain string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ct := s.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(ct), nil
}

func (s *SealedStorage) open(enc string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", err
	}
	if len(raw) < s.aead.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, body := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	pt, err := s.aead.Open(nil, nonce, body, nil)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

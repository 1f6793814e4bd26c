package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/ports"
)

const (
	// EnvelopeKind marks the single component that carries an encrypted definition.
	EnvelopeKind domain.Kind = "Encrypted"

	envelopeID      = "__encrypted__"
	ciphertextProp  = "ciphertext"
	activeKeyLength = 32
)

// ErrNotEncrypted is returned when a stored form is not an encryption envelope.
var ErrNotEncrypted = errors.New("form is missing encrypted data envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.DefinitionStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts definitions using AES-GCM.
// The stored envelope keeps the canvas size and zoom in clear; components are opaque.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != activeKeyLength {
		return nil, fmt.Errorf("active key must be %d bytes (AES-256), got %d", activeKeyLength, len(config.ActiveKey))
	}
	return func(next ports.DefinitionStore) ports.DefinitionStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, formID string, def *domain.Definition) error {
	plainText, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt definition: %w", err)
	}

	envelope := domain.DefaultDefinition()
	envelope.CanvasSize = def.CanvasSize
	envelope.Zoom = def.Zoom
	envelope.Components = []*domain.Component{{
		ID:   envelopeID,
		Kind: EnvelopeKind,
		Properties: map[string]any{
			ciphertextProp: base64.StdEncoding.EncodeToString(ciphertext),
		},
	}}
	return m.next.Save(ctx, formID, &envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, formID string) (*domain.Definition, error) {
	envelope, err := m.next.Load(ctx, formID)
	if err != nil {
		return nil, err
	}

	if len(envelope.Components) != 1 || envelope.Components[0].Kind != EnvelopeKind {
		return nil, fmt.Errorf("form %s: %w", formID, ErrNotEncrypted)
	}
	encoded, ok := envelope.Components[0].Properties[ciphertextProp].(string)
	if !ok {
		return nil, fmt.Errorf("form %s: %w", formID, ErrNotEncrypted)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt form %s: %w", formID, err)
	}

	def, err := domain.DecodeDefinition(plainText)
	if err != nil {
		return nil, fmt.Errorf("failed to decode decrypted form %s: %w", formID, err)
	}
	return &def, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, formID string) error {
	return m.next.Delete(ctx, formID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
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
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/beapsec/beap-core/internal/crypto"
	"github.com/beapsec/beap-core/internal/identity"
	"github.com/beapsec/beap-core/internal/logger"
)

// identityFileStore persists the identity private key encrypted at rest in a
// single JSON file. The on-disk scheme follows the keychain:
//
//	KEK = Argon2id(passphrase, salt)
//	file = { salt, GetEncryptedDEK(DEK, KEK), EncryptData(privateKey, DEK) }
//
// Without the passphrase the file is random noise.
type identityFileStore struct {
	path       string
	passphrase string
	keychain   crypto.KeyChainService
	logger     *logger.Logger
}

// identityFile is the serialized form of the encrypted identity record.
type identityFile struct {
	Version      int       `json:"version"`
	Salt         string    `json:"salt"`         // base64
	EncryptedDEK string    `json:"encryptedDek"` // base64, nonce ‖ ciphertext
	EncryptedKey string    `json:"encryptedKey"` // base64, keychain EncryptData blob
	CreatedAt    time.Time `json:"createdAt"`
}

// identityPayload is the JSON value sealed inside EncryptedKey.
type identityPayload struct {
	PrivateKey string `json:"privateKey"` // base64 raw X25519 private key
}

const identityFileVersion = 1

// NewIdentityFileStore constructs an [identity.Store] writing to path,
// protected by the given passphrase.
func NewIdentityFileStore(path, passphrase string, keychain crypto.KeyChainService, log *logger.Logger) identity.Store {
	log.Debug().Str("path", path).Msg("creating identity file store")
	return &identityFileStore{
		path:       path,
		passphrase: passphrase,
		keychain:   keychain,
		logger:     log,
	}
}

// LoadPrivateKey implements [identity.Store].
func (s *identityFileStore) LoadPrivateKey(_ context.Context) ([]byte, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, identity.ErrNoStoredIdentity
		}
		return nil, fmt.Errorf("read identity file: %w", err)
	}

	var file identityFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode identity file: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(file.Salt)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}
	encryptedDEK, err := base64.StdEncoding.DecodeString(file.EncryptedDEK)
	if err != nil {
		return nil, fmt.Errorf("decode encrypted DEK: %w", err)
	}

	kek := s.keychain.GenerateKEK(s.passphrase, salt)
	dek, err := s.keychain.DecryptDEK(encryptedDEK, kek)
	if err != nil {
		return nil, fmt.Errorf("unwrap DEK: %w", err)
	}

	var payload identityPayload
	if err := s.keychain.DecryptData(file.EncryptedKey, dek, &payload); err != nil {
		return nil, fmt.Errorf("decrypt identity: %w", err)
	}

	priv, err := base64.StdEncoding.DecodeString(payload.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}

	return priv, nil
}

// SavePrivateKey implements [identity.Store]. The file is written atomically
// (temp file + rename) so a crash mid-write can never leave a truncated
// identity on disk.
func (s *identityFileStore) SavePrivateKey(_ context.Context, privateKey []byte) error {
	salt, err := s.keychain.GenerateEncryptionSalt()
	if err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	dek, err := s.keychain.GenerateDEK()
	if err != nil {
		return fmt.Errorf("generate DEK: %w", err)
	}

	kek := s.keychain.GenerateKEK(s.passphrase, salt)
	encryptedDEK, err := s.keychain.GetEncryptedDEK(dek, kek)
	if err != nil {
		return fmt.Errorf("wrap DEK: %w", err)
	}

	payload := identityPayload{PrivateKey: base64.StdEncoding.EncodeToString(privateKey)}
	encryptedKey, err := s.keychain.EncryptData(payload, dek)
	if err != nil {
		return fmt.Errorf("encrypt identity: %w", err)
	}

	file := identityFile{
		Version:      identityFileVersion,
		Salt:         base64.StdEncoding.EncodeToString(salt),
		EncryptedDEK: base64.StdEncoding.EncodeToString(encryptedDEK),
		EncryptedKey: encryptedKey,
		CreatedAt:    time.Now().UTC(),
	}

	raw, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode identity file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create identity dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write identity file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace identity file: %w", err)
	}

	s.logger.Debug().Str("path", s.path).Msg("persisted encrypted identity")
	return nil
}

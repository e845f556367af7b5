package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/scopedb/internal/crypto/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// MasterKeyLoader resolves the process master key from its configured source.
type MasterKeyLoader interface {
	// Load returns the master key. When keyURI is empty, encoded is treated as
	// the base64 master key itself; otherwise encoded is a KMS-wrapped
	// ciphertext unwrapped through the keeper at keyURI.
	Load(ctx context.Context, encoded, keyURI string) (*cryptoDomain.MasterKey, error)
}

// kmsMasterKeyLoader implements MasterKeyLoader using gocloud.dev/secrets.
type kmsMasterKeyLoader struct{}

// NewMasterKeyLoader creates a new MasterKeyLoader instance.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func NewMasterKeyLoader() MasterKeyLoader {
	return &kmsMasterKeyLoader{}
}

// Load resolves the master key, unwrapping through the KMS keeper when a key
// URI is configured.
func (k *kmsMasterKeyLoader) Load(ctx context.Context, encoded, keyURI string) (*cryptoDomain.MasterKey, error) {
	if keyURI == "" {
		return cryptoDomain.DecodeMasterKey(encoded)
	}

	if encoded == "" {
		return nil, cryptoDomain.ErrMasterKeyNotSet
	}
	wrapped, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrInvalidMasterKeyEncoding, err)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer keeper.Close()

	key, err := keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap master key: %w", err)
	}
	if len(key) != cryptoDomain.KeySize {
		cryptoDomain.Zero(key)
		return nil, fmt.Errorf(
			"%w: unwrapped master key must be %d bytes, got %d",
			cryptoDomain.ErrInvalidKeySize, cryptoDomain.KeySize, len(key),
		)
	}

	return &cryptoDomain.MasterKey{Key: key}, nil
}

// Package domain defines the core cryptographic domain types for envelope
// encryption: the process master key, supported algorithms, and their errors.
package domain

import (
	"encoding/base64"
	"fmt"
)

// MasterKey is the root key material of the envelope encryption hierarchy.
//
// Exactly one master key is active per process. It is used only to wrap and
// unwrap per-secret data encryption keys (DEKs) and is never persisted by this
// system: it is sourced at process start from the environment or unwrapped via
// an external KMS. Rotation happens out-of-band by re-wrapping DEKs.
type MasterKey struct {
	Key []byte
}

// DecodeMasterKey decodes a base64-encoded master key and validates its size.
func DecodeMasterKey(encoded string) (*MasterKey, error) {
	if encoded == "" {
		return nil, ErrMasterKeyNotSet
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMasterKeyEncoding, err)
	}
	if len(key) != KeySize {
		Zero(key)
		return nil, fmt.Errorf("%w: master key must be %d bytes, got %d", ErrInvalidKeySize, KeySize, len(key))
	}

	return &MasterKey{Key: key}, nil
}

// Encoded returns the base64 representation of the master key, suitable for
// storing in an external secret store or environment variable.
func (m *MasterKey) Encoded() string {
	return base64.StdEncoding.EncodeToString(m.Key)
}

// Close zeroes the key material. The master key is unusable afterwards.
func (m *MasterKey) Close() {
	Zero(m.Key)
	m.Key = nil
}

// Package service provides cryptographic services for envelope encryption.
// Implements AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305) and the
// master-key/DEK envelope used to protect per-app secrets.
package service

import (
	cryptoDomain "github.com/allisson/scopedb/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// Envelope defines the interface for envelope encryption of app secrets.
//
// Every EncryptSecret call generates a fresh DEK and fresh nonces, so
// encrypting the same plaintext twice yields unlinkable ciphertexts. Both
// returned blobs are self-contained: a random nonce prefix followed by the
// AEAD ciphertext with its authentication tag.
type Envelope interface {
	// GenerateDEK returns a fresh random 32-byte data encryption key.
	GenerateDEK() ([]byte, error)

	// EncryptSecret encrypts plaintext under a fresh DEK and wraps the DEK
	// under the service's master key.
	EncryptSecret(plaintext string) (encryptedSecret, encryptedDEK []byte, err error)

	// EncryptSecretWith behaves like EncryptSecret but wraps the DEK under the
	// provided master key instead of the service's own.
	EncryptSecretWith(masterKey *cryptoDomain.MasterKey, plaintext string) (encryptedSecret, encryptedDEK []byte, err error)

	// DecryptSecret unwraps the DEK with the master key and decrypts the
	// secret. Fails closed with ErrDecryptionFailed on any tampering, wrong
	// key, or truncated input.
	DecryptSecret(encryptedSecret, encryptedDEK []byte) (string, error)
}

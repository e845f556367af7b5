package service

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/scopedb/internal/crypto/domain"
)

// EnvelopeService implements the Envelope interface for two-tier envelope
// encryption of app secrets.
//
// Each secret is encrypted under its own fresh data encryption key (DEK), and
// the DEK is wrapped under the process master key. Rotating the master key
// only re-wraps small DEKs, never bulk data, and a compromised DEK exposes a
// single secret without affecting the master key.
type EnvelopeService struct {
	aeadManager AEADManager
	masterKey   *cryptoDomain.MasterKey
	algorithm   cryptoDomain.Algorithm
}

// NewEnvelopeService creates an EnvelopeService bound to the process master key.
func NewEnvelopeService(
	aeadManager AEADManager,
	masterKey *cryptoDomain.MasterKey,
	algorithm cryptoDomain.Algorithm,
) (*EnvelopeService, error) {
	if masterKey == nil || len(masterKey.Key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	return &EnvelopeService{
		aeadManager: aeadManager,
		masterKey:   masterKey,
		algorithm:   algorithm,
	}, nil
}

// GenerateMasterKey returns a fresh cryptographically random 32-byte master
// key. The caller owns the key material and is responsible for storing it in
// an external secret store.
func GenerateMasterKey() (*cryptoDomain.MasterKey, error) {
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}
	return &cryptoDomain.MasterKey{Key: key}, nil
}

// GenerateDEK returns a fresh random 32-byte data encryption key.
// DEKs are never reused across secrets and never persisted unwrapped.
func (e *EnvelopeService) GenerateDEK() ([]byte, error) {
	dek := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(dek); err != nil {
		return nil, fmt.Errorf("failed to generate DEK: %w", err)
	}
	return dek, nil
}

// EncryptSecret encrypts plaintext under a fresh DEK and wraps the DEK under
// the service's master key. Both returned blobs carry their own random nonce
// as a prefix.
func (e *EnvelopeService) EncryptSecret(plaintext string) (encryptedSecret, encryptedDEK []byte, err error) {
	return e.EncryptSecretWith(e.masterKey, plaintext)
}

// EncryptSecretWith behaves like EncryptSecret but wraps the DEK under the
// provided master key. Used during out-of-band master key rotation.
func (e *EnvelopeService) EncryptSecretWith(
	masterKey *cryptoDomain.MasterKey,
	plaintext string,
) (encryptedSecret, encryptedDEK []byte, err error) {
	if masterKey == nil || len(masterKey.Key) != cryptoDomain.KeySize {
		return nil, nil, cryptoDomain.ErrInvalidKeySize
	}

	dek, err := e.GenerateDEK()
	if err != nil {
		return nil, nil, err
	}
	defer cryptoDomain.Zero(dek)

	// Encrypt the secret under the DEK
	dekCipher, err := e.aeadManager.CreateCipher(dek, e.algorithm)
	if err != nil {
		return nil, nil, err
	}
	ciphertext, nonce, err := dekCipher.Encrypt([]byte(plaintext), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encrypt secret: %w", err)
	}
	encryptedSecret = sealWithNonce(nonce, ciphertext)

	// Wrap the DEK under the master key
	masterCipher, err := e.aeadManager.CreateCipher(masterKey.Key, e.algorithm)
	if err != nil {
		return nil, nil, err
	}
	wrapped, wrapNonce, err := masterCipher.Encrypt(dek, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to wrap DEK: %w", err)
	}
	encryptedDEK = sealWithNonce(wrapNonce, wrapped)

	return encryptedSecret, encryptedDEK, nil
}

// DecryptSecret unwraps the DEK using the master key, then decrypts the
// secret using the recovered DEK. Any authentication failure, wrong key, or
// truncated input fails closed.
func (e *EnvelopeService) DecryptSecret(encryptedSecret, encryptedDEK []byte) (string, error) {
	dekNonce, wrappedDEK, err := splitNonce(encryptedDEK)
	if err != nil {
		return "", err
	}
	secretNonce, ciphertext, err := splitNonce(encryptedSecret)
	if err != nil {
		return "", err
	}

	masterCipher, err := e.aeadManager.CreateCipher(e.masterKey.Key, e.algorithm)
	if err != nil {
		return "", err
	}
	dek, err := masterCipher.Decrypt(wrappedDEK, dekNonce, nil)
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}
	defer cryptoDomain.Zero(dek)

	dekCipher, err := e.aeadManager.CreateCipher(dek, e.algorithm)
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}
	plaintext, err := dekCipher.Decrypt(ciphertext, secretNonce, nil)
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}

	return string(plaintext), nil
}

// sealWithNonce prefixes a ciphertext with its nonce, producing a single
// self-contained blob.
func sealWithNonce(nonce, ciphertext []byte) []byte {
	blob := make([]byte, 0, len(nonce)+len(ciphertext))
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)
	return blob
}

// splitNonce separates the nonce prefix from a sealed blob.
func splitNonce(blob []byte) (nonce, ciphertext []byte, err error) {
	if len(blob) < cryptoDomain.NonceSize {
		return nil, nil, cryptoDomain.ErrCiphertextTooShort
	}
	return blob[:cryptoDomain.NonceSize], blob[cryptoDomain.NonceSize:], nil
}

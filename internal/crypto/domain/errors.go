package domain

import (
	"github.com/allisson/scopedb/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors to
// provide context for cryptographic failures. Decryption always fails closed:
// ambiguous or tampered input produces ErrDecryptionFailed, never plaintext.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrCiphertextTooShort indicates an encrypted blob is shorter than one nonce
	// and therefore cannot contain a valid ciphertext.
	ErrCiphertextTooShort = errors.Wrap(errors.ErrInvalidInput, "ciphertext too short")

	// ErrDecryptionFailed indicates a decryption operation failed.
	//
	// This can occur due to a wrong key, a tampered ciphertext (authentication
	// failure), or corrupted data. The specific cause is not disclosed to
	// prevent information leakage.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrMasterKeyNotSet indicates no master key was configured for the process.
	ErrMasterKeyNotSet = errors.Wrap(errors.ErrInvalidInput, "master key not set")

	// ErrInvalidMasterKeyEncoding indicates the configured master key is not valid base64.
	ErrInvalidMasterKeyEncoding = errors.Wrap(errors.ErrInvalidInput, "invalid master key encoding")
)

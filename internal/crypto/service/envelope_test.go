package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/scopedb/internal/crypto/domain"
)

func newTestEnvelope(t *testing.T, algorithm cryptoDomain.Algorithm) (*EnvelopeService, *cryptoDomain.MasterKey) {
	t.Helper()
	masterKey, err := GenerateMasterKey()
	require.NoError(t, err)
	envelope, err := NewEnvelopeService(NewAEADManager(), masterKey, algorithm)
	require.NoError(t, err)
	return envelope, masterKey
}

// TestEnvelopeService_RoundTrip tests encrypt/decrypt round trips for both algorithms.
func TestEnvelopeService_RoundTrip(t *testing.T) {
	algorithms := []cryptoDomain.Algorithm{cryptoDomain.AESGCM, cryptoDomain.ChaCha20}

	for _, algorithm := range algorithms {
		t.Run(string(algorithm), func(t *testing.T) {
			envelope, _ := newTestEnvelope(t, algorithm)

			plaintexts := []string{
				"hello",
				"",
				"with unicode: héllo wörld 日本語",
				strings.Repeat("x", 4*1024*1024),
			}

			for _, plaintext := range plaintexts {
				encryptedSecret, encryptedDEK, err := envelope.EncryptSecret(plaintext)
				require.NoError(t, err)

				decrypted, err := envelope.DecryptSecret(encryptedSecret, encryptedDEK)
				require.NoError(t, err)
				assert.Equal(t, plaintext, decrypted)
			}
		})
	}
}

// TestEnvelopeService_Freshness tests that repeated encryption never reuses DEKs or nonces.
func TestEnvelopeService_Freshness(t *testing.T) {
	envelope, _ := newTestEnvelope(t, cryptoDomain.AESGCM)

	secret1, dek1, err := envelope.EncryptSecret("same plaintext")
	require.NoError(t, err)
	secret2, dek2, err := envelope.EncryptSecret("same plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, secret1, secret2)
	assert.NotEqual(t, dek1, dek2)
}

// TestEnvelopeService_FailsClosed tests that tampering and truncation always deny.
func TestEnvelopeService_FailsClosed(t *testing.T) {
	envelope, _ := newTestEnvelope(t, cryptoDomain.AESGCM)

	encryptedSecret, encryptedDEK, err := envelope.EncryptSecret("top secret")
	require.NoError(t, err)

	t.Run("TamperedSecret", func(t *testing.T) {
		tampered := make([]byte, len(encryptedSecret))
		copy(tampered, encryptedSecret)
		tampered[len(tampered)-1] ^= 0xff

		_, err := envelope.DecryptSecret(tampered, encryptedDEK)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("TamperedDEK", func(t *testing.T) {
		tampered := make([]byte, len(encryptedDEK))
		copy(tampered, encryptedDEK)
		tampered[len(tampered)-1] ^= 0xff

		_, err := envelope.DecryptSecret(encryptedSecret, tampered)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("TruncatedBlob", func(t *testing.T) {
		_, err := envelope.DecryptSecret(encryptedSecret[:cryptoDomain.NonceSize-1], encryptedDEK)
		assert.ErrorIs(t, err, cryptoDomain.ErrCiphertextTooShort)

		_, err = envelope.DecryptSecret(encryptedSecret, []byte{0x01})
		assert.ErrorIs(t, err, cryptoDomain.ErrCiphertextTooShort)
	})

	t.Run("WrongMasterKey", func(t *testing.T) {
		otherEnvelope, _ := newTestEnvelope(t, cryptoDomain.AESGCM)

		_, err := otherEnvelope.DecryptSecret(encryptedSecret, encryptedDEK)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})
}

// TestEnvelopeService_EncryptSecretWith tests wrapping under an explicit master key.
func TestEnvelopeService_EncryptSecretWith(t *testing.T) {
	envelope, masterKey := newTestEnvelope(t, cryptoDomain.ChaCha20)

	t.Run("SameKeyRoundTrips", func(t *testing.T) {
		encryptedSecret, encryptedDEK, err := envelope.EncryptSecretWith(masterKey, "payload")
		require.NoError(t, err)

		decrypted, err := envelope.DecryptSecret(encryptedSecret, encryptedDEK)
		require.NoError(t, err)
		assert.Equal(t, "payload", decrypted)
	})

	t.Run("InvalidMasterKey", func(t *testing.T) {
		badKey := &cryptoDomain.MasterKey{Key: []byte("too short")}
		_, _, err := envelope.EncryptSecretWith(badKey, "payload")
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}

// TestNewEnvelopeService tests constructor validation.
func TestNewEnvelopeService(t *testing.T) {
	t.Run("NilMasterKey", func(t *testing.T) {
		_, err := NewEnvelopeService(NewAEADManager(), nil, cryptoDomain.AESGCM)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})

	t.Run("UnsupportedAlgorithm", func(t *testing.T) {
		masterKey, err := GenerateMasterKey()
		require.NoError(t, err)
		envelope, err := NewEnvelopeService(NewAEADManager(), masterKey, cryptoDomain.Algorithm("ROT13"))
		require.NoError(t, err)

		_, _, err = envelope.EncryptSecret("payload")
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
	})
}

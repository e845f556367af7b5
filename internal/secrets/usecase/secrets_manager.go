// Package usecase implements the app secret lifecycle: issue, verify, rotate.
// Secrets are envelope-encrypted at rest and compared in constant time, and a
// record that cannot be decrypted verifies as a non-match rather than leaking
// the underlying crypto error to the caller.
package usecase

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"time"

	cryptoDomain "github.com/allisson/scopedb/internal/crypto/domain"
	cryptoService "github.com/allisson/scopedb/internal/crypto/service"
	apperrors "github.com/allisson/scopedb/internal/errors"
	"github.com/allisson/scopedb/internal/metrics"
	secretsDomain "github.com/allisson/scopedb/internal/secrets/domain"
)

// secretsManager implements the Manager interface.
type secretsManager struct {
	repo      SecretRepository
	envelope  cryptoService.Envelope
	algorithm cryptoDomain.Algorithm
	security  metrics.SecurityMetrics
	logger    *slog.Logger
}

// NewSecretsManager creates a new secrets manager instance.
func NewSecretsManager(
	repo SecretRepository,
	envelope cryptoService.Envelope,
	algorithm cryptoDomain.Algorithm,
	security metrics.SecurityMetrics,
	logger *slog.Logger,
) Manager {
	return &secretsManager{
		repo:      repo,
		envelope:  envelope,
		algorithm: algorithm,
		security:  security,
		logger:    logger,
	}
}

// Store encrypts and persists a secret for an app, replacing any existing
// record and incrementing its rotation count.
func (s *secretsManager) Store(ctx context.Context, appID, secret string) error {
	now := time.Now().UTC()
	record := &secretsDomain.AppSecret{
		AppID:     appID,
		Algorithm: s.algorithm,
		CreatedAt: now,
		UpdatedAt: now,
	}

	existing, err := s.repo.Get(ctx, appID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if existing != nil {
		record.RotationCount = existing.RotationCount + 1
		record.CreatedAt = existing.CreatedAt
	}

	encryptedSecret, encryptedDEK, err := s.envelope.EncryptSecret(secret)
	if err != nil {
		return err
	}
	record.EncryptedSecret = encryptedSecret
	record.EncryptedDEK = encryptedDEK

	return s.repo.Upsert(ctx, record)
}

// Exists reports whether a secret record exists for an app.
func (s *secretsManager) Exists(ctx context.Context, appID string) (bool, error) {
	return s.repo.Exists(ctx, appID)
}

// Get decrypts and returns the live secret for trusted internal callers.
func (s *secretsManager) Get(ctx context.Context, appID string) (string, error) {
	record, err := s.repo.Get(ctx, appID)
	if err != nil {
		return "", err
	}

	secret, err := s.envelope.DecryptSecret(record.EncryptedSecret, record.EncryptedDEK)
	if err != nil {
		return "", err
	}
	return secret, nil
}

// Verify compares a candidate secret against the stored one in constant time.
// A missing record, a mismatch, or a record that fails to decrypt all yield
// false without an error; the raw crypto failure never reaches the caller.
func (s *secretsManager) Verify(ctx context.Context, appID, candidate string) (bool, error) {
	record, err := s.repo.Get(ctx, appID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	secret, err := s.envelope.DecryptSecret(record.EncryptedSecret, record.EncryptedDEK)
	if err != nil {
		// Corrupt record or foreign master key: treat as non-match, surface
		// through logs and metrics so operators can tell tampering from typos.
		s.security.RecordDecryptFailure(ctx, appID)
		s.logger.Error("app secret decryption failed during verification",
			slog.String("app_id", appID),
			slog.Any("error", err),
		)
		return false, nil
	}

	return subtle.ConstantTimeCompare([]byte(secret), []byte(candidate)) == 1, nil
}

// Rotate generates a new random secret and stores it, superseding the old
// record. Verification against the superseded secret fails from this point on.
func (s *secretsManager) Rotate(ctx context.Context, appID string) (string, error) {
	secret, err := generateSecret()
	if err != nil {
		return "", err
	}

	if err := s.Store(ctx, appID, secret); err != nil {
		return "", err
	}
	return secret, nil
}

// generateSecret creates a cryptographically secure 32-byte random secret,
// base64-encoded for transport.
func generateSecret() (string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", apperrors.Wrap(err, "failed to generate random secret")
	}
	return base64.URLEncoding.EncodeToString(randomBytes), nil
}

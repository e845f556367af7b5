package usecase

import (
	"context"

	secretsDomain "github.com/allisson/scopedb/internal/secrets/domain"
)

// SecretRepository defines the persistence operations needed by the manager.
type SecretRepository interface {
	// Get retrieves the live secret record for an app.
	Get(ctx context.Context, appID string) (*secretsDomain.AppSecret, error)

	// Exists reports whether a secret record exists for an app.
	Exists(ctx context.Context, appID string) (bool, error)

	// Upsert stores the record, replacing any previous one for the same app.
	Upsert(ctx context.Context, secret *secretsDomain.AppSecret) error
}

// Manager defines the lifecycle operations for per-app credentials.
type Manager interface {
	// Store encrypts and persists a secret for an app. First store starts the
	// rotation count at zero; subsequent stores replace the record and
	// increment it.
	Store(ctx context.Context, appID, secret string) error

	// Exists reports whether a secret record exists for an app.
	Exists(ctx context.Context, appID string) (bool, error)

	// Get decrypts and returns the live secret. Trusted internal callers only;
	// never exposed over an external API.
	Get(ctx context.Context, appID string) (string, error)

	// Verify compares a candidate against the live secret. Returns false (not
	// an error) when no record exists, the candidate mismatches, or the record
	// cannot be decrypted.
	Verify(ctx context.Context, appID, candidate string) (bool, error)

	// Rotate generates a new random secret, stores it superseding the old one,
	// and returns the new value. The only time a rotated secret is exposed in
	// plaintext.
	Rotate(ctx context.Context, appID string) (string, error)
}

// Package domain defines the core domain models for app credential management.
// Each app has exactly one live encrypted secret record, replaced in place on
// rotation with a monotonically increasing rotation count.
package domain

import (
	"time"

	cryptoDomain "github.com/allisson/scopedb/internal/crypto/domain"
)

// AppSecret is the durable, envelope-encrypted credential record for one app.
type AppSecret struct {
	// AppID is the owning app identifier and the record's primary key.
	AppID string `bson:"_id"`
	// EncryptedSecret is the secret ciphertext (nonce-prefixed, tag appended).
	EncryptedSecret []byte `bson:"encrypted_secret"`
	// EncryptedDEK is the per-secret data key wrapped by the master key.
	EncryptedDEK []byte `bson:"encrypted_dek"`
	// Algorithm records the AEAD construction used for this record.
	Algorithm cryptoDomain.Algorithm `bson:"algorithm"`
	// RotationCount increases by one every time the secret is replaced.
	RotationCount int `bson:"rotation_count"`
	// CreatedAt is the UTC timestamp of first issuance, preserved across rotations.
	CreatedAt time.Time `bson:"created_at"`
	// UpdatedAt is the UTC timestamp of the last store or rotation.
	UpdatedAt time.Time `bson:"updated_at"`
}

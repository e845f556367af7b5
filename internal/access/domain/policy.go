// Package domain defines the authorization domain models for scoped data
// access: per-app declared policies, registration outcomes, and the typed
// rejections the engine produces.
//
// A policy declares which app ids an app may read data from (read scopes) and
// the single app id stamped on everything it writes (write scope). Scope
// checks are case-sensitive exact string matches with no wildcarding.
package domain

import (
	"slices"
	"time"

	validation "github.com/jellydator/validation"

	appvalidation "github.com/allisson/scopedb/internal/validation"
)

// AppConfig is the plain registration object handed over by the
// app-registration collaborator. ReadScopes and WriteScope are optional: a
// nil ReadScopes defaults to the app's own id, while an explicitly empty
// slice declares an app that can read nothing. The shape is trusted once
// handed to the engine; only the values are validated.
type AppConfig struct {
	AppID      string
	ReadScopes []string
	WriteScope string
}

// AccessPolicy is the validated, registered authorization policy for one app.
// It is held in memory as the source of truth for authorization decisions and
// rebuilt from persisted registrations on restart.
type AccessPolicy struct {
	AppID      string
	ReadScopes []string
	WriteScope string
}

// NewAccessPolicy validates a registration config once and resolves its
// defaults into an explicit policy: a nil read scope list becomes the app's
// own id, duplicates are removed preserving order, and an empty write scope
// becomes the app id itself.
func NewAccessPolicy(cfg AppConfig) (*AccessPolicy, error) {
	if err := validation.Validate(cfg.AppID, appvalidation.AppID...); err != nil {
		return nil, appvalidation.WrapValidationError(err)
	}

	readScopes := cfg.ReadScopes
	if readScopes == nil {
		readScopes = []string{cfg.AppID}
	}
	readScopes = dedupe(readScopes)
	for _, scope := range readScopes {
		if err := validation.Validate(scope, appvalidation.AppID...); err != nil {
			return nil, appvalidation.WrapValidationError(err)
		}
	}

	writeScope := cfg.WriteScope
	if writeScope == "" {
		writeScope = cfg.AppID
	}
	if err := validation.Validate(writeScope, appvalidation.AppID...); err != nil {
		return nil, appvalidation.WrapValidationError(err)
	}

	return &AccessPolicy{
		AppID:      cfg.AppID,
		ReadScopes: readScopes,
		WriteScope: writeScope,
	}, nil
}

// AllowsRead reports whether the policy permits reading data owned by scope.
func (p *AccessPolicy) AllowsRead(scope string) bool {
	return slices.Contains(p.ReadScopes, scope)
}

// dedupe removes duplicate scopes while preserving first-seen order.
func dedupe(scopes []string) []string {
	seen := make(map[string]struct{}, len(scopes))
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Outcome describes how a registration completed.
type Outcome string

const (
	// RegisteredDurable means the registration was persisted and is in memory.
	RegisteredDurable Outcome = "durable"

	// RegisteredDegraded means the persistence write failed and the
	// registration exists only in the current process. The app remains
	// queryable; the degradation is logged and counted, never swallowed.
	RegisteredDegraded Outcome = "degraded"
)

// Registration is the result of registering an app.
type Registration struct {
	Policy  *AccessPolicy
	Outcome Outcome
	// Secret carries the plaintext credential when one was issued during this
	// registration; empty when the app already had one.
	Secret string
}

// RegistrationRecord is the persisted form of a registration, used to rebuild
// the in-memory policy registry on restart.
type RegistrationRecord struct {
	AppID      string    `bson:"_id"`
	ReadScopes []string  `bson:"read_scopes"`
	WriteScope string    `bson:"write_scope"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

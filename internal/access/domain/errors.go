package domain

import (
	"fmt"

	"github.com/allisson/scopedb/internal/errors"
)

// Typed rejections produced by the scoped access engine. Each kind is
// distinct so the calling layer can map them to its own transport codes:
// a missing credential is distinguishable from a wrong one, and a scope
// rejection always names the scope that was refused.
var (
	// ErrAppNotRegistered indicates no policy is registered for the app.
	ErrAppNotRegistered = errors.Wrap(errors.ErrNotFound, "app not registered")

	// ErrCredentialRequired indicates the app has an issued secret but the
	// caller supplied no credential.
	ErrCredentialRequired = errors.Wrap(errors.ErrUnauthorized, "app credential required")

	// ErrCredentialInvalid indicates the supplied credential does not match
	// the app's live secret.
	ErrCredentialInvalid = errors.Wrap(errors.ErrUnauthorized, "invalid app credential")
)

// ScopeError is returned when a requested scope exceeds the registered
// policy. It always names the rejected scope; a request is never silently
// narrowed.
type ScopeError struct {
	AppID string
	Scope string
}

// Error implements the error interface.
func (e *ScopeError) Error() string {
	return fmt.Sprintf("app %q is not authorized to read from %q", e.AppID, e.Scope)
}

// Unwrap makes ScopeError match errors.ErrForbidden.
func (e *ScopeError) Unwrap() error {
	return errors.ErrForbidden
}

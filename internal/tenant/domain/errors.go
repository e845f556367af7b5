package domain

import (
	"github.com/allisson/scopedb/internal/errors"
)

var (
	// ErrTenantNotFound indicates no tenant document exists for the id.
	ErrTenantNotFound = errors.Wrap(errors.ErrNotFound, "tenant not found")

	// ErrTenantInvalid indicates a malformed tenant identifier.
	ErrTenantInvalid = errors.Wrap(errors.ErrInvalidInput, "invalid tenant id")

	// ErrTenantRequired indicates a tenant is required by policy but was not
	// provided and auto-creation is off. A client error, not a server error.
	ErrTenantRequired = errors.Wrap(errors.ErrInvalidInput, "tenant required but missing")

	// ErrTenantCreationVetoed indicates a before-create hook refused the
	// creation. Nothing was persisted.
	ErrTenantCreationVetoed = errors.Wrap(errors.ErrForbidden, "tenant creation vetoed")
)

package domain

import (
	"github.com/allisson/scopedb/internal/errors"
)

var (
	// ErrSecretNotFound indicates no secret record exists for the app.
	ErrSecretNotFound = errors.Wrap(errors.ErrNotFound, "app secret not found")
)

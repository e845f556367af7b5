// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/scopedb/internal/errors"
)

var (
	// slugRegex matches lowercase identifiers used for app ids and tenant ids.
	slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Slug validates lowercase identifier format for app ids and tenant ids
var Slug = validation.NewStringRuleWithError(
	func(s string) bool {
		return slugRegex.MatchString(s)
	},
	validation.NewError(
		"validation_slug_format",
		"must contain only lowercase letters, digits, underscores, and hyphens",
	),
)

// TenantID validates a normalized tenant identifier: non-empty, slug-shaped,
// at most 100 characters
var TenantID = []validation.Rule{
	validation.Required.Error("tenant id is required"),
	NotBlank,
	validation.Length(1, 100),
	Slug,
}

// AppID validates an app identifier
var AppID = []validation.Rule{
	validation.Required.Error("app id is required"),
	NotBlank,
	validation.Length(1, 64),
	Slug,
}

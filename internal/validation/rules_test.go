package validation

import (
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/scopedb/internal/errors"
)

// TestAppID tests app identifier validation.
func TestAppID(t *testing.T) {
	valid := []string{"orders", "a", "app-1", "app_one", "0ldtimer"}
	for _, value := range valid {
		assert.NoError(t, validation.Validate(value, AppID...), "app id %q", value)
	}

	invalid := []string{"", "  ", "Orders", "has space", "-leading", "_leading", "ünïcode"}
	for _, value := range invalid {
		assert.Error(t, validation.Validate(value, AppID...), "app id %q", value)
	}
}

// TestTenantID tests tenant identifier validation.
func TestTenantID(t *testing.T) {
	assert.NoError(t, validation.Validate("tenant-1", TenantID...))
	assert.Error(t, validation.Validate("Tenant-1", TenantID...))

	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, validation.Validate(string(long), TenantID...))
}

// TestWrapValidationError tests error wrapping behavior.
func TestWrapValidationError(t *testing.T) {
	assert.Nil(t, WrapValidationError(nil))

	err := WrapValidationError(validation.Validate("", AppID...))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/scopedb/internal/errors"
)

// TestNewAccessPolicy tests policy validation and default resolution.
func TestNewAccessPolicy(t *testing.T) {
	t.Run("DefaultsToSelf", func(t *testing.T) {
		policy, err := NewAccessPolicy(AppConfig{AppID: "orders"})
		require.NoError(t, err)
		assert.Equal(t, []string{"orders"}, policy.ReadScopes)
		assert.Equal(t, "orders", policy.WriteScope)
	})

	t.Run("ExplicitlyEmptyReadScopesStayEmpty", func(t *testing.T) {
		policy, err := NewAccessPolicy(AppConfig{AppID: "orders", ReadScopes: []string{}})
		require.NoError(t, err)
		assert.Empty(t, policy.ReadScopes)
		assert.False(t, policy.AllowsRead("orders"))
	})

	t.Run("DuplicateScopesCollapse", func(t *testing.T) {
		policy, err := NewAccessPolicy(AppConfig{
			AppID:      "orders",
			ReadScopes: []string{"orders", "billing", "orders"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"orders", "billing"}, policy.ReadScopes)
	})

	t.Run("ScopeChecksAreCaseSensitive", func(t *testing.T) {
		policy, err := NewAccessPolicy(AppConfig{
			AppID:      "orders",
			ReadScopes: []string{"orders", "billing"},
		})
		require.NoError(t, err)
		assert.True(t, policy.AllowsRead("billing"))
		assert.False(t, policy.AllowsRead("Billing"))
	})

	t.Run("InvalidAppID", func(t *testing.T) {
		for _, appID := range []string{"", "Has Upper", "spaced out", "-leading"} {
			_, err := NewAccessPolicy(AppConfig{AppID: appID})
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "app id %q", appID)
		}
	})

	t.Run("InvalidReadScope", func(t *testing.T) {
		_, err := NewAccessPolicy(AppConfig{
			AppID:      "orders",
			ReadScopes: []string{"orders", "Not Valid"},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("InvalidWriteScope", func(t *testing.T) {
		_, err := NewAccessPolicy(AppConfig{AppID: "orders", WriteScope: "Not Valid"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

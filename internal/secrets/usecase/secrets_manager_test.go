package usecase

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/scopedb/internal/crypto/domain"
	cryptoService "github.com/allisson/scopedb/internal/crypto/service"
	"github.com/allisson/scopedb/internal/metrics"
	secretsDomain "github.com/allisson/scopedb/internal/secrets/domain"
)

// memorySecretRepository is an in-memory SecretRepository for tests.
type memorySecretRepository struct {
	mu      sync.Mutex
	records map[string]*secretsDomain.AppSecret
}

func newMemorySecretRepository() *memorySecretRepository {
	return &memorySecretRepository{records: make(map[string]*secretsDomain.AppSecret)}
}

func (r *memorySecretRepository) Get(ctx context.Context, appID string) (*secretsDomain.AppSecret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[appID]
	if !ok {
		return nil, secretsDomain.ErrSecretNotFound
	}
	clone := *record
	return &clone, nil
}

func (r *memorySecretRepository) Exists(ctx context.Context, appID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.records[appID]
	return ok, nil
}

func (r *memorySecretRepository) Upsert(ctx context.Context, secret *secretsDomain.AppSecret) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *secret
	r.records[secret.AppID] = &clone
	return nil
}

func newTestManager(t *testing.T) (Manager, *memorySecretRepository) {
	t.Helper()
	masterKey, err := cryptoService.GenerateMasterKey()
	require.NoError(t, err)
	envelope, err := cryptoService.NewEnvelopeService(
		cryptoService.NewAEADManager(),
		masterKey,
		cryptoDomain.AESGCM,
	)
	require.NoError(t, err)

	repo := newMemorySecretRepository()
	manager := NewSecretsManager(
		repo,
		envelope,
		cryptoDomain.AESGCM,
		metrics.NewNoOpSecurityMetrics(),
		slog.Default(),
	)
	return manager, repo
}

// TestSecretsManager_StoreAndGet tests storage and retrieval of app secrets.
func TestSecretsManager_StoreAndGet(t *testing.T) {
	ctx := context.Background()
	manager, repo := newTestManager(t)

	t.Run("StoreEncryptsAtRest", func(t *testing.T) {
		err := manager.Store(ctx, "orders", "super-secret")
		require.NoError(t, err)

		record, err := repo.Get(ctx, "orders")
		require.NoError(t, err)
		assert.NotContains(t, string(record.EncryptedSecret), "super-secret")
		assert.Equal(t, 0, record.RotationCount)
	})

	t.Run("GetDecrypts", func(t *testing.T) {
		secret, err := manager.Get(ctx, "orders")
		require.NoError(t, err)
		assert.Equal(t, "super-secret", secret)
	})

	t.Run("StoreAgainIncrementsRotationCount", func(t *testing.T) {
		err := manager.Store(ctx, "orders", "new-secret")
		require.NoError(t, err)

		record, err := repo.Get(ctx, "orders")
		require.NoError(t, err)
		assert.Equal(t, 1, record.RotationCount)

		secret, err := manager.Get(ctx, "orders")
		require.NoError(t, err)
		assert.Equal(t, "new-secret", secret)
	})

	t.Run("ExistsReflectsStorage", func(t *testing.T) {
		exists, err := manager.Exists(ctx, "orders")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = manager.Exists(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

// TestSecretsManager_Verify tests credential verification semantics.
func TestSecretsManager_Verify(t *testing.T) {
	ctx := context.Background()
	manager, repo := newTestManager(t)

	require.NoError(t, manager.Store(ctx, "billing", "correct-horse"))

	t.Run("Match", func(t *testing.T) {
		valid, err := manager.Verify(ctx, "billing", "correct-horse")
		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("Mismatch", func(t *testing.T) {
		valid, err := manager.Verify(ctx, "billing", "battery-staple")
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("MissingRecordIsFalseNotError", func(t *testing.T) {
		valid, err := manager.Verify(ctx, "unknown", "anything")
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("CorruptRecordIsFalseNotError", func(t *testing.T) {
		record, err := repo.Get(ctx, "billing")
		require.NoError(t, err)
		record.EncryptedSecret[len(record.EncryptedSecret)-1] ^= 0xff
		require.NoError(t, repo.Upsert(ctx, record))

		valid, err := manager.Verify(ctx, "billing", "correct-horse")
		require.NoError(t, err)
		assert.False(t, valid)
	})
}

// TestSecretsManager_Rotate tests that rotation supersedes the old secret.
func TestSecretsManager_Rotate(t *testing.T) {
	ctx := context.Background()
	manager, repo := newTestManager(t)

	first, err := manager.Rotate(ctx, "inventory")
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := manager.Rotate(ctx, "inventory")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	valid, err := manager.Verify(ctx, "inventory", first)
	require.NoError(t, err)
	assert.False(t, valid, "superseded secret must stop verifying")

	valid, err = manager.Verify(ctx, "inventory", second)
	require.NoError(t, err)
	assert.True(t, valid)

	record, err := repo.Get(ctx, "inventory")
	require.NoError(t, err)
	assert.Equal(t, 1, record.RotationCount)
}

package usecase

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	accessDomain "github.com/allisson/scopedb/internal/access/domain"
	cryptoDomain "github.com/allisson/scopedb/internal/crypto/domain"
	cryptoService "github.com/allisson/scopedb/internal/crypto/service"
	"github.com/allisson/scopedb/internal/metrics"
	secretsDomain "github.com/allisson/scopedb/internal/secrets/domain"
	secretsUsecase "github.com/allisson/scopedb/internal/secrets/usecase"
)

// flowSecretRepository is an in-memory secret store so the full
// register/authenticate/access path runs with real envelope crypto.
type flowSecretRepository struct {
	mu      sync.Mutex
	records map[string]*secretsDomain.AppSecret
}

func (r *flowSecretRepository) Get(ctx context.Context, appID string) (*secretsDomain.AppSecret, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[appID]
	if !ok {
		return nil, secretsDomain.ErrSecretNotFound
	}
	clone := *record
	return &clone, nil
}

func (r *flowSecretRepository) Exists(ctx context.Context, appID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.records[appID]
	return ok, nil
}

func (r *flowSecretRepository) Upsert(ctx context.Context, secret *secretsDomain.AppSecret) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *secret
	r.records[secret.AppID] = &clone
	return nil
}

// TestEngine_EndToEndFlow runs the whole path with real envelope encryption:
// registration issues a secret, the secret authenticates, and the resulting
// handle enforces the declared scopes against stored data.
func TestEngine_EndToEndFlow(t *testing.T) {
	ctx := context.Background()

	masterKey, err := cryptoService.GenerateMasterKey()
	require.NoError(t, err)
	envelope, err := cryptoService.NewEnvelopeService(
		cryptoService.NewAEADManager(),
		masterKey,
		cryptoDomain.AESGCM,
	)
	require.NoError(t, err)

	secretsManager := secretsUsecase.NewSecretsManager(
		&flowSecretRepository{records: make(map[string]*secretsDomain.AppSecret)},
		envelope,
		cryptoDomain.AESGCM,
		metrics.NewNoOpSecurityMetrics(),
		slog.Default(),
	)

	data := newMemoryDataRepository()
	registry := NewPolicyRegistry()
	regRepo := newMemoryRegistrationRepository()
	engine := NewEngine(registry, secretsManager, regRepo, data, metrics.NewNoOpSecurityMetrics(), slog.Default())

	// Register two apps; analytics may read from orders.
	ordersReg, err := engine.RegisterApp(ctx, accessDomain.AppConfig{AppID: "orders"})
	require.NoError(t, err)
	require.NotEmpty(t, ordersReg.Secret)
	assert.Equal(t, accessDomain.RegisteredDurable, ordersReg.Outcome)

	analyticsReg, err := engine.RegisterApp(ctx, accessDomain.AppConfig{
		AppID:      "analytics",
		ReadScopes: []string{"analytics", "orders"},
	})
	require.NoError(t, err)

	// A wrong credential is rejected; the issued one authenticates.
	_, err = engine.GetScopedDB(ctx, "orders", "wrong-token", nil)
	assert.ErrorIs(t, err, accessDomain.ErrCredentialInvalid)

	ordersDB, err := engine.GetScopedDB(ctx, "orders", ordersReg.Secret, nil)
	require.NoError(t, err)

	// orders writes its own data.
	require.NoError(t, ordersDB.Collection("events").InsertOne(ctx, bson.M{"kind": "created"}))

	// analytics reads orders' data through the foreign-prefixed name.
	analyticsDB, err := engine.GetScopedDB(ctx, "analytics", analyticsReg.Secret, nil)
	require.NoError(t, err)

	docs, err := analyticsDB.Collection("orders_events").Find(ctx, bson.M{})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "created", docs[0]["kind"])

	// orders cannot read analytics' data; the rejection names the scope.
	_, err = ordersDB.Collection("analytics_events").Find(ctx, bson.M{})
	var scopeErr *accessDomain.ScopeError
	require.ErrorAs(t, err, &scopeErr)
	assert.Equal(t, "analytics", scopeErr.Scope)

	// Rotation invalidates the old credential.
	newSecret, err := secretsManager.Rotate(ctx, "orders")
	require.NoError(t, err)

	_, err = engine.GetScopedDB(ctx, "orders", ordersReg.Secret, nil)
	assert.ErrorIs(t, err, accessDomain.ErrCredentialInvalid)

	_, err = engine.GetScopedDB(ctx, "orders", newSecret, nil)
	require.NoError(t, err)

	// A fresh engine rebuilt from persistence resolves the same policies.
	rebuiltRegistry := NewPolicyRegistry()
	rebuilt := NewEngine(rebuiltRegistry, secretsManager, regRepo, data, metrics.NewNoOpSecurityMetrics(), slog.Default())
	require.NoError(t, rebuilt.ReloadPolicies(ctx))

	db, err := rebuilt.GetScopedDB(ctx, "analytics", analyticsReg.Secret, []string{"orders"})
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, db.ReadScopes())
}

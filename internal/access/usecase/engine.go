package usecase

import (
	"context"
	"log/slog"
	"time"

	accessDomain "github.com/allisson/scopedb/internal/access/domain"
	"github.com/allisson/scopedb/internal/errors"
	"github.com/allisson/scopedb/internal/metrics"
	secretsUsecase "github.com/allisson/scopedb/internal/secrets/usecase"
)

// engine implements Engine. It owns the policy registry and coordinates the
// secrets manager for credential checks. Authorization decisions are answered
// from memory; persistence is only consulted at registration and startup.
type engine struct {
	registry *PolicyRegistry
	secrets  secretsUsecase.Manager
	regRepo  RegistrationRepository
	data     DataRepository
	security metrics.SecurityMetrics
	logger   *slog.Logger
}

// NewEngine creates the scoped access engine.
func NewEngine(
	registry *PolicyRegistry,
	secrets secretsUsecase.Manager,
	regRepo RegistrationRepository,
	data DataRepository,
	security metrics.SecurityMetrics,
	logger *slog.Logger,
) Engine {
	return &engine{
		registry: registry,
		secrets:  secrets,
		regRepo:  regRepo,
		data:     data,
		security: security,
		logger:   logger,
	}
}

// RegisterApp validates the config, installs the policy in memory, issues a
// credential when the app has none, and persists the registration. Memory is
// updated before persistence is attempted: a storage outage degrades
// durability, never availability. Re-registering an app replaces its policy
// and keeps its existing credential.
func (e *engine) RegisterApp(
	ctx context.Context,
	cfg accessDomain.AppConfig,
) (*accessDomain.Registration, error) {
	policy, err := accessDomain.NewAccessPolicy(cfg)
	if err != nil {
		return nil, err
	}

	e.registry.Register(policy)

	result := &accessDomain.Registration{
		Policy:  policy,
		Outcome: accessDomain.RegisteredDurable,
	}

	hasSecret, err := e.secrets.Exists(ctx, policy.AppID)
	switch {
	case err != nil:
		e.degrade(ctx, policy.AppID, result, "checking app secret failed", err)
	case !hasSecret:
		secret, err := e.secrets.Rotate(ctx, policy.AppID)
		if err != nil {
			e.degrade(ctx, policy.AppID, result, "issuing app secret failed", err)
		} else {
			result.Secret = secret
		}
	}

	record := &accessDomain.RegistrationRecord{
		AppID:      policy.AppID,
		ReadScopes: policy.ReadScopes,
		WriteScope: policy.WriteScope,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := e.regRepo.Upsert(ctx, record); err != nil {
		e.degrade(ctx, policy.AppID, result, "persisting app registration failed", err)
	}

	return result, nil
}

// degrade marks a registration as in-memory only and makes the failure loud.
func (e *engine) degrade(
	ctx context.Context,
	appID string,
	result *accessDomain.Registration,
	msg string,
	err error,
) {
	result.Outcome = accessDomain.RegisteredDegraded
	e.security.RecordDegradedRegistration(ctx, appID)
	e.logger.Error("app registration degraded to in-memory only",
		"app_id", appID,
		"reason", msg,
		"error", err,
	)
}

// GetScopedDB authenticates the app and returns a handle confined to the
// requested scopes. Apps with an issued secret must present it; apps that
// never had one are granted access without a credential, which is logged as
// the anomaly it is. Requested scopes must be a subset of the registered
// ones; an excess scope fails the whole request naming the offending scope.
func (e *engine) GetScopedDB(
	ctx context.Context,
	appID, appToken string,
	readScopes []string,
) (*ScopedDB, error) {
	policy, ok := e.registry.Get(appID)
	if !ok {
		return nil, accessDomain.ErrAppNotRegistered
	}

	hasSecret, err := e.secrets.Exists(ctx, appID)
	if err != nil {
		// Fail closed: an unverifiable credential check never grants access.
		return nil, errors.Wrap(errors.ErrUnavailable, "checking app secret failed")
	}
	if hasSecret {
		if appToken == "" {
			return nil, accessDomain.ErrCredentialRequired
		}
		valid, err := e.secrets.Verify(ctx, appID, appToken)
		if err != nil {
			return nil, errors.Wrap(errors.ErrUnavailable, "verifying app credential failed")
		}
		if !valid {
			return nil, accessDomain.ErrCredentialInvalid
		}
	} else {
		e.logger.Warn("granting scoped access without credential, app has no secret registered",
			"app_id", appID,
		)
	}

	effective := policy.ReadScopes
	if readScopes != nil {
		effective = make([]string, 0, len(readScopes))
		seen := make(map[string]struct{}, len(readScopes))
		for _, scope := range readScopes {
			if !policy.AllowsRead(scope) {
				e.security.RecordScopeDenial(ctx, appID, scope)
				return nil, &accessDomain.ScopeError{AppID: appID, Scope: scope}
			}
			if _, ok := seen[scope]; ok {
				continue
			}
			seen[scope] = struct{}{}
			effective = append(effective, scope)
		}
	}

	return &ScopedDB{
		data:       e.data,
		registry:   e.registry,
		appID:      appID,
		readScopes: effective,
		writeScope: policy.WriteScope,
	}, nil
}

// ReloadPolicies rebuilds the registry from persisted registrations. Records
// that no longer validate are skipped with a log line rather than blocking
// the rest of the rebuild.
func (e *engine) ReloadPolicies(ctx context.Context) error {
	records, err := e.regRepo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "listing app registrations failed")
	}

	for _, record := range records {
		policy, err := accessDomain.NewAccessPolicy(accessDomain.AppConfig{
			AppID:      record.AppID,
			ReadScopes: record.ReadScopes,
			WriteScope: record.WriteScope,
		})
		if err != nil {
			e.logger.Error("skipping invalid persisted registration",
				"app_id", record.AppID,
				"error", err,
			)
			continue
		}
		e.registry.Register(policy)
	}

	e.logger.Info("access policies reloaded", "count", e.registry.Len())
	return nil
}

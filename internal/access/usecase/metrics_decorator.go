package usecase

import (
	"context"
	"time"

	accessDomain "github.com/allisson/scopedb/internal/access/domain"
	"github.com/allisson/scopedb/internal/metrics"
)

// engineWithMetrics wraps an Engine and records operation metrics.
type engineWithMetrics struct {
	engine  Engine
	metrics metrics.BusinessMetrics
}

// NewEngineWithMetrics creates an Engine decorated with metrics recording.
func NewEngineWithMetrics(engine Engine, businessMetrics metrics.BusinessMetrics) Engine {
	return &engineWithMetrics{
		engine:  engine,
		metrics: businessMetrics,
	}
}

// RegisterApp delegates and records metrics.
func (e *engineWithMetrics) RegisterApp(
	ctx context.Context,
	cfg accessDomain.AppConfig,
) (*accessDomain.Registration, error) {
	start := time.Now()
	result, err := e.engine.RegisterApp(ctx, cfg)

	status := "success"
	if err != nil {
		status = "error"
	}
	e.metrics.RecordOperation(ctx, "access", "register_app", status)
	e.metrics.RecordDuration(ctx, "access", "register_app", time.Since(start), status)

	return result, err
}

// GetScopedDB delegates and records metrics.
func (e *engineWithMetrics) GetScopedDB(
	ctx context.Context,
	appID, appToken string,
	readScopes []string,
) (*ScopedDB, error) {
	start := time.Now()
	db, err := e.engine.GetScopedDB(ctx, appID, appToken, readScopes)

	status := "success"
	if err != nil {
		status = "error"
	}
	e.metrics.RecordOperation(ctx, "access", "get_scoped_db", status)
	e.metrics.RecordDuration(ctx, "access", "get_scoped_db", time.Since(start), status)

	return db, err
}

// ReloadPolicies delegates and records metrics.
func (e *engineWithMetrics) ReloadPolicies(ctx context.Context) error {
	start := time.Now()
	err := e.engine.ReloadPolicies(ctx)

	status := "success"
	if err != nil {
		status = "error"
	}
	e.metrics.RecordOperation(ctx, "access", "reload_policies", status)
	e.metrics.RecordDuration(ctx, "access", "reload_policies", time.Since(start), status)

	return err
}

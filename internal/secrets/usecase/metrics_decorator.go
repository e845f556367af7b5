package usecase

import (
	"context"
	"time"

	"github.com/allisson/scopedb/internal/metrics"
)

// managerWithMetrics decorates Manager with metrics instrumentation.
type managerWithMetrics struct {
	next    Manager
	metrics metrics.BusinessMetrics
}

// NewManagerWithMetrics wraps a Manager with metrics recording.
func NewManagerWithMetrics(manager Manager, m metrics.BusinessMetrics) Manager {
	return &managerWithMetrics{
		next:    manager,
		metrics: m,
	}
}

// Store records metrics for secret store operations.
func (s *managerWithMetrics) Store(ctx context.Context, appID, secret string) error {
	start := time.Now()
	err := s.next.Store(ctx, appID, secret)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secrets", "secret_store", status)
	s.metrics.RecordDuration(ctx, "secrets", "secret_store", time.Since(start), status)

	return err
}

// Exists records metrics for secret existence checks.
func (s *managerWithMetrics) Exists(ctx context.Context, appID string) (bool, error) {
	start := time.Now()
	exists, err := s.next.Exists(ctx, appID)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secrets", "secret_exists", status)
	s.metrics.RecordDuration(ctx, "secrets", "secret_exists", time.Since(start), status)

	return exists, err
}

// Get records metrics for secret retrieval operations.
func (s *managerWithMetrics) Get(ctx context.Context, appID string) (string, error) {
	start := time.Now()
	secret, err := s.next.Get(ctx, appID)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secrets", "secret_get", status)
	s.metrics.RecordDuration(ctx, "secrets", "secret_get", time.Since(start), status)

	return secret, err
}

// Verify records metrics for secret verification operations. A clean
// non-match still counts as success; only infrastructure failures are errors.
func (s *managerWithMetrics) Verify(ctx context.Context, appID, candidate string) (bool, error) {
	start := time.Now()
	ok, err := s.next.Verify(ctx, appID, candidate)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secrets", "secret_verify", status)
	s.metrics.RecordDuration(ctx, "secrets", "secret_verify", time.Since(start), status)

	return ok, err
}

// Rotate records metrics for secret rotation operations.
func (s *managerWithMetrics) Rotate(ctx context.Context, appID string) (string, error) {
	start := time.Now()
	secret, err := s.next.Rotate(ctx, appID)

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secrets", "secret_rotate", status)
	s.metrics.RecordDuration(ctx, "secrets", "secret_rotate", time.Since(start), status)

	return secret, err
}

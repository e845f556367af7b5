package usecase

import (
	"context"
	"time"

	"github.com/allisson/scopedb/internal/metrics"
	tenantDomain "github.com/allisson/scopedb/internal/tenant/domain"
)

// managerWithMetrics wraps a Manager and records operation metrics.
type managerWithMetrics struct {
	manager Manager
	metrics metrics.BusinessMetrics
}

// NewManagerWithMetrics creates a Manager decorated with metrics recording.
func NewManagerWithMetrics(manager Manager, businessMetrics metrics.BusinessMetrics) Manager {
	return &managerWithMetrics{
		manager: manager,
		metrics: businessMetrics,
	}
}

func (m *managerWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.metrics.RecordOperation(ctx, "tenant", operation, status)
	m.metrics.RecordDuration(ctx, "tenant", operation, time.Since(start), status)
}

// EnsureExists delegates and records metrics.
func (m *managerWithMetrics) EnsureExists(ctx context.Context, appSlug, rawTenantID string) (*tenantDomain.Tenant, error) {
	start := time.Now()
	tenant, err := m.manager.EnsureExists(ctx, appSlug, rawTenantID)
	m.record(ctx, "tenant_ensure", start, err)
	return tenant, err
}

// Get delegates and records metrics.
func (m *managerWithMetrics) Get(ctx context.Context, appSlug, rawTenantID string) (*tenantDomain.Tenant, error) {
	start := time.Now()
	tenant, err := m.manager.Get(ctx, appSlug, rawTenantID)
	m.record(ctx, "tenant_get", start, err)
	return tenant, err
}

// Create delegates and records metrics.
func (m *managerWithMetrics) Create(
	ctx context.Context,
	appSlug, rawTenantID string,
	metadata map[string]any,
) (*tenantDomain.Tenant, error) {
	start := time.Now()
	tenant, err := m.manager.Create(ctx, appSlug, rawTenantID, metadata)
	m.record(ctx, "tenant_create", start, err)
	return tenant, err
}

// Validate delegates and records metrics.
func (m *managerWithMetrics) Validate(ctx context.Context, appSlug, rawTenantID string) (bool, error) {
	start := time.Now()
	valid, err := m.manager.Validate(ctx, appSlug, rawTenantID)
	m.record(ctx, "tenant_validate", start, err)
	return valid, err
}

// Resolve delegates and records metrics.
func (m *managerWithMetrics) Resolve(ctx context.Context, appSlug, rawTenantID string) (*tenantDomain.Tenant, error) {
	start := time.Now()
	tenant, err := m.manager.Resolve(ctx, appSlug, rawTenantID)
	m.record(ctx, "tenant_resolve", start, err)
	return tenant, err
}

// UpdateMetadata delegates and records metrics.
func (m *managerWithMetrics) UpdateMetadata(
	ctx context.Context,
	appSlug, rawTenantID string,
	metadata map[string]any,
) (*tenantDomain.Tenant, error) {
	start := time.Now()
	tenant, err := m.manager.UpdateMetadata(ctx, appSlug, rawTenantID, metadata)
	m.record(ctx, "tenant_update_metadata", start, err)
	return tenant, err
}

// List delegates and records metrics.
func (m *managerWithMetrics) List(ctx context.Context, appSlug string) ([]*tenantDomain.Tenant, error) {
	start := time.Now()
	tenants, err := m.manager.List(ctx, appSlug)
	m.record(ctx, "tenant_list", start, err)
	return tenants, err
}

// InvalidateCache forwards cache invalidation.
func (m *managerWithMetrics) InvalidateCache(appSlug, rawTenantID string) {
	m.manager.InvalidateCache(appSlug, rawTenantID)
}

// OnBeforeCreate forwards hook registration.
func (m *managerWithMetrics) OnBeforeCreate(hook tenantDomain.BeforeCreateHook) {
	m.manager.OnBeforeCreate(hook)
}

// OnAfterCreate forwards hook registration.
func (m *managerWithMetrics) OnAfterCreate(hook tenantDomain.AfterCreateHook) {
	m.manager.OnAfterCreate(hook)
}

// OnValidate forwards hook registration.
func (m *managerWithMetrics) OnValidate(hook tenantDomain.ValidateHook) {
	m.manager.OnValidate(hook)
}

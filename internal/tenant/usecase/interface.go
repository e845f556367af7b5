package usecase

import (
	"context"

	tenantDomain "github.com/allisson/scopedb/internal/tenant/domain"
)

// TenantRepository defines the persistence operations needed by the manager.
type TenantRepository interface {
	// Insert stores a new tenant document. Returns ErrConflict when a
	// concurrent creator already inserted the same (appSlug, tenantID).
	Insert(ctx context.Context, tenant *tenantDomain.Tenant) error

	// Get retrieves the tenant document for (appSlug, tenantID).
	Get(ctx context.Context, appSlug, tenantID string) (*tenantDomain.Tenant, error)

	// UpdateMetadata merges entries into the tenant's metadata map and returns
	// the updated document.
	UpdateMetadata(ctx context.Context, appSlug, tenantID string, metadata map[string]any) (*tenantDomain.Tenant, error)

	// List returns all tenants of one app.
	List(ctx context.Context, appSlug string) ([]*tenantDomain.Tenant, error)
}

// Manager defines the tenant provisioning and validation operations. Tenant
// ids are normalized (trimmed, lowercased) by every operation before touching
// cache or storage.
type Manager interface {
	// EnsureExists returns the tenant, creating it when absent. Creation is
	// idempotent under races: a concurrent creator losing the storage-level
	// uniqueness race re-reads and returns the winner's document.
	EnsureExists(ctx context.Context, appSlug, rawTenantID string) (*tenantDomain.Tenant, error)

	// Get retrieves the tenant document without creating it.
	Get(ctx context.Context, appSlug, rawTenantID string) (*tenantDomain.Tenant, error)

	// Create provisions the tenant with initial metadata. Behaves like
	// EnsureExists when the tenant already exists.
	Create(ctx context.Context, appSlug, rawTenantID string, metadata map[string]any) (*tenantDomain.Tenant, error)

	// Validate checks the tenant against registered validate hooks, degrading
	// to the default check (exists and active) when a hook fails.
	Validate(ctx context.Context, appSlug, rawTenantID string) (bool, error)

	// Resolve applies the manager's tenant policy to a raw id: an empty id is
	// rejected when a tenant is required, tolerated otherwise; a present id is
	// provisioned or looked up depending on the auto-create setting.
	Resolve(ctx context.Context, appSlug, rawTenantID string) (*tenantDomain.Tenant, error)

	// UpdateMetadata merges entries into the tenant's metadata.
	UpdateMetadata(ctx context.Context, appSlug, rawTenantID string, metadata map[string]any) (*tenantDomain.Tenant, error)

	// List returns all tenants of one app.
	List(ctx context.Context, appSlug string) ([]*tenantDomain.Tenant, error)

	// InvalidateCache drops the membership cache entry for the tenant so the
	// next operation resolves against storage.
	InvalidateCache(appSlug, rawTenantID string)

	// OnBeforeCreate appends a hook run before every tenant insertion, in
	// registration order. A hook may veto or augment the document.
	OnBeforeCreate(hook tenantDomain.BeforeCreateHook)

	// OnAfterCreate appends a best-effort hook run after every insertion.
	OnAfterCreate(hook tenantDomain.AfterCreateHook)

	// OnValidate appends a custom validation hook.
	OnValidate(hook tenantDomain.ValidateHook)
}

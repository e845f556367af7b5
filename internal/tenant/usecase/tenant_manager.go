package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/scopedb/internal/errors"
	tenantDomain "github.com/allisson/scopedb/internal/tenant/domain"
)

// Config controls the manager's tenant policy.
type Config struct {
	// AutoCreate provisions unknown tenants on first reference.
	AutoCreate bool

	// Required rejects requests that carry no tenant id.
	Required bool
}

// tenantManager implements Manager. The membership cache only remembers that
// a tenant exists, to skip repeated negative lookups; the document itself is
// always re-fetched from storage, and the storage-level uniqueness constraint
// is the real race-safety mechanism. The mutex guards the cache and the hook
// slices, nothing else.
type tenantManager struct {
	repo   TenantRepository
	cfg    Config
	logger *slog.Logger

	mu            sync.Mutex
	known         map[string]struct{}
	beforeCreate  []tenantDomain.BeforeCreateHook
	afterCreate   []tenantDomain.AfterCreateHook
	validateHooks []tenantDomain.ValidateHook
}

// NewManager creates a tenant manager.
func NewManager(repo TenantRepository, cfg Config, logger *slog.Logger) Manager {
	return &tenantManager{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
		known:  make(map[string]struct{}),
	}
}

func cacheKey(appSlug, tenantID string) string {
	return appSlug + "/" + tenantID
}

func (m *tenantManager) remember(appSlug, tenantID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.known[cacheKey(appSlug, tenantID)] = struct{}{}
}

func (m *tenantManager) forget(appSlug, tenantID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.known, cacheKey(appSlug, tenantID))
}

func (m *tenantManager) isKnown(appSlug, tenantID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.known[cacheKey(appSlug, tenantID)]
	return ok
}

// OnBeforeCreate appends a before-create hook.
func (m *tenantManager) OnBeforeCreate(hook tenantDomain.BeforeCreateHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beforeCreate = append(m.beforeCreate, hook)
}

// OnAfterCreate appends an after-create hook.
func (m *tenantManager) OnAfterCreate(hook tenantDomain.AfterCreateHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.afterCreate = append(m.afterCreate, hook)
}

// OnValidate appends a validation hook.
func (m *tenantManager) OnValidate(hook tenantDomain.ValidateHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validateHooks = append(m.validateHooks, hook)
}

// Get retrieves the tenant document without creating it.
func (m *tenantManager) Get(ctx context.Context, appSlug, rawTenantID string) (*tenantDomain.Tenant, error) {
	tenantID, err := tenantDomain.NormalizeTenantID(rawTenantID)
	if err != nil {
		return nil, err
	}

	tenant, err := m.repo.Get(ctx, appSlug, tenantID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			m.forget(appSlug, tenantID)
		}
		return nil, err
	}

	m.remember(appSlug, tenantID)
	return tenant, nil
}

// EnsureExists returns the tenant, creating it when absent.
func (m *tenantManager) EnsureExists(ctx context.Context, appSlug, rawTenantID string) (*tenantDomain.Tenant, error) {
	return m.Create(ctx, appSlug, rawTenantID, nil)
}

// Create provisions the tenant with initial metadata, returning the existing
// document when one is already stored.
func (m *tenantManager) Create(
	ctx context.Context,
	appSlug, rawTenantID string,
	metadata map[string]any,
) (*tenantDomain.Tenant, error) {
	tenantID, err := tenantDomain.NormalizeTenantID(rawTenantID)
	if err != nil {
		return nil, err
	}

	// On a cache hit the creation machinery is skipped entirely; the document
	// itself is still re-fetched so content is never served stale.
	if m.isKnown(appSlug, tenantID) {
		tenant, err := m.repo.Get(ctx, appSlug, tenantID)
		if err == nil {
			return tenant, nil
		}
		if !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
		m.forget(appSlug, tenantID)
	}

	tenant, err := m.repo.Get(ctx, appSlug, tenantID)
	if err == nil {
		m.remember(appSlug, tenantID)
		return tenant, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	if metadata == nil {
		metadata = make(map[string]any)
	}
	candidate := &tenantDomain.Tenant{
		ID:        uuid.Must(uuid.NewV7()).String(),
		TenantID:  tenantID,
		AppSlug:   appSlug,
		Status:    tenantDomain.StatusActive,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, hook := range m.snapshotBeforeCreate() {
		proceed, err := hook(ctx, candidate)
		if err != nil {
			return nil, errors.Wrap(err, "tenant before-create hook failed")
		}
		if !proceed {
			return nil, tenantDomain.ErrTenantCreationVetoed
		}
	}

	if err := m.repo.Insert(ctx, candidate); err != nil {
		if errors.Is(err, errors.ErrConflict) {
			// A concurrent creator won; return the winner's document.
			return m.Get(ctx, appSlug, tenantID)
		}
		return nil, err
	}

	m.remember(appSlug, tenantID)

	for _, hook := range m.snapshotAfterCreate() {
		if err := hook(ctx, candidate); err != nil {
			m.logger.Error("tenant after-create hook failed",
				"app_slug", appSlug,
				"tenant_id", tenantID,
				"error", err,
			)
		}
	}

	return candidate, nil
}

// Validate checks the tenant. Registered hooks run in order and all must
// approve; a hook error degrades the check to the default validation.
func (m *tenantManager) Validate(ctx context.Context, appSlug, rawTenantID string) (bool, error) {
	tenantID, err := tenantDomain.NormalizeTenantID(rawTenantID)
	if err != nil {
		return false, err
	}

	tenant, err := m.repo.Get(ctx, appSlug, tenantID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			m.forget(appSlug, tenantID)
			return false, nil
		}
		return false, err
	}
	m.remember(appSlug, tenantID)

	hooks := m.snapshotValidate()
	if len(hooks) == 0 {
		return tenant.Status == tenantDomain.StatusActive, nil
	}

	for _, hook := range hooks {
		valid, err := hook(ctx, tenant)
		if err != nil {
			m.logger.Warn("tenant validate hook failed, using default validation",
				"app_slug", appSlug,
				"tenant_id", tenantID,
				"error", err,
			)
			return tenant.Status == tenantDomain.StatusActive, nil
		}
		if !valid {
			return false, nil
		}
	}
	return true, nil
}

// Resolve applies the tenant policy to a raw id.
func (m *tenantManager) Resolve(ctx context.Context, appSlug, rawTenantID string) (*tenantDomain.Tenant, error) {
	if rawTenantID == "" {
		if m.cfg.Required {
			return nil, tenantDomain.ErrTenantRequired
		}
		return nil, nil
	}
	if m.cfg.AutoCreate {
		return m.EnsureExists(ctx, appSlug, rawTenantID)
	}
	tenant, err := m.Get(ctx, appSlug, rawTenantID)
	if err != nil && errors.Is(err, errors.ErrNotFound) && m.cfg.Required {
		return nil, tenantDomain.ErrTenantRequired
	}
	return tenant, err
}

// UpdateMetadata merges entries into the tenant's metadata. The membership
// cache is invalidated on every write to the backing record.
func (m *tenantManager) UpdateMetadata(
	ctx context.Context,
	appSlug, rawTenantID string,
	metadata map[string]any,
) (*tenantDomain.Tenant, error) {
	tenantID, err := tenantDomain.NormalizeTenantID(rawTenantID)
	if err != nil {
		return nil, err
	}

	m.forget(appSlug, tenantID)
	return m.repo.UpdateMetadata(ctx, appSlug, tenantID, metadata)
}

// List returns all tenants of one app.
func (m *tenantManager) List(ctx context.Context, appSlug string) ([]*tenantDomain.Tenant, error) {
	return m.repo.List(ctx, appSlug)
}

// InvalidateCache drops the membership cache entry for the tenant. Ids that
// fail normalization were never cached, so they are ignored.
func (m *tenantManager) InvalidateCache(appSlug, rawTenantID string) {
	tenantID, err := tenantDomain.NormalizeTenantID(rawTenantID)
	if err != nil {
		return
	}
	m.forget(appSlug, tenantID)
}

func (m *tenantManager) snapshotBeforeCreate() []tenantDomain.BeforeCreateHook {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]tenantDomain.BeforeCreateHook, len(m.beforeCreate))
	copy(out, m.beforeCreate)
	return out
}

func (m *tenantManager) snapshotAfterCreate() []tenantDomain.AfterCreateHook {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]tenantDomain.AfterCreateHook, len(m.afterCreate))
	copy(out, m.afterCreate)
	return out
}

func (m *tenantManager) snapshotValidate() []tenantDomain.ValidateHook {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]tenantDomain.ValidateHook, len(m.validateHooks))
	copy(out, m.validateHooks)
	return out
}

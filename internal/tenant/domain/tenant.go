// Package domain defines the tenant partitioning models. Tenants are a
// second isolation dimension inside one app's own data, orthogonal to the
// app-level scope system.
package domain

import (
	"context"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	appvalidation "github.com/allisson/scopedb/internal/validation"
)

// Tenant statuses. Only active tenants pass default validation.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Tenant is a partition within one app's data. The (AppSlug, TenantID) pair
// is unique; a storage-level uniqueness constraint resolves concurrent
// creation races. Never hard-deleted by this subsystem.
type Tenant struct {
	ID        string         `bson:"_id"`
	TenantID  string         `bson:"tenant_id"`
	AppSlug   string         `bson:"app_slug"`
	Status    string         `bson:"status"`
	Metadata  map[string]any `bson:"metadata"`
	CreatedAt time.Time      `bson:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

// NormalizeTenantID trims and lowercases a raw tenant identifier and
// validates the result. All manager operations normalize before touching
// cache or storage so "T1" and "t1" address the same tenant.
func NormalizeTenantID(raw string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if err := validation.Validate(normalized, appvalidation.TenantID...); err != nil {
		return "", ErrTenantInvalid
	}
	return normalized, nil
}

// BeforeCreateHook runs before a tenant document is inserted. It may veto the
// creation by returning proceed=false, or augment the document by mutating
// the tenant's metadata. An error aborts the creation.
type BeforeCreateHook func(ctx context.Context, tenant *Tenant) (proceed bool, err error)

// AfterCreateHook runs after a tenant document is inserted. Best effort: a
// failure is logged and never undoes the creation.
type AfterCreateHook func(ctx context.Context, tenant *Tenant) error

// ValidateHook supplies custom tenant validation. A hook error degrades the
// check to the default validation instead of failing the request.
type ValidateHook func(ctx context.Context, tenant *Tenant) (valid bool, err error)

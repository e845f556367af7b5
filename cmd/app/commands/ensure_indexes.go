package commands

import (
	"context"
	"fmt"

	"github.com/allisson/scopedb/internal/app"
	"github.com/allisson/scopedb/internal/config"
)

// RunEnsureIndexes creates the storage indexes the isolation guarantees
// depend on, notably the unique (app_slug, tenant_id) tenant index that
// resolves concurrent provisioning races.
func RunEnsureIndexes(ctx context.Context) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	tenantRepo, err := container.TenantRepository(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize tenant repository: %w", err)
	}

	if err := tenantRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	logger.Info("indexes created")
	return nil
}

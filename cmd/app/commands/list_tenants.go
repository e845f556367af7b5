package commands

import (
	"context"
	"fmt"

	"github.com/allisson/scopedb/internal/app"
	"github.com/allisson/scopedb/internal/config"
)

// RunListTenants prints all tenants of one app.
func RunListTenants(ctx context.Context, appSlug string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	manager, err := container.TenantManager(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize tenant manager: %w", err)
	}

	tenants, err := manager.List(ctx, appSlug)
	if err != nil {
		return fmt.Errorf("failed to list tenants: %w", err)
	}

	if len(tenants) == 0 {
		fmt.Printf("no tenants found for app %q\n", appSlug)
		return nil
	}

	for _, tenant := range tenants {
		fmt.Printf("%s\t%s\tcreated=%s\n",
			tenant.TenantID,
			tenant.Status,
			tenant.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	return nil
}

package commands

import (
	"context"
	"fmt"
	"log/slog"

	accessDomain "github.com/allisson/scopedb/internal/access/domain"
	"github.com/allisson/scopedb/internal/app"
	"github.com/allisson/scopedb/internal/config"
)

// RunRegisterApp registers an app's access policy and prints its issued
// secret when one is created. The secret is shown exactly once; it cannot be
// recovered later except by rotating.
func RunRegisterApp(ctx context.Context, appID, readScopes, writeScope string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	engine, err := container.AccessEngine(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize access engine: %w", err)
	}

	// Load existing registrations first so re-registration replaces instead
	// of shadowing.
	if err := engine.ReloadPolicies(ctx); err != nil {
		return err
	}

	result, err := engine.RegisterApp(ctx, accessDomain.AppConfig{
		AppID:      appID,
		ReadScopes: splitScopes(readScopes),
		WriteScope: writeScope,
	})
	if err != nil {
		return fmt.Errorf("failed to register app: %w", err)
	}

	logger.Info("app registered",
		slog.String("app_id", result.Policy.AppID),
		slog.Any("read_scopes", result.Policy.ReadScopes),
		slog.String("write_scope", result.Policy.WriteScope),
		slog.String("outcome", string(result.Outcome)),
	)

	if result.Outcome == accessDomain.RegisteredDegraded {
		fmt.Println("# WARNING: registration was not persisted; it exists only in this process")
	}
	if result.Secret != "" {
		fmt.Println("# App secret (shown once, store it now)")
		fmt.Printf("APP_ID=%q\n", result.Policy.AppID)
		fmt.Printf("APP_SECRET=%q\n", result.Secret)
	} else {
		fmt.Println("# App already has a secret; use rotate-app-secret to replace it")
	}
	return nil
}

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/allisson/scopedb/internal/app"
	"github.com/allisson/scopedb/internal/config"
)

// RunRotateAppSecret rotates an app's secret and prints the new value. The
// old secret stops verifying immediately; callers must switch to the new one.
func RunRotateAppSecret(ctx context.Context, appID string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	manager, err := container.SecretsManager(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize secrets manager: %w", err)
	}

	secret, err := manager.Rotate(ctx, appID)
	if err != nil {
		return fmt.Errorf("failed to rotate app secret: %w", err)
	}

	logger.Info("app secret rotated", slog.String("app_id", appID))

	fmt.Println("# New app secret (shown once, store it now)")
	fmt.Printf("APP_ID=%q\n", appID)
	fmt.Printf("APP_SECRET=%q\n", secret)
	return nil
}

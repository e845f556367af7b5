// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/scopedb/cmd/app/commands"
)

var version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "scopedb",
		Usage:   "Multi-tenant scoped data access service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the metrics server and keep policies loaded",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "create-master-key",
				Usage: "Generate a new master key for envelope encryption",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "kms-key-uri",
						Aliases: []string{"k"},
						Value:   "",
						Usage:   "Wrap the key with this KMS keeper URI (e.g., gcpkms://..., base64key://...)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateMasterKey(ctx, cmd.String("kms-key-uri"))
				},
			},
			{
				Name:  "register-app",
				Usage: "Register an app's access policy and issue its secret",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "app-id",
						Aliases:  []string{"a"},
						Required: true,
						Usage:    "App identifier (lowercase slug)",
					},
					&cli.StringFlag{
						Name:    "read-scopes",
						Aliases: []string{"r"},
						Value:   "",
						Usage:   "Comma-separated app ids this app may read from (defaults to its own)",
					},
					&cli.StringFlag{
						Name:    "write-scope",
						Aliases: []string{"w"},
						Value:   "",
						Usage:   "App id stamped on writes (defaults to the app id)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRegisterApp(
						ctx,
						cmd.String("app-id"),
						cmd.String("read-scopes"),
						cmd.String("write-scope"),
					)
				},
			},
			{
				Name:  "rotate-app-secret",
				Usage: "Rotate an app's secret and print the new value",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "app-id",
						Aliases:  []string{"a"},
						Required: true,
						Usage:    "App identifier",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRotateAppSecret(ctx, cmd.String("app-id"))
				},
			},
			{
				Name:  "ensure-indexes",
				Usage: "Create the storage indexes required for isolation guarantees",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunEnsureIndexes(ctx)
				},
			},
			{
				Name:  "list-tenants",
				Usage: "List tenants of an app",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "app-slug",
						Aliases:  []string{"a"},
						Required: true,
						Usage:    "App identifier",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunListTenants(ctx, cmd.String("app-slug"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

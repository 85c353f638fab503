// Package main provides the stocksync API server: run history queries and
// on-demand run triggering.
package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/storeops/stocksync/pkg/cmd"
	"github.com/storeops/stocksync/pkg/commerce"
	"github.com/storeops/stocksync/pkg/config"
	"github.com/storeops/stocksync/pkg/log"
	"github.com/storeops/stocksync/pkg/reconcile"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "stocksync-api",
		Usage:                 "Query reconciliation runs and trigger new ones",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to a JSON config file overriding the built-in defaults",
				Sources: cli.EnvVars("STOCKSYNC_CONFIG"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (kafka, gochannel, none)",
				Value:   "none",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "commerce-api-url",
				Usage:   "Base URL of the commerce platform API",
				Value:   "https://api.bigcommerce.com",
				Sources: cli.EnvVars("COMMERCE_API_URL"),
			},
			&cli.StringFlag{
				Name:     "store-hash",
				Usage:    "Commerce platform store hash",
				Required: true,
				Sources:  cli.EnvVars("COMMERCE_STORE_HASH"),
			},
			&cli.StringFlag{
				Name:     "access-token",
				Usage:    "Commerce platform API access token",
				Required: true,
				Sources:  cli.EnvVars("COMMERCE_ACCESS_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")

			logger.InfoContext(ctx, "Initializing stocksync API")

			cfg := config.Default()

			if path := command.String("config"); path != "" {
				loaded, err := config.Load(path)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}

				cfg = loaded
			}

			store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return fmt.Errorf("failed to initialize persistence: %w", err)
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			client := commerce.NewClient(
				logger,
				command.String("commerce-api-url"),
				command.String("store-hash"),
				command.String("access-token"),
			)

			engine := reconcile.NewEngine(logger, cfg, store, client)

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
			if err != nil {
				return fmt.Errorf("failed to initialize event bus: %w", err)
			}

			if eventBus != nil {
				defer func() {
					if err := eventBus.Close(ctx); err != nil {
						logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
					}
				}()

				engine = engine.WithEventBus(eventBus)
			}

			api := NewAPI(logger, store, engine)

			return api.Start(command.Int("port"))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Package main provides the stocksync scheduler: cron-driven reconciliation
// runs serialized by a Redis run lock.
package main

import (
	"context"
	"fmt"
	"os"

	redis "github.com/redis/go-redis/v9"
	cli "github.com/urfave/cli/v3"

	"github.com/storeops/stocksync/pkg/cmd"
	"github.com/storeops/stocksync/pkg/commerce"
	"github.com/storeops/stocksync/pkg/config"
	"github.com/storeops/stocksync/pkg/log"
	"github.com/storeops/stocksync/pkg/models"
	"github.com/storeops/stocksync/pkg/reconcile"
	"github.com/storeops/stocksync/pkg/runlock"
)

func main() {
	command := &cli.Command{
		Name:                  "stocksync-scheduler",
		Usage:                 "Run scheduled stock reconciliation",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron expression for reconciliation runs",
				Value:   "0 3 * * *",
				Sources: cli.EnvVars("STOCKSYNC_SCHEDULE"),
			},
			&cli.BoolFlag{
				Name:    "live",
				Usage:   "Apply changes to the storefront (default is a dry run)",
				Sources: cli.EnvVars("STOCKSYNC_LIVE"),
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
				Name:     "redis-url",
				Usage:    "Redis connection URL for the run lock",
				Required: true,
				Sources:  cli.EnvVars("REDIS_URL"),
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

			logger := log.WithModule("stocksync-scheduler")

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

			redisOpts, err := redis.ParseURL(command.String("redis-url"))
			if err != nil {
				return fmt.Errorf("failed to parse redis URL: %w", err)
			}

			redisClient := redis.NewClient(redisOpts)
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close redis client", "error", err)
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

			lock := runlock.New(redisClient, logger, models.WorkflowName, lockTTL)

			opts := reconcile.RunOptions{DryRun: !command.Bool("live")}

			scheduler := NewScheduler(logger, engine, lock, command.String("schedule"), opts)

			return scheduler.Start(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

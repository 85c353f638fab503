// Package main provides the stocksync CLI: one-shot reconciliation runs.
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
	"github.com/storeops/stocksync/pkg/models"
	"github.com/storeops/stocksync/pkg/otelhelper"
	"github.com/storeops/stocksync/pkg/reconcile"
)

// exitBlocked is returned when a safety gate aborts a live run, so schedulers
// and alerting can tell a blocked run from a crashed one.
const exitBlocked = 2

func main() {
	command := &cli.Command{
		Name:                  "stocksync",
		Usage:                 "Reconcile supplier stock feeds with the storefront catalog",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "live",
				Usage: "Apply changes to the storefront (default is a dry run)",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Proceed past failed safety gates (use with care)",
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
				Name:     "commerce-api-url",
				Usage:    "Base URL of the commerce platform API",
				Value:    "https://api.bigcommerce.com",
				Sources:  cli.EnvVars("COMMERCE_API_URL"),
				Required: false,
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
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export run traces via OTLP",
				Sources: cli.EnvVars("STOCKSYNC_TRACING"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: runAction,
	}

	// cli.Exit errors carry their own code and are handled inside Run.
	if err := command.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAction(ctx context.Context, command *cli.Command) error {
	log.Setup(command.String("log-level"))

	logger := log.WithModule("stocksync")

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

	if command.Bool("tracing") {
		tracerProvider, err := otelhelper.InitTracer(ctx, "stocksync")
		if err != nil {
			return fmt.Errorf("failed to initialize tracer: %w", err)
		}

		defer func() {
			if err := tracerProvider.Shutdown(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
			}
		}()

		engine = engine.WithTracer(tracerProvider.Tracer("stocksync"))
	}

	opts := reconcile.RunOptions{
		DryRun: !command.Bool("live"),
		Force:  command.Bool("force"),
	}

	result, err := engine.Run(ctx, opts)
	if err != nil {
		return err
	}

	if result.Aborted && !opts.DryRun {
		return cli.Exit(fmt.Sprintf("run %s blocked: %s", result.RunID, result.AbortReason), exitBlocked)
	}

	if result.Summary != nil && result.Summary.Status == models.RunStatusPartialFailure {
		logger.WarnContext(ctx, "Run completed with item errors",
			"run_id", result.RunID, "errors", result.Summary.Metadata.Errors)
	}

	return nil
}

package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/storeops/stocksync/pkg/persistence"
	"github.com/storeops/stocksync/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	runner      web.Runner
	validate    *validator.Validate
}

func NewAPI(logger *slog.Logger, persistence persistence.Persistence, runner web.Runner) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		runner:      runner,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.logger, a.persistence, a.runner, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("stocksync API")
	})

	runs := app.Group("/runs")
	runs.Get("/", handlers.GetRuns)
	runs.Post("/", handlers.TriggerRun)
	runs.Get("/:id", handlers.GetRun)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}

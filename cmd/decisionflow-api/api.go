// Package main provides the DecisionFlow API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/decisionflow/decisionflow/pkg/engine"
	"github.com/decisionflow/decisionflow/pkg/persistence"
	"github.com/decisionflow/decisionflow/pkg/registry"
	"github.com/decisionflow/decisionflow/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	engine      *engine.Engine
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	engine *engine.Engine,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		engine:      engine,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.persistence, a.engine, a.registry, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("DecisionFlow API")
	})

	app.Get("/health", handlers.HealthCheck)
	app.Get("/node-types", handlers.GetNodeTypes)

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.SaveWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Put("/:id", handlers.SaveWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/executions", handlers.ExecuteWorkflow)

	e := app.Group("/executions")
	e.Get("/:id", handlers.GetExecution)
	e.Post("/:id/pause", handlers.PauseExecution)
	e.Post("/:id/resume", handlers.ResumeExecution)

	o := app.Group("/operations")
	o.Get("/:id", handlers.GetOperation)
	o.Post("/:id/complete", handlers.CompleteOperation)

	r := app.Group("/rulesets")
	r.Get("/", handlers.GetRuleSets)
	r.Post("/", handlers.SaveRuleSet)
	r.Get("/:id", handlers.GetRuleSet)
	r.Put("/:id", handlers.SaveRuleSet)
	r.Delete("/:id", handlers.DeleteRuleSet)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}

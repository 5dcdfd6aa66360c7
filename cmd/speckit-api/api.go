// Package main provides the Speckit API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/speckit/speckit/pkg/engine"
	"github.com/speckit/speckit/pkg/persistence"
	"github.com/speckit/speckit/pkg/session"
	"github.com/speckit/speckit/pkg/web"
)

type API struct {
	logger     *slog.Logger
	engine     *engine.Engine
	store      *session.Store
	repository persistence.SessionRepository
	validate   *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	eng *engine.Engine,
	store *session.Store,
	repository persistence.SessionRepository,
) *API {
	return &API{
		logger:     logger,
		engine:     eng,
		store:      store,
		repository: repository,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.engine, a.store, a.repository, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Speckit API")
	})

	app.Get("/workflows", handlers.ListWorkflows)

	s := app.Group("/sessions")
	s.Get("/", handlers.ListSessions)
	s.Post("/", handlers.StartSession)
	s.Get("/active", handlers.GetActiveSession)
	s.Get("/:id", handlers.GetSession)
	s.Post("/:id/advance", handlers.AdvanceSession)
	s.Post("/:id/fail", handlers.FailSession)
	s.Delete("/:id", handlers.AbortSession)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}

package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/speckit/speckit/pkg/engine"
	"github.com/speckit/speckit/pkg/persistence"
	"github.com/speckit/speckit/pkg/session"
)

type APIHandlers struct {
	engine     *engine.Engine
	store      *session.Store
	repository persistence.SessionRepository
	validator  *validator.Validate
}

func NewAPIHandlers(
	eng *engine.Engine,
	store *session.Store,
	repository persistence.SessionRepository,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		engine:     eng,
		store:      store,
		repository: repository,
		validator:  validator,
	}
}

func (h *APIHandlers) ListWorkflows(c fiber.Ctx) error {
	summaries := h.engine.ListWorkflows()

	return c.JSON(fiber.Map{
		"workflows":   summaries,
		"total_count": len(summaries),
	})
}

func (h *APIHandlers) StartSession(c fiber.Ctx) error {
	var req StartSessionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.engine.Start(c.Context(), req.Workflow, req.ContextID)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *APIHandlers) AdvanceSession(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	var req AdvanceSessionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	result, err := h.engine.Advance(c.Context(), id, req.PreviousOutput)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) ListSessions(c fiber.Ctx) error {
	sessions := h.store.List()

	return c.JSON(fiber.Map{
		"sessions":    sessions,
		"total_count": len(sessions),
	})
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	report, err := h.engine.Status(c.Context(), id)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(report)
}

// GetActiveSession reports on the most recently updated active session. A
// response with a null session means nothing is currently running.
func (h *APIHandlers) GetActiveSession(c fiber.Ctx) error {
	report, err := h.engine.Status(c.Context(), "")
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(report)
}

func (h *APIHandlers) AbortSession(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	if h.store.Get(id) == nil {
		return notFound(c, "Session not found")
	}

	if _, err := h.engine.Abort(c.Context(), id); err != nil {
		return handleEngineError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) FailSession(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Session ID is required")
	}

	var req FailSessionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.engine.Fail(c.Context(), id, req.Reason); err != nil {
		return handleEngineError(c, err)
	}

	report, err := h.engine.Status(c.Context(), id)
	if err != nil {
		return handleEngineError(c, err)
	}

	return c.JSON(report)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "Speckit API is healthy"
	httpStatus := http.StatusOK

	repositoryErr := h.repository.HealthCheck(c.Context())
	if repositoryErr != nil {
		status = "unhealthy"
		message = "Speckit API is unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	repositoryCheck := "ok"
	if repositoryErr != nil {
		repositoryCheck = repositoryErr.Error()
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/service"
	"github.com/noah-isme/sprint-connect-api/internal/utils"
)

// ProductivityHandler serves Pomodoro timers and logged study sessions.
type ProductivityHandler struct {
	service service.ProductivityService
	logger  zerolog.Logger
}

// NewProductivityHandler constructs the handler.
func NewProductivityHandler(service service.ProductivityService, logger zerolog.Logger) *ProductivityHandler {
	return &ProductivityHandler{
		service: service,
		logger:  logger.With().Str("component", "productivity_handler").Logger(),
	}
}

// RegisterPomodoro wires the /pomodoro routes.
func (h *ProductivityHandler) RegisterPomodoro(router fiber.Router) {
	router.Post("/start", h.start)
	router.Post("/:id/complete", h.complete)
	router.Get("/stats", h.stats)
	router.Get("/active", h.active)
}

// RegisterStudySessions wires the /study-sessions routes.
func (h *ProductivityHandler) RegisterStudySessions(router fiber.Router) {
	router.Post("", h.logSession)
	router.Get("", h.sessions)
}

func (h *ProductivityHandler) start(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.PomodoroStartRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}

	session, err := h.service.StartPomodoro(requestContext(c), userID, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to start pomodoro")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "pomodoro started", session)
}

func (h *ProductivityHandler) complete(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid session id")
	}

	result, err := h.service.CompletePomodoro(requestContext(c), sessionID, userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to complete pomodoro")
	}
	return utils.SendSuccess(c, "pomodoro completed", result)
}

func (h *ProductivityHandler) stats(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	stats, err := h.service.PomodoroStats(requestContext(c), userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load pomodoro stats")
	}
	return utils.SendSuccess(c, "pomodoro stats", stats)
}

func (h *ProductivityHandler) active(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	active, err := h.service.ActivePomodoro(requestContext(c), userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load active pomodoro")
	}
	return utils.SendSuccess(c, "active pomodoro", active)
}

func (h *ProductivityHandler) logSession(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.StudySessionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.LogStudySession(requestContext(c), userID, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to log study session")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "study session logged", result)
}

func (h *ProductivityHandler) sessions(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	sessions, err := h.service.StudySessions(requestContext(c), userID, limit)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list study sessions")
	}
	return utils.SendSuccess(c, "study sessions", sessions)
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/service"
	"github.com/noah-isme/sprint-connect-api/internal/utils"
)

// WellnessHandler records mood check-ins and reports trends.
type WellnessHandler struct {
	service service.WellnessService
	logger  zerolog.Logger
}

// NewWellnessHandler constructs the handler.
func NewWellnessHandler(service service.WellnessService, logger zerolog.Logger) *WellnessHandler {
	return &WellnessHandler{
		service: service,
		logger:  logger.With().Str("component", "wellness_handler").Logger(),
	}
}

// Register wires wellness routes.
func (h *WellnessHandler) Register(router fiber.Router) {
	router.Post("/checkins", h.checkin)
	router.Get("/checkins", h.history)
	router.Get("/stats", h.stats)
	router.Get("/trend", h.trend)
}

func (h *WellnessHandler) checkin(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.CheckinRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Checkin(requestContext(c), userID, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to record check-in")
	}

	status := fiber.StatusOK
	if result.FirstToday {
		status = fiber.StatusCreated
	}
	return utils.SendSuccessWithStatus(c, status, "check-in recorded", result)
}

func (h *WellnessHandler) history(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	days, err := parseQueryInt(c, "days")
	if err != nil || days < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid days")
	}

	checkins, err := h.service.History(requestContext(c), userID, days)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load check-ins")
	}
	return utils.SendSuccess(c, "check-ins retrieved", checkins)
}

func (h *WellnessHandler) stats(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	stats, err := h.service.Stats(requestContext(c), userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load wellness stats")
	}
	return utils.SendSuccess(c, "wellness stats", stats)
}

func (h *WellnessHandler) trend(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	trend, err := h.service.Trend(requestContext(c), userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to analyze wellness trend")
	}
	return utils.SendSuccess(c, "wellness trend", trend)
}

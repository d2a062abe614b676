package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/service"
	"github.com/noah-isme/sprint-connect-api/internal/utils"
)

// EventHandler manages community events and attendance.
type EventHandler struct {
	service service.EventService
	logger  zerolog.Logger
}

// NewEventHandler constructs the handler.
func NewEventHandler(service service.EventService, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger.With().Str("component", "event_handler").Logger(),
	}
}

// Register wires event routes.
func (h *EventHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Post("/:id/rsvp", h.rsvp)
	router.Post("/:id/attend", h.attend)
}

func (h *EventHandler) list(c *fiber.Ctx) error {
	upcoming, err := parseQueryBool(c, "upcoming_only")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid upcoming_only")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	events, err := h.service.List(requestContext(c), dto.EventListQuery{UpcomingOnly: upcoming, Limit: limit})
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list events")
	}
	return utils.SendSuccess(c, "events retrieved", events)
}

func (h *EventHandler) create(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.EventCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	event, err := h.service.Create(requestContext(c), userID, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create event")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "event created", event)
}

func (h *EventHandler) rsvp(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	result, err := h.service.RSVP(requestContext(c), eventID, userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to rsvp")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "rsvp confirmed", result)
}

func (h *EventHandler) attend(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	eventID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid event id")
	}

	result, err := h.service.Attend(requestContext(c), eventID, userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to record attendance")
	}
	return utils.SendSuccess(c, "attendance recorded", result)
}

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/service"
	"github.com/noah-isme/sprint-connect-api/internal/utils"
)

// PeerSupportHandler lets students ask for and offer help.
type PeerSupportHandler struct {
	service service.PeerSupportService
	logger  zerolog.Logger
}

// NewPeerSupportHandler constructs the handler.
func NewPeerSupportHandler(service service.PeerSupportService, logger zerolog.Logger) *PeerSupportHandler {
	return &PeerSupportHandler{
		service: service,
		logger:  logger.With().Str("component", "peer_support_handler").Logger(),
	}
}

// Register wires peer support routes.
func (h *PeerSupportHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Post("/:id/accept", h.accept)
	router.Post("/:id/complete", h.complete)
}

func (h *PeerSupportHandler) create(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.PeerSupportCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	request, err := h.service.Create(requestContext(c), userID, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create support request")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "support request created", request)
}

func (h *PeerSupportHandler) list(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	query := dto.PeerSupportListQuery{Scope: c.Query("scope"), Status: c.Query("status"), Limit: limit}
	requests, err := h.service.List(requestContext(c), userID, query)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list support requests")
	}
	return utils.SendSuccess(c, "support requests", requests)
}

func (h *PeerSupportHandler) accept(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request id")
	}

	request, err := h.service.Accept(requestContext(c), requestID, userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to accept support request")
	}
	return utils.SendSuccess(c, "support request accepted", request)
}

func (h *PeerSupportHandler) complete(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	requestID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request id")
	}

	result, err := h.service.Complete(requestContext(c), requestID, userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to complete support request")
	}
	return utils.SendSuccess(c, "support request completed", result)
}

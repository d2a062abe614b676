package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/service"
	"github.com/noah-isme/sprint-connect-api/internal/utils"
)

// AdminHandler exposes platform statistics, staff notifications and the
// seeding endpoint.
type AdminHandler struct {
	analytics     service.AdminAnalyticsService
	notifications service.Notifier
	seeder        service.SeedService
	logger        zerolog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(analytics service.AdminAnalyticsService, notifications service.Notifier, seeder service.SeedService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		analytics:     analytics,
		notifications: notifications,
		seeder:        seeder,
		logger:        logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register attaches the staff-only routes. Role checks are applied by the
// router.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/stats", h.stats)
	router.Post("/notifications", h.notify)
}

// RegisterSeed attaches the token-guarded seed endpoint.
func (h *AdminHandler) RegisterSeed(router fiber.Router) {
	router.Post("/seed", h.seed)
}

func (h *AdminHandler) stats(c *fiber.Ctx) error {
	summary, err := h.analytics.GetStats(requestContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to fetch platform stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load stats")
	}

	if summary.CacheHit {
		c.Set("X-Cache-Hit", "true")
	} else {
		c.Set("X-Cache-Hit", "false")
	}
	return utils.SendSuccess(c, "platform stats", summary)
}

func (h *AdminHandler) notify(c *fiber.Ctx) error {
	var payload dto.NotificationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	notification, err := h.notifications.Publish(requestContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to send notification")
	}

	requestLogger(h.logger, c).Info().
		Uint("staff_id", userIDFromContext(c)).
		Uint("user_id", notification.UserID).
		Str("type", notification.Type).
		Msg("staff notification sent")
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "notification sent", notification)
}

func (h *AdminHandler) seed(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Get("X-Seed-Token"))

	result, err := h.seeder.SeedWithToken(requestContext(c), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSeedDisabled):
			return utils.SendError(c, fiber.StatusForbidden, "seeding disabled")
		case errors.Is(err, service.ErrSeedUnauthorized):
			return utils.SendError(c, fiber.StatusForbidden, "invalid token")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("seed operation failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "seed operation failed")
		}
	}

	return utils.SendSuccess(c, "demo data seeded", result)
}

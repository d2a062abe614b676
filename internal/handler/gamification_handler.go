package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sprint-connect-api/internal/gamification"
	"github.com/noah-isme/sprint-connect-api/internal/service"
	"github.com/noah-isme/sprint-connect-api/internal/utils"
)

// GamificationHandler exposes points, badges and the leaderboard.
type GamificationHandler struct {
	service service.GamificationService
	logger  zerolog.Logger
}

// NewGamificationHandler constructs the handler.
func NewGamificationHandler(service service.GamificationService, logger zerolog.Logger) *GamificationHandler {
	return &GamificationHandler{
		service: service,
		logger:  logger.With().Str("component", "gamification_handler").Logger(),
	}
}

// Register wires gamification routes.
func (h *GamificationHandler) Register(router fiber.Router) {
	router.Get("/stats", h.stats)
	router.Get("/leaderboard", h.leaderboard)
	router.Get("/badges", h.badges)
	router.Get("/my-badges", h.userBadges)
	router.Get("/transactions", h.transactions)
}

func (h *GamificationHandler) stats(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	stats, err := h.service.Stats(requestContext(c), userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load points")
	}
	return utils.SendSuccess(c, "gamification stats", stats)
}

func (h *GamificationHandler) leaderboard(c *fiber.Ctx) error {
	timeframe := c.Query("timeframe")
	if _, err := gamification.ParseTimeframe(timeframe); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	entries, err := h.service.Leaderboard(requestContext(c), timeframe, limit)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load leaderboard")
	}
	return utils.SendSuccess(c, "leaderboard", entries)
}

func (h *GamificationHandler) badges(c *fiber.Ctx) error {
	badges, err := h.service.Badges(requestContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list badges")
	}
	return utils.SendSuccess(c, "badges retrieved", badges)
}

func (h *GamificationHandler) userBadges(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	badges, err := h.service.UserBadges(requestContext(c), userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list earned badges")
	}
	return utils.SendSuccess(c, "earned badges", badges)
}

func (h *GamificationHandler) transactions(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	if limit == 0 || limit > 100 {
		limit = 50
	}

	items, err := h.service.Transactions(requestContext(c), userID, limit)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list transactions")
	}
	return utils.SendSuccess(c, "point transactions", items)
}

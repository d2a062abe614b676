package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/service"
	"github.com/noah-isme/sprint-connect-api/internal/utils"
)

// CommunityHandler serves the community feed.
type CommunityHandler struct {
	service service.CommunityService
	logger  zerolog.Logger
}

// NewCommunityHandler constructs the handler.
func NewCommunityHandler(service service.CommunityService, logger zerolog.Logger) *CommunityHandler {
	return &CommunityHandler{
		service: service,
		logger:  logger.With().Str("component", "community_handler").Logger(),
	}
}

// Register wires post routes.
func (h *CommunityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Post("/:id/like", h.like)
	router.Get("/:id/comments", h.comments)
	router.Post("/:id/comments", h.comment)
}

func (h *CommunityHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	query := dto.PostListQuery{Category: c.Query("category"), Page: page, Limit: limit}
	posts, meta, err := h.service.ListPosts(requestContext(c), query)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list posts")
	}
	return utils.OK(c, posts, "posts retrieved", meta)
}

func (h *CommunityHandler) create(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.PostCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.CreatePost(requestContext(c), userID, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create post")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "post created", result)
}

func (h *CommunityHandler) like(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	result, err := h.service.Like(requestContext(c), postID, userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to like post")
	}
	return utils.SendSuccess(c, "post liked", result)
}

func (h *CommunityHandler) comments(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	comments, err := h.service.ListComments(requestContext(c), postID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list comments")
	}
	return utils.SendSuccess(c, "comments retrieved", comments)
}

func (h *CommunityHandler) comment(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	var payload dto.CommentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Comment(requestContext(c), postID, userID, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to add comment")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "comment added", result)
}

package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/service"
	"github.com/noah-isme/sprint-connect-api/internal/utils"
)

// CircleHandler exposes study circles, their live rooms, shared resources and
// video rooms.
type CircleHandler struct {
	circles   service.CircleService
	live      service.CircleLiveService
	resources service.ResourceService
	video     service.VideoRoomService
	logger    zerolog.Logger
}

// NewCircleHandler constructs the handler.
func NewCircleHandler(circles service.CircleService, live service.CircleLiveService, resources service.ResourceService, video service.VideoRoomService, logger zerolog.Logger) *CircleHandler {
	return &CircleHandler{
		circles:   circles,
		live:      live,
		resources: resources,
		video:     video,
		logger:    logger.With().Str("component", "circle_handler").Logger(),
	}
}

// Register binds circle routes under the provided group.
func (h *CircleHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("/match", h.match)
	router.Get("/suggestions", h.suggestions)
	router.Get("/:id/members", h.members)
	router.Get("/:id/messages", h.history)

	router.Get("/:id/live", h.upgrade, websocket.New(h.handleConnection))

	router.Get("/:id/resources", h.listResources)
	router.Post("/:id/resources", h.createResource)

	router.Get("/:id/video-room", h.getVideoRoom)
	router.Post("/:id/video-room", h.ensureVideoRoom)
}

// RegisterResources binds routes addressed by resource id.
func (h *CircleHandler) RegisterResources(router fiber.Router) {
	router.Post("/:id/upvote", h.upvoteResource)
}

func (h *CircleHandler) list(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var courseID *uint
	if raw := c.Query("course_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid course_id")
		}
		id := uint(parsed)
		courseID = &id
	}
	mineOnly, err := parseQueryBool(c, "mine")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid mine flag")
	}

	circles, err := h.circles.List(requestContext(c), userID, courseID, mineOnly)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list circles")
	}
	return utils.SendSuccess(c, "circles retrieved", circles)
}

func (h *CircleHandler) members(c *fiber.Ctx) error {
	circleID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid circle id")
	}

	members, err := h.circles.Members(requestContext(c), circleID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list members")
	}
	return utils.SendSuccess(c, "circle members retrieved", members)
}

func (h *CircleHandler) match(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}

	var payload dto.CircleMatchRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.circles.Match(requestContext(c), userID, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to match circle")
	}

	status := fiber.StatusOK
	if result.Created {
		status = fiber.StatusCreated
	}
	return utils.SendSuccessWithStatus(c, status, "joined study circle", result)
}

func (h *CircleHandler) suggestions(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	peers, err := h.circles.Suggestions(requestContext(c), userID, limit)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load suggestions")
	}
	return utils.SendSuccess(c, "peer suggestions", peers)
}

func (h *CircleHandler) upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	circleID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid circle id")
	}

	ctx := requestContext(c)
	if err := h.circles.EnsureMember(ctx, circleID, userID); err != nil {
		return sendServiceError(c, h.logger, err, "failed to join live room")
	}

	c.Locals("circle_id", circleID)
	c.Locals("request_ctx", ctx)
	return c.Next()
}

func (h *CircleHandler) handleConnection(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(uint)
	circleID, _ := conn.Locals("circle_id").(uint)
	correlation, _ := conn.Locals("correlation_id").(string)
	baseCtx, _ := conn.Locals("request_ctx").(context.Context)

	opts := service.LiveConnectionOptions{
		UserID:        userID,
		CircleID:      circleID,
		CorrelationID: correlation,
		Context:       baseCtx,
	}

	h.logger.Info().Uint("user_id", userID).Uint("circle_id", circleID).Msg("live room connected")
	h.live.ServeConnection(conn, opts)
	h.logger.Info().Uint("user_id", userID).Uint("circle_id", circleID).Msg("live room disconnected")
}

func (h *CircleHandler) history(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	circleID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid circle id")
	}

	var query dto.LiveHistoryQuery
	if before := c.Query("before"); before != "" {
		parsed, err := time.Parse(time.RFC3339, before)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid before timestamp")
		}
		query.Before = &parsed
	}
	if query.Limit, err = parseQueryInt(c, "limit"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	messages, err := h.live.History(requestContext(c), circleID, userID, query)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load live history")
	}
	return utils.SendSuccess(c, "circle messages", messages)
}

func (h *CircleHandler) listResources(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	circleID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid circle id")
	}

	items, err := h.resources.List(requestContext(c), circleID, userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list resources")
	}
	return utils.SendSuccess(c, "resources retrieved", items)
}

// createResource accepts a JSON link or note, or a multipart upload with the
// file in the "file" field.
func (h *CircleHandler) createResource(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	circleID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid circle id")
	}

	var payload dto.ResourceCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	ctx := requestContext(c)
	var resource dto.ResourceResponse
	if file, ferr := c.FormFile("file"); ferr == nil {
		resource, err = h.resources.Upload(ctx, circleID, userID, payload, file)
	} else {
		resource, err = h.resources.Create(ctx, circleID, userID, payload)
	}
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to share resource")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "resource shared", resource)
}

func (h *CircleHandler) upvoteResource(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	resourceID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid resource id")
	}

	resource, err := h.resources.Upvote(requestContext(c), resourceID, userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to upvote resource")
	}
	return utils.SendSuccess(c, "resource upvoted", resource)
}

func (h *CircleHandler) getVideoRoom(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	circleID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid circle id")
	}

	room, err := h.video.Get(requestContext(c), circleID, userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load video room")
	}
	return utils.SendSuccess(c, "video room", room)
}

func (h *CircleHandler) ensureVideoRoom(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "user not authenticated")
	}
	circleID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid circle id")
	}

	room, err := h.video.Ensure(requestContext(c), circleID, userID)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to open video room")
	}
	return utils.SendSuccess(c, "video room ready", room)
}

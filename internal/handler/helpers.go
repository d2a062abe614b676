package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sprint-connect-api/internal/middleware"
	"github.com/noah-isme/sprint-connect-api/internal/service"
	"github.com/noah-isme/sprint-connect-api/internal/utils"
)

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseQueryBool(c *fiber.Ctx, key string) (bool, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return false, nil
	}
	return strconv.ParseBool(value)
}

func parseIDParam(c *fiber.Ctx, key string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Params(key)), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(parsed), nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

// requestContext carries the correlation id of the request into service calls.
func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

var errorStatuses = []struct {
	target error
	status int
}{
	{service.ErrProfileNotFound, fiber.StatusNotFound},
	{service.ErrCourseNotFound, fiber.StatusNotFound},
	{service.ErrCircleNotFound, fiber.StatusNotFound},
	{service.ErrPostNotFound, fiber.StatusNotFound},
	{service.ErrEventNotFound, fiber.StatusNotFound},
	{service.ErrNotificationNotFound, fiber.StatusNotFound},
	{service.ErrPeerSupportNotFound, fiber.StatusNotFound},
	{service.ErrPomodoroNotFound, fiber.StatusNotFound},
	{service.ErrResourceNotFound, fiber.StatusNotFound},
	{service.ErrNotCircleMember, fiber.StatusForbidden},
	{service.ErrPeerSupportSelf, fiber.StatusForbidden},
	{service.ErrAlreadyInCircle, fiber.StatusConflict},
	{service.ErrAlreadyLiked, fiber.StatusConflict},
	{service.ErrEventFull, fiber.StatusConflict},
	{service.ErrAlreadyRSVPd, fiber.StatusConflict},
	{service.ErrAlreadyAttended, fiber.StatusConflict},
	{service.ErrPeerSupportNotPending, fiber.StatusConflict},
	{service.ErrPeerSupportNotActive, fiber.StatusConflict},
	{service.ErrPomodoroActive, fiber.StatusConflict},
	{service.ErrPomodoroCompleted, fiber.StatusConflict},
	{service.ErrAlreadyUpvoted, fiber.StatusConflict},
	{service.ErrProfileIncomplete, fiber.StatusUnprocessableEntity},
	{service.ErrNotRSVPd, fiber.StatusUnprocessableEntity},
	{service.ErrCourseInvalidDates, fiber.StatusBadRequest},
	{service.ErrGroupSessionCircle, fiber.StatusBadRequest},
	{service.ErrInvalidSessionWindow, fiber.StatusBadRequest},
	{service.ErrResourceURLRequired, fiber.StatusBadRequest},
	{service.ErrResourceFileRequired, fiber.StatusBadRequest},
	{service.ErrUploadTypeNotAllowed, fiber.StatusBadRequest},
	{service.ErrUploadTooLarge, fiber.StatusRequestEntityTooLarge},
	{service.ErrUploadStorageUnavailable, fiber.StatusServiceUnavailable},
}

// sendServiceError maps a service error to its HTTP status. Unknown errors are
// logged and hidden behind the fallback message.
func sendServiceError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	if isValidationError(err) {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	for _, entry := range errorStatuses {
		if errors.Is(err, entry.target) {
			return utils.SendError(c, entry.status, entry.target.Error())
		}
	}
	if strings.Contains(err.Error(), "empty after sanitization") {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	requestLogger(logger, c).Error().Err(err).Msg(fallback)
	return utils.SendError(c, fiber.StatusInternalServerError, fallback)
}

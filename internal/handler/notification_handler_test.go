package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/handler"
	"github.com/noah-isme/sprint-connect-api/internal/service"
)

type stubNotificationService struct {
	lastQuery   dto.NotificationListQuery
	lastPublish dto.NotificationCreateRequest
	publishErr  error
	markErr     error
}

func (s *stubNotificationService) Publish(_ context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	s.lastPublish = payload
	if s.publishErr != nil {
		return dto.NotificationResponse{}, s.publishErr
	}
	return dto.NotificationResponse{ID: 10, UserID: payload.UserID, Title: payload.Title, Type: payload.Type}, nil
}

func (s *stubNotificationService) List(_ context.Context, _ uint, query dto.NotificationListQuery) ([]dto.NotificationResponse, dto.NotificationListMeta, error) {
	s.lastQuery = query
	return []dto.NotificationResponse{{ID: 1, Title: "Hi"}}, dto.NotificationListMeta{Unread: 1}, nil
}

func (s *stubNotificationService) MarkRead(_ context.Context, id, userID uint) (dto.NotificationResponse, error) {
	if s.markErr != nil {
		return dto.NotificationResponse{}, s.markErr
	}
	return dto.NotificationResponse{ID: id, UserID: userID, Read: true}, nil
}

func (s *stubNotificationService) MarkAllRead(context.Context, uint) (int64, error) {
	return 3, nil
}

func (s *stubNotificationService) Subscribe(uint) (<-chan dto.NotificationResponse, func()) {
	ch := make(chan dto.NotificationResponse)
	return ch, func() {}
}

func (s *stubNotificationService) Start(context.Context) {}

func newNotificationApp(svc *stubNotificationService, userID uint) *fiber.App {
	app := newTestApp(userID, "student")
	handler.NewNotificationHandler(svc, testLogger(), time.Second).Register(app.Group("/notifications"))
	return app
}

func TestNotificationHandler_ListReportsUnread(t *testing.T) {
	svc := &stubNotificationService{}
	app := newNotificationApp(svc, 4)

	resp := perform(t, app, http.MethodGet, "/notifications?unread_only=true&limit=10", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, dto.NotificationListQuery{Limit: 10, UnreadOnly: true}, svc.lastQuery)

	var items []dto.NotificationResponse
	env := decodeEnvelope(t, resp, &items)
	require.Len(t, items, 1)

	var meta dto.NotificationListMeta
	require.NoError(t, json.Unmarshal(env.Meta, &meta))
	require.Equal(t, int64(1), meta.Unread)
}

func TestNotificationHandler_MarkRead(t *testing.T) {
	svc := &stubNotificationService{}
	app := newNotificationApp(svc, 4)

	resp := perform(t, app, http.MethodPatch, "/notifications/2/read", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var read dto.NotificationResponse
	decodeEnvelope(t, resp, &read)
	require.True(t, read.Read)

	svc.markErr = service.ErrNotificationNotFound
	resp = perform(t, app, http.MethodPatch, "/notifications/2/read", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = perform(t, app, http.MethodPatch, "/notifications/abc/read", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestNotificationHandler_MarkAllRead(t *testing.T) {
	app := newNotificationApp(&stubNotificationService{}, 4)

	resp := perform(t, app, http.MethodPost, "/notifications/read-all", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Updated int64 `json:"updated"`
	}
	decodeEnvelope(t, resp, &result)
	require.Equal(t, int64(3), result.Updated)
}

func TestNotificationHandler_StreamRequiresUser(t *testing.T) {
	app := newNotificationApp(&stubNotificationService{}, 0)

	resp := perform(t, app, http.MethodGet, "/notifications/stream", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

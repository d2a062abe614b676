package handler_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/handler"
	"github.com/noah-isme/sprint-connect-api/internal/service"
)

type stubCircleService struct {
	lastCourseID *uint
	lastMine     bool
	match        dto.CircleMatchResponse
	matchErr     error
	memberErr    error
}

func (s *stubCircleService) List(_ context.Context, _ uint, courseID *uint, mineOnly bool) ([]dto.CircleResponse, error) {
	s.lastCourseID = courseID
	s.lastMine = mineOnly
	return []dto.CircleResponse{{ID: 1, Name: "DTM101 Study Circle 1"}}, nil
}

func (s *stubCircleService) Members(context.Context, uint) ([]dto.CircleMemberResponse, error) {
	return nil, service.ErrCircleNotFound
}

func (s *stubCircleService) Match(context.Context, uint, dto.CircleMatchRequest) (dto.CircleMatchResponse, error) {
	return s.match, s.matchErr
}

func (s *stubCircleService) Suggestions(context.Context, uint, int) ([]dto.PeerSuggestion, error) {
	return []dto.PeerSuggestion{}, nil
}

func (s *stubCircleService) EnsureMember(context.Context, uint, uint) error {
	return s.memberErr
}

type stubLiveService struct {
	lastQuery dto.LiveHistoryQuery
	err       error
}

func (s *stubLiveService) ServeConnection(*websocket.Conn, service.LiveConnectionOptions) {}

func (s *stubLiveService) History(_ context.Context, _, _ uint, query dto.LiveHistoryQuery) ([]dto.CircleMessageResponse, error) {
	s.lastQuery = query
	if s.err != nil {
		return nil, s.err
	}
	return []dto.CircleMessageResponse{{ID: 3, Content: "hi"}}, nil
}

func (s *stubLiveService) Broadcast(context.Context, uint, uint, string, string) (dto.CircleMessageResponse, error) {
	return dto.CircleMessageResponse{}, nil
}

func (s *stubLiveService) Start(context.Context) {}

type stubResourceService struct {
	created  bool
	uploaded string
	err      error
}

func (s *stubResourceService) List(context.Context, uint, uint) ([]dto.ResourceResponse, error) {
	return []dto.ResourceResponse{}, s.err
}

func (s *stubResourceService) Create(_ context.Context, circleID, _ uint, payload dto.ResourceCreateRequest) (dto.ResourceResponse, error) {
	s.created = true
	return dto.ResourceResponse{ID: 4, CircleID: circleID, Title: payload.Title, Kind: payload.Kind}, s.err
}

func (s *stubResourceService) Upload(_ context.Context, circleID, _ uint, payload dto.ResourceCreateRequest, file *multipart.FileHeader) (dto.ResourceResponse, error) {
	s.uploaded = file.Filename
	return dto.ResourceResponse{ID: 5, CircleID: circleID, Title: payload.Title, Kind: "file"}, s.err
}

func (s *stubResourceService) Upvote(context.Context, uint, uint) (dto.ResourceResponse, error) {
	return dto.ResourceResponse{}, service.ErrAlreadyUpvoted
}

type stubVideoService struct{}

func (stubVideoService) Ensure(_ context.Context, circleID, _ uint) (dto.VideoRoomResponse, error) {
	return dto.VideoRoomResponse{Exists: true, RoomName: "SprintConnect-Circle-1", JoinURL: "https://meet.jit.si/SprintConnect-Circle-1"}, nil
}

func (stubVideoService) Get(context.Context, uint, uint) (dto.VideoRoomResponse, error) {
	return dto.VideoRoomResponse{}, service.ErrNotCircleMember
}

type circleDeps struct {
	circles   *stubCircleService
	live      *stubLiveService
	resources *stubResourceService
}

func newCircleApp(userID uint) (*fiber.App, circleDeps) {
	deps := circleDeps{circles: &stubCircleService{}, live: &stubLiveService{}, resources: &stubResourceService{}}
	app := newTestApp(userID, "student")
	h := handler.NewCircleHandler(deps.circles, deps.live, deps.resources, stubVideoService{}, testLogger())
	h.Register(app.Group("/circles"))
	h.RegisterResources(app.Group("/resources"))
	return app, deps
}

func TestCircleHandler_ListParsesFilters(t *testing.T) {
	app, deps := newCircleApp(1)

	resp := perform(t, app, http.MethodGet, "/circles?course_id=7&mine=true", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, deps.circles.lastCourseID)
	require.Equal(t, uint(7), *deps.circles.lastCourseID)
	require.True(t, deps.circles.lastMine)

	resp = perform(t, app, http.MethodGet, "/circles?course_id=abc", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCircleHandler_RequiresUser(t *testing.T) {
	app, _ := newCircleApp(0)

	resp := perform(t, app, http.MethodPost, "/circles/match", map[string]interface{}{"course_id": 1})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCircleHandler_MatchStatusCodes(t *testing.T) {
	app, deps := newCircleApp(1)

	deps.circles.match = dto.CircleMatchResponse{Circle: dto.CircleResponse{ID: 2}, Created: true, Score: 1}
	resp := perform(t, app, http.MethodPost, "/circles/match", map[string]interface{}{"course_id": 1})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result dto.CircleMatchResponse
	env := decodeEnvelope(t, resp, &result)
	require.True(t, env.Success)
	require.Equal(t, uint(2), result.Circle.ID)

	deps.circles.matchErr = service.ErrAlreadyInCircle
	resp = perform(t, app, http.MethodPost, "/circles/match", map[string]interface{}{"course_id": 1})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	deps.circles.matchErr = service.ErrProfileIncomplete
	resp = perform(t, app, http.MethodPost, "/circles/match", map[string]interface{}{"course_id": 1})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCircleHandler_MembersNotFound(t *testing.T) {
	app, _ := newCircleApp(1)

	resp := perform(t, app, http.MethodGet, "/circles/9/members", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = perform(t, app, http.MethodGet, "/circles/zero/members", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCircleHandler_History(t *testing.T) {
	app, deps := newCircleApp(1)

	resp := perform(t, app, http.MethodGet, "/circles/1/messages?limit=20&before=2024-05-01T10:00:00Z", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 20, deps.live.lastQuery.Limit)
	require.NotNil(t, deps.live.lastQuery.Before)

	resp = perform(t, app, http.MethodGet, "/circles/1/messages?before=yesterday", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	deps.live.err = service.ErrNotCircleMember
	resp = perform(t, app, http.MethodGet, "/circles/1/messages", nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCircleHandler_LiveRequiresUpgrade(t *testing.T) {
	app, _ := newCircleApp(1)

	resp := perform(t, app, http.MethodGet, "/circles/1/live", nil)
	require.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestCircleHandler_CreateLinkResource(t *testing.T) {
	app, deps := newCircleApp(1)

	resp := perform(t, app, http.MethodPost, "/circles/3/resources", map[string]interface{}{
		"title": "Slides",
		"kind":  "link",
		"url":   "https://example.com/slides",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.True(t, deps.resources.created)

	var resource dto.ResourceResponse
	decodeEnvelope(t, resp, &resource)
	require.Equal(t, uint(3), resource.CircleID)
	require.Equal(t, "Slides", resource.Title)
}

func TestCircleHandler_UploadResource(t *testing.T) {
	app, deps := newCircleApp(1)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "Week 1"))
	require.NoError(t, writer.WriteField("kind", "file"))
	part, err := writer.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("summary"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/circles/3/resources", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, "notes.txt", deps.resources.uploaded)
	require.False(t, deps.resources.created)
}

func TestCircleHandler_UploadErrors(t *testing.T) {
	app, deps := newCircleApp(1)

	deps.resources.err = service.ErrUploadStorageUnavailable
	resp := perform(t, app, http.MethodPost, "/circles/3/resources", map[string]interface{}{"title": "Scan", "kind": "note"})
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	deps.resources.err = service.ErrUploadTooLarge
	resp = perform(t, app, http.MethodPost, "/circles/3/resources", map[string]interface{}{"title": "Scan", "kind": "note"})
	require.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)

	resp = perform(t, app, http.MethodPost, "/resources/4/upvote", nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestCircleHandler_VideoRoom(t *testing.T) {
	app, _ := newCircleApp(1)

	resp := perform(t, app, http.MethodPost, "/circles/1/video-room", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var room dto.VideoRoomResponse
	decodeEnvelope(t, resp, &room)
	require.True(t, room.Exists)
	require.Equal(t, "SprintConnect-Circle-1", room.RoomName)

	resp = perform(t, app, http.MethodGet, "/circles/1/video-room", nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

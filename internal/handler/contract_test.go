package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/handler"
	"github.com/noah-isme/sprint-connect-api/internal/middleware"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()

	schemaPath, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)

	schema, err := jsonschema.NewCompiler().Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func validateBody(t *testing.T, schema *jsonschema.Schema, resp *http.Response) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

type fixedDashboardService struct {
	response dto.DashboardResponse
}

func (s fixedDashboardService) GetDashboard(context.Context, uint) (dto.DashboardResponse, error) {
	return s.response, nil
}

func (fixedDashboardService) Invalidate(context.Context, uint) {}

type trendWellnessService struct {
	stubWellnessService
	report dto.WellnessTrendResponse
}

func (s *trendWellnessService) Trend(context.Context, uint) (dto.WellnessTrendResponse, error) {
	return s.report, nil
}

func TestDashboardContract(t *testing.T) {
	schema := compileSchema(t, "dashboard.schema.json")

	now := time.Now().UTC()
	maxAttendees := 30
	response := dto.DashboardResponse{
		Points:   dto.DashboardPoints{Points: 140, Level: 2, StreakDays: 4},
		Wellness: dto.WellnessStatsResponse{AverageMood: 3.75, Trend: "improving", Streak: 4, TotalCheckins: 4},
		ActiveCircles: []dto.CircleResponse{
			{ID: 1, CourseID: 2, Name: "DTM101 Study Circle 1", SprintID: "2024-S1", Status: "active", MaxMembers: 6, MemberCount: 3, CreatedAt: now},
		},
		RecentCheckins: []dto.CheckinView{
			{ID: 9, Day: "2024-05-20", MoodScore: 4, MoodEmoji: "🙂", CreatedAt: now, UpdatedAt: now},
		},
		UpcomingEvents: []dto.EventResponse{
			{ID: 3, Title: "Study Skills Workshop", EventDate: now.Add(72 * time.Hour), AttendeeCount: 5, MaxAttendees: &maxAttendees},
		},
		RecentPosts: []dto.PostResponse{},
		UnreadCount: 1,
		GeneratedAt: now,
	}

	app := newTestApp(1, "student")
	handler.NewDashboardHandler(fixedDashboardService{response: response}, testLogger()).Register(app)

	resp := perform(t, app, http.MethodGet, "/dashboard", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	validateBody(t, schema, resp)
}

func TestAdminStatsContract(t *testing.T) {
	schema := compileSchema(t, "admin_stats.schema.json")

	analytics := stubAnalyticsService{response: dto.AdminStatsResponse{
		TotalUsers:              42,
		ActiveStudyCircles:      7,
		WellnessCheckinsToday:   12,
		CommunityPostsThisWeek:  9,
		AverageMoodScore:        3.4,
		UpcomingEvents:          3,
		OpenPeerSupportRequests: 2,
		GeneratedAt:             time.Now().UTC(),
	}}

	app := newTestApp(9, "admin")
	handler.NewAdminHandler(analytics, &stubNotificationService{}, &stubSeedService{}, testLogger()).
		Register(app.Group("/admin", middleware.RequireStaff()))

	resp := perform(t, app, http.MethodGet, "/admin/stats", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	validateBody(t, schema, resp)
}

func TestCircleMatchContract(t *testing.T) {
	schema := compileSchema(t, "circle_match.schema.json")

	app, deps := newCircleApp(1)
	deps.circles.match = dto.CircleMatchResponse{
		Circle:  dto.CircleResponse{ID: 4, CourseID: 2, Name: "DTM101 Study Circle 2", SprintID: "2024-S1", Status: "active", MaxMembers: 6, MemberCount: 1, CreatedAt: time.Now().UTC()},
		Score:   0,
		Created: true,
		Points:  &dto.PointsAward{Action: "join_circle", Points: 20, TotalPoints: 20, Level: 1},
	}

	resp := perform(t, app, http.MethodPost, "/circles/match", map[string]interface{}{"course_id": 2})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	validateBody(t, schema, resp)
}

func TestWellnessTrendContract(t *testing.T) {
	schema := compileSchema(t, "wellness_trend.schema.json")

	cases := []dto.WellnessTrendResponse{
		{Sufficient: false, Entries: 2},
		{
			Sufficient:      true,
			Entries:         9,
			Average30d:      2.4,
			AverageRecent7d: 1.8,
			AveragePrior7d:  3.2,
			Trend:           "declining",
			LowMoodDays:     3,
			Alert:           true,
			Level:           "support",
			Message:         "A counsellor is available if you want to talk.",
			Notified:        true,
		},
	}

	for _, report := range cases {
		app := newTestApp(1, "student")
		handler.NewWellnessHandler(&trendWellnessService{report: report}, testLogger()).Register(app.Group("/wellness"))

		resp := perform(t, app, http.MethodGet, "/wellness/trend", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		validateBody(t, schema, resp)
	}
}

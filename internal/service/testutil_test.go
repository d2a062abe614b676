package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/sprint-connect-api/internal/database"
	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/models"
	"github.com/noah-isme/sprint-connect-api/internal/repository"
	"github.com/noah-isme/sprint-connect-api/pkg/mailer"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, client
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []dto.NotificationCreateRequest
}

func (r *recordingNotifier) Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, payload)
	return dto.NotificationResponse{ID: uint(len(r.calls)), UserID: payload.UserID, Title: payload.Title, Type: payload.Type}, nil
}

func (r *recordingNotifier) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.calls))
	for _, call := range r.calls {
		out = append(out, call.Title)
	}
	return out
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (r *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

type countingInvalidator struct {
	mu    sync.Mutex
	users []uint
}

func (c *countingInvalidator) Invalidate(ctx context.Context, userID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users = append(c.users, userID)
}

// fixture bundles the repositories and shared services most tests need.
type fixture struct {
	db       *gorm.DB
	notifier *recordingNotifier
	points   GamificationService
	repos    struct {
		profiles     repository.ProfileRepository
		points       repository.GamificationRepository
		circles      repository.CircleRepository
		courses      repository.CourseRepository
		wellness     repository.WellnessRepository
		community    repository.CommunityRepository
		events       repository.EventRepository
		productivity repository.ProductivityRepository
		peerSupport  repository.PeerSupportRepository
		messages     repository.CircleMessageRepository
		notification repository.NotificationRepository
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{db: newTestDB(t), notifier: &recordingNotifier{}}
	f.repos.profiles = repository.NewProfileRepository(f.db)
	f.repos.points = repository.NewGamificationRepository(f.db)
	f.repos.circles = repository.NewCircleRepository(f.db)
	f.repos.courses = repository.NewCourseRepository(f.db)
	f.repos.wellness = repository.NewWellnessRepository(f.db)
	f.repos.community = repository.NewCommunityRepository(f.db)
	f.repos.events = repository.NewEventRepository(f.db)
	f.repos.productivity = repository.NewProductivityRepository(f.db)
	f.repos.peerSupport = repository.NewPeerSupportRepository(f.db)
	f.repos.messages = repository.NewCircleMessageRepository(f.db)
	f.repos.notification = repository.NewNotificationRepository(f.db)

	f.points = NewGamificationService(f.repos.points, f.repos.profiles, f.notifier, nil, time.Minute, testLogger())
	_, err := f.points.EnsureCatalogue(context.Background())
	require.NoError(t, err)
	return f
}

func (f *fixture) profile(t *testing.T, userID uint, name, email string, prefs models.StudyPreferences) models.Profile {
	t.Helper()
	profile := models.Profile{
		UserID:      userID,
		FullName:    name,
		Email:       email,
		AvatarEmoji: models.DefaultAvatarEmoji,
		Preferences: datatypes.NewJSONType(prefs),
	}
	require.NoError(t, f.repos.profiles.Upsert(context.Background(), &profile))
	return profile
}

func (f *fixture) course(t *testing.T, code string) models.Course {
	t.Helper()
	course := models.Course{Code: code, Title: code + " course", SprintNumber: 3}
	require.NoError(t, f.repos.courses.Create(context.Background(), &course))
	return course
}

func (f *fixture) checkin(t *testing.T, userID uint, day time.Time, score int) {
	t.Helper()
	require.NoError(t, f.repos.wellness.Create(context.Background(), &models.WellnessCheckin{
		UserID:    userID,
		Day:       day.Format(models.DayLayout),
		MoodScore: score,
	}))
}

func visualMorning() models.StudyPreferences {
	return models.StudyPreferences{
		LearningStyle:  "visual",
		PreferredTimes: []string{"morning", "afternoon"},
		GroupSize:      "small",
		Goals:          []string{"pass exam"},
	}
}

func intPtr(v int) *int {
	return &v
}

func uintPtr(v uint) *uint {
	return &v
}

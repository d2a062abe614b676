package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/models"
	"github.com/noah-isme/sprint-connect-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService loads the badge catalogue and demo content.
type SeedService interface {
	// Run seeds without a token check, for the seed command.
	Run(ctx context.Context) (dto.SeedResult, error)
	// SeedWithToken seeds behind the configured token, for the admin endpoint.
	SeedWithToken(ctx context.Context, token string) (dto.SeedResult, error)
}

type seedService struct {
	points  GamificationService
	courses repository.CourseRepository
	events  repository.EventRepository
	token   string
	logger  zerolog.Logger
	now     func() time.Time
}

// NewSeedService constructs a seeding service. An empty token disables the
// HTTP entry point.
func NewSeedService(points GamificationService, courses repository.CourseRepository, events repository.EventRepository, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		points:  points,
		courses: courses,
		events:  events,
		token:   token,
		logger:  logger.With().Str("component", "seed_service").Logger(),
		now:     time.Now,
	}
}

func (s *seedService) SeedWithToken(ctx context.Context, token string) (dto.SeedResult, error) {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return dto.SeedResult{}, ErrSeedDisabled
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) != 1 {
		return dto.SeedResult{}, ErrSeedUnauthorized
	}
	return s.Run(ctx)
}

func (s *seedService) Run(ctx context.Context) (dto.SeedResult, error) {
	var result dto.SeedResult

	badges, err := s.points.EnsureCatalogue(ctx)
	if err != nil {
		return result, err
	}
	result.Badges = badges

	now := s.now().UTC()
	for _, course := range demoCourses(now) {
		course := course
		created, err := s.courses.FirstOrCreateByCode(ctx, &course)
		if err != nil {
			return result, err
		}
		if created {
			result.Courses++
		}
	}

	for _, event := range demoEvents(now) {
		event := event
		created, err := s.events.FirstOrCreateByTitle(ctx, &event)
		if err != nil {
			return result, err
		}
		if created {
			result.Events++
		}
	}

	s.logger.Info().
		Int64("badges", result.Badges).
		Int64("courses", result.Courses).
		Int64("events", result.Events).
		Msg("seed completed")
	return result, nil
}

func demoCourses(now time.Time) []models.Course {
	start := now.Truncate(24 * time.Hour)
	end := start.AddDate(0, 0, 35)
	items := []struct {
		code   string
		title  string
		sprint int
	}{
		{"DTM101", "Digital Business Models", 3},
		{"DTM102", "Data Analytics Fundamentals", 3},
		{"DTM201", "AI and Machine Learning", 4},
		{"DTM202", "Agile Project Management", 4},
		{"DTM301", "Innovation Strategy", 5},
	}

	out := make([]models.Course, 0, len(items))
	for _, item := range items {
		startDate, endDate := start, end
		out = append(out, models.Course{
			Code:         item.code,
			Title:        item.title,
			SprintNumber: item.sprint,
			AcademicYear: "2024-2025",
			StartDate:    &startDate,
			EndDate:      &endDate,
		})
	}
	return out
}

func demoEvents(now time.Time) []models.Event {
	limit := 30
	return []models.Event{
		{Title: "International Food Festival", Description: "Bring a dish from your home country! Let's celebrate our diversity 🌍", Location: "Cafeteria", EventDate: now.AddDate(0, 0, 3), MaxAttendees: &limit},
		{Title: "Sprint Study Session", Description: "Group study session for all current sprint courses. Snacks provided!", Location: "Library Room 201", EventDate: now.AddDate(0, 0, 1)},
		{Title: "Mental Health & Wellness Talk", Description: "Tips for managing stress during intensive learning", Location: "Auditorium", EventDate: now.AddDate(0, 0, 4)},
	}
}

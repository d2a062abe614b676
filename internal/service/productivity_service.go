package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/gamification"
	"github.com/noah-isme/sprint-connect-api/internal/models"
	"github.com/noah-isme/sprint-connect-api/internal/repository"
)

var (
	// ErrPomodoroNotFound is returned when the session does not exist or
	// belongs to another user.
	ErrPomodoroNotFound = errors.New("pomodoro session not found")
	// ErrPomodoroActive is returned when starting while a session is running.
	ErrPomodoroActive = errors.New("a pomodoro session is already active")
	// ErrPomodoroCompleted is returned when completing a session twice.
	ErrPomodoroCompleted = errors.New("pomodoro session already completed")
	// ErrGroupSessionCircle is returned for group sessions without a circle.
	ErrGroupSessionCircle = errors.New("group sessions require a circle")
	// ErrInvalidSessionWindow is returned when a study session has no usable duration.
	ErrInvalidSessionWindow = errors.New("study session must end after it starts")
)

// abandonAfter is how long past its planned end an open session keeps
// blocking new ones.
const abandonAfter = time.Hour

// ProductivityService runs Pomodoro timers and logs study sessions.
type ProductivityService interface {
	StartPomodoro(ctx context.Context, userID uint, req dto.PomodoroStartRequest) (dto.PomodoroResponse, error)
	CompletePomodoro(ctx context.Context, sessionID, userID uint) (dto.PomodoroCompleteResponse, error)
	PomodoroStats(ctx context.Context, userID uint) (dto.PomodoroStatsResponse, error)
	ActivePomodoro(ctx context.Context, userID uint) (dto.PomodoroActiveResponse, error)
	LogStudySession(ctx context.Context, userID uint, req dto.StudySessionCreateRequest) (dto.StudySessionCreateResponse, error)
	StudySessions(ctx context.Context, userID uint, limit int) ([]dto.StudySessionResponse, error)
}

// PomodoroDefaults are applied when a start request omits durations.
type PomodoroDefaults struct {
	FocusMinutes int
	BreakMinutes int
}

type productivityService struct {
	repo      repository.ProductivityRepository
	circles   CircleService
	live      CircleLiveService
	points    GamificationService
	cache     CacheInvalidator
	defaults  PomodoroDefaults
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewProductivityService constructs the Pomodoro and study session service.
// The live service is optional; without it group sessions are not announced.
func NewProductivityService(repo repository.ProductivityRepository, circles CircleService, live CircleLiveService, points GamificationService, cache CacheInvalidator, defaults PomodoroDefaults, validate *validator.Validate, logger zerolog.Logger) ProductivityService {
	if defaults.FocusMinutes <= 0 {
		defaults.FocusMinutes = 25
	}
	if defaults.BreakMinutes <= 0 {
		defaults.BreakMinutes = 5
	}
	return &productivityService{
		repo:      repo,
		circles:   circles,
		live:      live,
		points:    points,
		cache:     cache,
		defaults:  defaults,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "productivity_service").Logger(),
		now:       time.Now,
	}
}

func (s *productivityService) StartPomodoro(ctx context.Context, userID uint, req dto.PomodoroStartRequest) (dto.PomodoroResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PomodoroResponse{}, err
	}

	now := s.now().UTC()
	if open, ok, err := s.openSession(ctx, userID, now); err != nil {
		return dto.PomodoroResponse{}, err
	} else if ok {
		s.logger.Debug().Uint("user_id", userID).Uint("session_id", open.ID).Msg("pomodoro already running")
		return dto.PomodoroResponse{}, ErrPomodoroActive
	}

	if req.IsGroupSession {
		if req.CircleID == nil {
			return dto.PomodoroResponse{}, ErrGroupSessionCircle
		}
		if err := s.circles.EnsureMember(ctx, *req.CircleID, userID); err != nil {
			return dto.PomodoroResponse{}, err
		}
	} else if req.CircleID != nil {
		if err := s.circles.EnsureMember(ctx, *req.CircleID, userID); err != nil {
			return dto.PomodoroResponse{}, err
		}
	}

	session := models.PomodoroSession{
		UserID:          userID,
		CircleID:        req.CircleID,
		DurationMinutes: req.DurationMinutes,
		BreakMinutes:    req.BreakMinutes,
		IsGroupSession:  req.IsGroupSession,
		StartedAt:       now,
	}
	if session.DurationMinutes == 0 {
		session.DurationMinutes = s.defaults.FocusMinutes
	}
	if session.BreakMinutes == 0 {
		session.BreakMinutes = s.defaults.BreakMinutes
	}

	if err := s.repo.CreatePomodoro(ctx, &session); err != nil {
		return dto.PomodoroResponse{}, fmt.Errorf("start pomodoro: %w", err)
	}

	if session.IsGroupSession {
		s.announce(ctx, session, models.MessageTypePomodoroStarted,
			fmt.Sprintf("🍅 Group Pomodoro started: %d minutes of focus, then a %d minute break.", session.DurationMinutes, session.BreakMinutes))
	}

	return dto.NewPomodoroResponse(session), nil
}

func (s *productivityService) CompletePomodoro(ctx context.Context, sessionID, userID uint) (dto.PomodoroCompleteResponse, error) {
	session, err := s.repo.FindPomodoro(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PomodoroCompleteResponse{}, ErrPomodoroNotFound
		}
		return dto.PomodoroCompleteResponse{}, err
	}
	if session.UserID != userID {
		return dto.PomodoroCompleteResponse{}, ErrPomodoroNotFound
	}
	if session.Completed {
		return dto.PomodoroCompleteResponse{}, ErrPomodoroCompleted
	}

	if err := s.repo.CompletePomodoro(ctx, &session, s.now().UTC()); err != nil {
		return dto.PomodoroCompleteResponse{}, fmt.Errorf("complete pomodoro: %w", err)
	}

	award := awardBestEffort(ctx, s.points, s.logger, userID, gamification.ActionPomodoroComplete,
		fmt.Sprintf("Completed %d min Pomodoro", session.DurationMinutes))
	invalidate(ctx, s.cache, userID)

	if session.IsGroupSession {
		s.announce(ctx, session, models.MessageTypePomodoroCompleted,
			fmt.Sprintf("✅ Pomodoro complete! Take a %d minute break.", session.BreakMinutes))
	}

	return dto.PomodoroCompleteResponse{Session: dto.NewPomodoroResponse(session), Points: award}, nil
}

func (s *productivityService) PomodoroStats(ctx context.Context, userID uint) (dto.PomodoroStatsResponse, error) {
	totals, err := s.repo.PomodoroTotals(ctx, userID)
	if err != nil {
		return dto.PomodoroStatsResponse{}, err
	}

	now := s.now().UTC()
	today, err := s.repo.CountCompletedSince(ctx, userID, startOfDay(now))
	if err != nil {
		return dto.PomodoroStatsResponse{}, err
	}

	stats := dto.PomodoroStatsResponse{
		TotalSessions:  totals.Sessions,
		TotalMinutes:   totals.Minutes,
		TotalHours:     roundTo(float64(totals.Minutes)/60, 2),
		CompletedToday: today,
	}
	if totals.FirstStartedAt != nil && totals.Sessions > 0 {
		days := math.Ceil(now.Sub(*totals.FirstStartedAt).Hours() / 24)
		if days < 1 {
			days = 1
		}
		stats.AveragePerDay = roundTo(float64(totals.Sessions)/days, 2)
	}
	return stats, nil
}

func (s *productivityService) ActivePomodoro(ctx context.Context, userID uint) (dto.PomodoroActiveResponse, error) {
	now := s.now().UTC()
	session, ok, err := s.openSession(ctx, userID, now)
	if err != nil || !ok {
		return dto.PomodoroActiveResponse{}, err
	}

	elapsed := int(now.Sub(session.StartedAt).Minutes())
	remaining := session.DurationMinutes - elapsed
	if remaining < 0 {
		remaining = 0
	}

	view := dto.NewPomodoroResponse(session)
	return dto.PomodoroActiveResponse{
		Active:           true,
		Session:          &view,
		ElapsedMinutes:   elapsed,
		RemainingMinutes: remaining,
	}, nil
}

func (s *productivityService) LogStudySession(ctx context.Context, userID uint, req dto.StudySessionCreateRequest) (dto.StudySessionCreateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudySessionCreateResponse{}, err
	}

	duration := req.DurationMinutes
	if req.EndedAt != nil {
		if !req.EndedAt.After(req.StartedAt) {
			return dto.StudySessionCreateResponse{}, ErrInvalidSessionWindow
		}
		if duration == 0 {
			duration = int(req.EndedAt.Sub(req.StartedAt).Minutes())
		}
	}
	if duration <= 0 {
		return dto.StudySessionCreateResponse{}, ErrInvalidSessionWindow
	}

	if req.CircleID != nil {
		if err := s.circles.EnsureMember(ctx, *req.CircleID, userID); err != nil {
			return dto.StudySessionCreateResponse{}, err
		}
	}

	session := models.StudySession{
		UserID:             userID,
		CircleID:           req.CircleID,
		CourseID:           req.CourseID,
		SessionType:        req.SessionType,
		StartedAt:          req.StartedAt.UTC(),
		DurationMinutes:    duration,
		Notes:              sanitizeText(s.sanitizer, req.Notes),
		ProductivityRating: req.ProductivityRating,
	}
	if req.EndedAt != nil {
		ended := req.EndedAt.UTC()
		session.EndedAt = &ended
	}

	if err := s.repo.CreateStudySession(ctx, &session); err != nil {
		return dto.StudySessionCreateResponse{}, fmt.Errorf("log study session: %w", err)
	}

	resp := dto.StudySessionCreateResponse{Session: dto.NewStudySessionResponse(session)}
	if hours := duration / 60; hours > 0 && s.points != nil {
		perHour, _ := gamification.Points(gamification.ActionStudySessionHour)
		award, err := s.points.AwardAmount(ctx, userID, gamification.ActionStudySessionHour, perHour*hours,
			fmt.Sprintf("Studied for %d hours", hours))
		if err != nil {
			s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to award study hours")
		} else {
			resp.Points = &award
		}
	}
	invalidate(ctx, s.cache, userID)

	return resp, nil
}

func (s *productivityService) StudySessions(ctx context.Context, userID uint, limit int) ([]dto.StudySessionResponse, error) {
	sessions, err := s.repo.ListStudySessions(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StudySessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, dto.NewStudySessionResponse(session))
	}
	return out, nil
}

// openSession returns the running session, ignoring sessions abandoned long
// past their planned end.
func (s *productivityService) openSession(ctx context.Context, userID uint, now time.Time) (models.PomodoroSession, bool, error) {
	session, err := s.repo.LatestOpenPomodoro(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PomodoroSession{}, false, nil
		}
		return models.PomodoroSession{}, false, err
	}

	plannedEnd := session.StartedAt.Add(time.Duration(session.DurationMinutes+session.BreakMinutes) * time.Minute)
	if now.After(plannedEnd.Add(abandonAfter)) {
		return models.PomodoroSession{}, false, nil
	}
	return session, true, nil
}

func (s *productivityService) announce(ctx context.Context, session models.PomodoroSession, messageType, content string) {
	if s.live == nil || session.CircleID == nil {
		return
	}
	if _, err := s.live.Broadcast(ctx, *session.CircleID, session.UserID, messageType, content); err != nil {
		s.logger.Warn().Err(err).Uint("circle_id", *session.CircleID).Str("type", messageType).Msg("failed to announce pomodoro")
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/models"
	"github.com/noah-isme/sprint-connect-api/internal/observability"
	"github.com/noah-isme/sprint-connect-api/internal/repository"
	"github.com/noah-isme/sprint-connect-api/internal/wellness"
	"github.com/noah-isme/sprint-connect-api/pkg/mailer"
)

const (
	defaultHistoryDays = 30
	maxHistoryDays     = 365
	alertKeyTTL        = 24 * time.Hour
	wellnessAlertTitle = "Wellness Check-In Alert"
)

// WellnessService records mood check-ins and reports on them.
type WellnessService interface {
	Checkin(ctx context.Context, userID uint, req dto.CheckinRequest) (dto.CheckinResponse, error)
	History(ctx context.Context, userID uint, days int) ([]dto.CheckinView, error)
	Stats(ctx context.Context, userID uint) (dto.WellnessStatsResponse, error)
	Trend(ctx context.Context, userID uint) (dto.WellnessTrendResponse, error)
}

type wellnessService struct {
	repo      repository.WellnessRepository
	points    GamificationService
	profiles  repository.ProfileRepository
	notifier  Notifier
	mail      mailer.Mailer
	redis     *redis.Client
	cache     CacheInvalidator
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time

	// alerted holds the last alert day per user when redis is not configured.
	mu      sync.Mutex
	alerted map[uint]string
}

// NewWellnessService wires the wellness check-in service. Redis, mailer and
// cache are optional.
func NewWellnessService(repo repository.WellnessRepository, points GamificationService, profiles repository.ProfileRepository, notifier Notifier, mail mailer.Mailer, redisClient *redis.Client, cache CacheInvalidator, validate *validator.Validate, logger zerolog.Logger) WellnessService {
	return &wellnessService{
		repo:      repo,
		points:    points,
		profiles:  profiles,
		notifier:  notifier,
		mail:      mail,
		redis:     redisClient,
		cache:     cache,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "wellness_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/sprint-connect-api/internal/service/wellness"),
		now:       time.Now,
		alerted:   make(map[uint]string),
	}
}

// Checkin stores today's mood. A second check-in on the same day overwrites
// the first without earning points again.
func (s *wellnessService) Checkin(ctx context.Context, userID uint, req dto.CheckinRequest) (dto.CheckinResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CheckinResponse{}, err
	}

	now := s.now().UTC()
	day := now.Format(models.DayLayout)

	spanCtx, span := s.tracer.Start(ctx, "wellness.checkin", trace.WithAttributes(
		attribute.Int64("wellness.user_id", int64(userID)),
		attribute.String("wellness.day", day),
	))
	defer span.End()

	checkin := models.WellnessCheckin{
		UserID:     userID,
		Day:        day,
		MoodScore:  *req.MoodScore,
		MoodEmoji:  req.MoodEmoji,
		Note:       sanitizeText(s.sanitizer, req.Note),
		SprintWeek: req.SprintWeek,
	}

	// Only the request that inserts the day's row earns points.
	firstToday, err := s.repo.Upsert(spanCtx, &checkin)
	if err != nil {
		span.RecordError(err)
		return dto.CheckinResponse{}, fmt.Errorf("save check-in: %w", err)
	}
	observability.CheckinsTotal().Inc()

	resp := dto.CheckinResponse{Checkin: dto.NewCheckinView(checkin), FirstToday: firstToday}

	if firstToday && s.points != nil {
		streak, award, awardErr := s.points.RecordCheckin(spanCtx, userID, now)
		if awardErr != nil {
			s.logger.Warn().Err(awardErr).Uint("user_id", userID).Msg("failed to record check-in points")
		} else {
			resp.StreakDays = streak
			resp.Points = &award
		}
	}

	history, err := s.history(spanCtx, userID, now, wellness.WindowDays)
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to load mood history")
	} else {
		if resp.StreakDays == 0 {
			resp.StreakDays = wellness.Summarize(history, now).Streak
		}
		if report, ok := wellness.Analyze(history, now); ok && report.Alert {
			resp.Alert = report.Message
			s.raiseAlert(spanCtx, userID, report)
		}
	}

	invalidate(spanCtx, s.cache, userID)
	return resp, nil
}

func (s *wellnessService) History(ctx context.Context, userID uint, days int) ([]dto.CheckinView, error) {
	if days <= 0 {
		days = defaultHistoryDays
	}
	if days > maxHistoryDays {
		days = maxHistoryDays
	}

	checkins, err := s.repo.ListSince(ctx, userID, fromDay(s.now().UTC(), days))
	if err != nil {
		return nil, err
	}
	return dto.NewCheckinViewSlice(checkins), nil
}

func (s *wellnessService) Stats(ctx context.Context, userID uint) (dto.WellnessStatsResponse, error) {
	now := s.now().UTC()
	history, err := s.history(ctx, userID, now, wellness.SegmentSize)
	if err != nil {
		return dto.WellnessStatsResponse{}, err
	}
	return dto.NewWellnessStatsResponse(wellness.Summarize(history, now)), nil
}

// Trend analyzes the last thirty days and raises an alert notification at
// most once per user per day.
func (s *wellnessService) Trend(ctx context.Context, userID uint) (dto.WellnessTrendResponse, error) {
	now := s.now().UTC()

	spanCtx, span := s.tracer.Start(ctx, "wellness.trend", trace.WithAttributes(
		attribute.Int64("wellness.user_id", int64(userID)),
	))
	defer span.End()

	history, err := s.history(spanCtx, userID, now, wellness.WindowDays)
	if err != nil {
		span.RecordError(err)
		return dto.WellnessTrendResponse{}, err
	}

	report, ok := wellness.Analyze(history, now)
	resp := dto.NewWellnessTrendResponse(report, ok)
	span.SetAttributes(attribute.Bool("wellness.sufficient", ok), attribute.Bool("wellness.alert", report.Alert))
	if ok && report.Alert {
		resp.Notified = s.raiseAlert(spanCtx, userID, report)
	}
	return resp, nil
}

func (s *wellnessService) history(ctx context.Context, userID uint, now time.Time, days int) ([]wellness.MoodEntry, error) {
	checkins, err := s.repo.ListSince(ctx, userID, fromDay(now, days))
	if err != nil {
		return nil, err
	}

	entries := make([]wellness.MoodEntry, 0, len(checkins))
	for _, checkin := range checkins {
		day, err := time.Parse(models.DayLayout, checkin.Day)
		if err != nil {
			s.logger.Warn().Err(err).Uint("checkin_id", checkin.ID).Msg("skipping check-in with malformed day")
			continue
		}
		entries = append(entries, wellness.MoodEntry{Date: day, Score: checkin.MoodScore})
	}
	return entries, nil
}

// raiseAlert reports whether a notification was published by this call.
func (s *wellnessService) raiseAlert(ctx context.Context, userID uint, report wellness.TrendReport) bool {
	day := report.AsOf.Format(models.DayLayout)
	if !s.claimAlert(ctx, userID, day) {
		return false
	}

	observability.WellnessAlerts().WithLabelValues(string(report.Level)).Inc()
	notifyBestEffort(ctx, s.notifier, s.logger, dto.NotificationCreateRequest{
		UserID:    userID,
		Title:     wellnessAlertTitle,
		Message:   report.Message,
		Type:      models.NotificationTypeAlert,
		ActionURL: "/peer-support",
		Metadata: map[string]interface{}{
			"kind":          "wellness_alert",
			"level":         string(report.Level),
			"trend":         string(report.Trend),
			"low_mood_days": report.LowMoodDays,
		},
	})

	if s.mail != nil && s.profiles != nil {
		profile, err := s.profiles.FindByUser(ctx, userID)
		if err == nil && profile.Email != "" {
			sendMailBestEffort(ctx, s.mail, s.logger, mailer.Message{
				Template: "wellness_alert",
				ToName:   profile.FullName,
				ToEmail:  profile.Email,
				Subject:  wellnessAlertTitle,
				Text:     fmt.Sprintf("Hi %s,\n\n%s\n\nPeer supporters are available at any time in the app.", profile.FullName, report.Message),
			})
		}
	}

	s.logger.Info().Uint("user_id", userID).Str("level", string(report.Level)).Msg("wellness alert raised")
	return true
}

// claimAlert returns true for the first alert of a user on a given day.
func (s *wellnessService) claimAlert(ctx context.Context, userID uint, day string) bool {
	if s.redis != nil {
		key := fmt.Sprintf("wellness:alert:%d:%s", userID, day)
		ok, err := s.redis.SetNX(ctx, key, 1, alertKeyTTL).Result()
		if err == nil {
			return ok
		}
		s.logger.Warn().Err(err).Msg("alert de-duplication via redis failed, using local state")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.alerted[userID] == day {
		return false
	}
	s.alerted[userID] = day
	return true
}

func fromDay(now time.Time, days int) string {
	return now.AddDate(0, 0, -(days - 1)).Format(models.DayLayout)
}

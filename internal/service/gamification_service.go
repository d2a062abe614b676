package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/gamification"
	"github.com/noah-isme/sprint-connect-api/internal/models"
	"github.com/noah-isme/sprint-connect-api/internal/observability"
	"github.com/noah-isme/sprint-connect-api/internal/repository"
)

// ErrUnknownAction is returned when awarding an action that has no point value.
var ErrUnknownAction = errors.New("unknown gamification action")

const leaderboardCachePrefix = "leaderboard:"

// GamificationService credits points and badges and reports progress.
type GamificationService interface {
	Award(ctx context.Context, userID uint, action gamification.Action, description string) (dto.PointsAward, error)
	AwardAmount(ctx context.Context, userID uint, action gamification.Action, points int, description string) (dto.PointsAward, error)
	RecordCheckin(ctx context.Context, userID uint, day time.Time) (int, dto.PointsAward, error)
	Stats(ctx context.Context, userID uint) (dto.GamificationStatsResponse, error)
	Leaderboard(ctx context.Context, timeframe string, limit int) ([]dto.LeaderboardEntry, error)
	Badges(ctx context.Context) ([]dto.BadgeResponse, error)
	UserBadges(ctx context.Context, userID uint) ([]dto.UserBadgeResponse, error)
	Transactions(ctx context.Context, userID uint, limit int) ([]dto.TransactionResponse, error)
	EnsureCatalogue(ctx context.Context) (int64, error)
}

type gamificationService struct {
	repo     repository.GamificationRepository
	profiles repository.ProfileRepository
	notifier Notifier
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewGamificationService constructs the points and badges service. The notifier
// and cache are optional.
func NewGamificationService(repo repository.GamificationRepository, profiles repository.ProfileRepository, notifier Notifier, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) GamificationService {
	return &gamificationService{
		repo:     repo,
		profiles: profiles,
		notifier: notifier,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "gamification_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/sprint-connect-api/internal/service/gamification"),
		now:      time.Now,
	}
}

func (s *gamificationService) Award(ctx context.Context, userID uint, action gamification.Action, description string) (dto.PointsAward, error) {
	points, ok := gamification.Points(action)
	if !ok {
		return dto.PointsAward{}, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	return s.AwardAmount(ctx, userID, action, points, description)
}

// AwardAmount credits an explicit number of points for an action, for
// actions whose value scales such as study hours and streak bonuses.
func (s *gamificationService) AwardAmount(ctx context.Context, userID uint, action gamification.Action, points int, description string) (dto.PointsAward, error) {
	if userID == 0 {
		return dto.PointsAward{}, errors.New("user id is required")
	}
	if strings.TrimSpace(description) == "" {
		description = gamification.Describe(action)
	}

	spanCtx, span := s.tracer.Start(ctx, "gamification.award", trace.WithAttributes(
		attribute.Int64("gamification.user_id", int64(userID)),
		attribute.String("gamification.action", string(action)),
		attribute.Int("gamification.points", points),
	))
	defer span.End()

	before := 1
	if current, err := s.repo.Points(spanCtx, userID); err == nil {
		before = current.Level
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		return dto.PointsAward{}, err
	}

	balance, err := s.repo.Credit(spanCtx, userID, points, string(action), description, s.now().UTC())
	if err != nil {
		span.RecordError(err)
		return dto.PointsAward{}, err
	}
	observability.PointsAwarded().WithLabelValues(string(action)).Add(float64(points))

	award := dto.PointsAward{
		Action:      string(action),
		Points:      points,
		TotalPoints: balance.Points,
		Level:       balance.Level,
		LeveledUp:   balance.Level > before,
	}

	badges, err := s.evaluateBadges(spanCtx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to evaluate badges")
	}
	award.BadgesEarned = badges

	s.invalidateLeaderboard(spanCtx)

	return award, nil
}

// RecordCheckin advances the daily check-in streak and credits the check-in
// together with any streak bonus. It returns the new streak length.
func (s *gamificationService) RecordCheckin(ctx context.Context, userID uint, day time.Time) (int, dto.PointsAward, error) {
	current, err := s.repo.Points(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, dto.PointsAward{}, err
	}

	var last time.Time
	if current.LastCheckinDay != "" {
		if parsed, parseErr := time.Parse(models.DayLayout, current.LastCheckinDay); parseErr == nil {
			last = parsed
		}
	}

	today := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	update := gamification.NextStreak(current.StreakDays, last, today)
	if err := s.repo.UpdateStreak(ctx, userID, update.Days, today.Format(models.DayLayout)); err != nil {
		return 0, dto.PointsAward{}, err
	}

	award, err := s.Award(ctx, userID, gamification.ActionDailyCheckin, "Daily wellness check-in")
	if err != nil {
		return 0, dto.PointsAward{}, err
	}

	if update.Bonus > 0 {
		bonus, err := s.AwardAmount(ctx, userID, gamification.ActionStreakBonus, update.Bonus, fmt.Sprintf("%d day streak bonus!", update.Days))
		if err != nil {
			return 0, dto.PointsAward{}, err
		}
		award = mergeAwards(award, bonus)
	}

	return update.Days, award, nil
}

func mergeAwards(first, second dto.PointsAward) dto.PointsAward {
	merged := second
	merged.Action = first.Action
	merged.Points = first.Points + second.Points
	merged.LeveledUp = first.LeveledUp || second.LeveledUp
	merged.BadgesEarned = append(append([]dto.BadgeResponse{}, first.BadgesEarned...), second.BadgesEarned...)
	if len(merged.BadgesEarned) == 0 {
		merged.BadgesEarned = nil
	}
	return merged
}

func (s *gamificationService) evaluateBadges(ctx context.Context, userID uint) ([]dto.BadgeResponse, error) {
	stats, err := s.repo.ActivityStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	catalogue, err := s.repo.ListBadges(ctx)
	if err != nil {
		return nil, err
	}
	if len(catalogue) == 0 {
		return nil, nil
	}

	owned, err := s.repo.UserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	ownedCodes := make(map[string]bool, len(owned))
	for _, item := range owned {
		ownedCodes[item.Badge.Code] = true
	}

	byCode := make(map[string]models.Badge, len(catalogue))
	candidates := make([]gamification.Badge, 0, len(catalogue))
	for _, badge := range catalogue {
		byCode[badge.Code] = badge
		candidates = append(candidates, gamification.Badge{Code: badge.Code, Name: badge.Name, Criteria: badge.Criteria.Data()})
	}

	var earned []dto.BadgeResponse
	for _, candidate := range gamification.Evaluate(candidates, stats, ownedCodes) {
		badge := byCode[candidate.Code]
		record := models.UserBadge{UserID: userID, BadgeID: badge.ID, Progress: 1, EarnedAt: s.now().UTC()}
		created, err := s.repo.AwardBadge(ctx, &record)
		if err != nil {
			return earned, err
		}
		if !created {
			continue
		}

		observability.BadgesAwarded().WithLabelValues(badge.Code).Inc()
		earned = append(earned, dto.NewBadgeResponse(badge))
		s.logger.Info().Uint("user_id", userID).Str("badge", badge.Code).Msg("badge awarded")

		if s.notifier != nil {
			if _, err := s.notifier.Publish(ctx, dto.NotificationCreateRequest{
				UserID:  userID,
				Title:   fmt.Sprintf("New Badge Earned: %s %s!", badge.Icon, badge.Name),
				Message: badge.Description,
				Type:    models.NotificationTypeAchievement,
				Metadata: map[string]interface{}{
					"badge_code": badge.Code,
				},
			}); err != nil {
				s.logger.Warn().Err(err).Str("badge", badge.Code).Msg("failed to notify badge award")
			}
		}
	}

	return earned, nil
}

func (s *gamificationService) Stats(ctx context.Context, userID uint) (dto.GamificationStatsResponse, error) {
	balance, err := s.repo.Points(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.GamificationStatsResponse{}, err
		}
		balance = models.UserPoints{UserID: userID, Level: 1}
	}

	badges, err := s.repo.CountUserBadges(ctx, userID)
	if err != nil {
		return dto.GamificationStatsResponse{}, err
	}

	above, err := s.repo.CountAbove(ctx, balance.Points)
	if err != nil {
		return dto.GamificationStatsResponse{}, err
	}

	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return dto.GamificationStatsResponse{}, err
	}

	recent, err := s.repo.Transactions(ctx, userID, 10)
	if err != nil {
		return dto.GamificationStatsResponse{}, err
	}

	return dto.GamificationStatsResponse{
		Points:             balance.Points,
		Level:              balance.Level,
		TotalPointsEarned:  balance.TotalPointsEarned,
		PointsToNextLevel:  gamification.PointsToNextLevel(balance.TotalPointsEarned),
		StreakDays:         balance.StreakDays,
		BadgesCount:        badges,
		Rank:               above + 1,
		TotalUsers:         total,
		RecentTransactions: dto.NewTransactionResponseSlice(recent),
	}, nil
}

func (s *gamificationService) Leaderboard(ctx context.Context, timeframe string, limit int) ([]dto.LeaderboardEntry, error) {
	tf, err := gamification.ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("%s%s:%d", leaderboardCachePrefix, tf, limit)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var entries []dto.LeaderboardEntry
			if unmarshalErr := json.Unmarshal([]byte(cached), &entries); unmarshalErr == nil {
				observability.CacheLookups().WithLabelValues("leaderboard", "hit").Inc()
				return entries, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read leaderboard cache")
		}
		observability.CacheLookups().WithLabelValues("leaderboard", "miss").Inc()
	}

	var since *time.Time
	if from, bounded := tf.Since(s.now().UTC()); bounded {
		since = &from
	}

	rows, err := s.repo.Leaderboard(ctx, since, limit)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uint, 0, len(rows))
	for _, row := range rows {
		userIDs = append(userIDs, row.UserID)
	}
	profiles, err := s.profiles.FindByUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entry := dto.LeaderboardEntry{Rank: i + 1, UserID: row.UserID, Points: row.Points, Level: row.Level}
		if profile, ok := profiles[row.UserID]; ok {
			entry.FullName = profile.FullName
			entry.AvatarEmoji = profile.AvatarEmoji
		}
		entries = append(entries, entry)
	}

	if s.cache != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store leaderboard cache")
			}
		}
	}

	return entries, nil
}

func (s *gamificationService) invalidateLeaderboard(ctx context.Context) {
	if s.cache == nil {
		return
	}

	iter := s.cache.Scan(ctx, 0, leaderboardCachePrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to scan leaderboard cache")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate leaderboard cache")
	}
}

func (s *gamificationService) Badges(ctx context.Context) ([]dto.BadgeResponse, error) {
	badges, err := s.repo.ListBadges(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewBadgeResponseSlice(badges), nil
}

func (s *gamificationService) UserBadges(ctx context.Context, userID uint) ([]dto.UserBadgeResponse, error) {
	items, err := s.repo.UserBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserBadgeResponseSlice(items), nil
}

func (s *gamificationService) Transactions(ctx context.Context, userID uint, limit int) ([]dto.TransactionResponse, error) {
	items, err := s.repo.Transactions(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewTransactionResponseSlice(items), nil
}

// EnsureCatalogue writes the built-in badge catalogue, updating existing rows
// by code.
func (s *gamificationService) EnsureCatalogue(ctx context.Context) (int64, error) {
	catalogue := gamification.Catalogue()
	badges := make([]models.Badge, 0, len(catalogue))
	for _, badge := range catalogue {
		badges = append(badges, models.Badge{
			Code:           badge.Code,
			Name:           badge.Name,
			Description:    badge.Description,
			Icon:           badge.Icon,
			Category:       badge.Category,
			PointsRequired: badge.PointsRequired,
			Criteria:       datatypes.NewJSONType(badge.Criteria),
			Rarity:         string(badge.Rarity),
		})
	}

	affected, err := s.repo.UpsertBadges(ctx, badges)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("badges", affected).Msg("badge catalogue ensured")
	return affected, nil
}

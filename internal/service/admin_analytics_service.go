package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/models"
	"github.com/noah-isme/sprint-connect-api/internal/observability"
	"github.com/noah-isme/sprint-connect-api/internal/repository"
)

const adminStatsCacheKey = "analytics:admin_stats"

// AdminAnalyticsService aggregates platform statistics for staff.
type AdminAnalyticsService interface {
	GetStats(ctx context.Context) (dto.AdminStatsResponse, error)
}

type adminAnalyticsService struct {
	repo     repository.AdminAnalyticsRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAdminAnalyticsService constructs the analytics service.
func NewAdminAnalyticsService(repo repository.AdminAnalyticsRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AdminAnalyticsService {
	return &adminAnalyticsService{
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "admin_analytics_service").Logger(),
		now:      time.Now,
	}
}

func (s *adminAnalyticsService) GetStats(ctx context.Context) (dto.AdminStatsResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/sprint-connect-api/internal/service/admin_analytics")
	ctx, span := tracer.Start(ctx, "analytics.aggregate")
	span.SetAttributes(attribute.String("analytics.cache_key", adminStatsCacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, adminStatsCacheKey).Result()
		if err == nil {
			var response dto.AdminStatsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				observability.CacheLookups().WithLabelValues("admin_stats", "hit").Inc()
				span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read analytics cache")
			span.RecordError(err)
		}
		observability.CacheLookups().WithLabelValues("admin_stats", "miss").Inc()
	}

	stats, err := s.collect(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "collect_stats_failed")
		return dto.AdminStatsResponse{}, err
	}
	span.SetAttributes(
		attribute.Int64("analytics.total_users", stats.TotalUsers),
		attribute.Int64("analytics.checkins_today", stats.WellnessCheckinsToday),
	)

	if s.cache != nil {
		payload, err := json.Marshal(stats)
		if err == nil {
			if err := s.cache.Set(ctx, adminStatsCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store analytics cache")
				span.RecordError(err)
			}
		}
	}

	return stats, nil
}

func (s *adminAnalyticsService) collect(ctx context.Context) (dto.AdminStatsResponse, error) {
	now := s.now().UTC()
	weekAgo := now.AddDate(0, 0, -7)
	stats := dto.AdminStatsResponse{GeneratedAt: now}

	var err error
	if stats.TotalUsers, err = s.repo.CountProfiles(ctx); err != nil {
		return stats, err
	}
	if stats.ActiveStudyCircles, err = s.repo.CountActiveCircles(ctx); err != nil {
		return stats, err
	}
	if stats.WellnessCheckinsToday, err = s.repo.CountCheckinsOnDay(ctx, now.Format(models.DayLayout)); err != nil {
		return stats, err
	}
	if stats.CommunityPostsThisWeek, err = s.repo.CountPostsSince(ctx, weekAgo); err != nil {
		return stats, err
	}

	avg, err := s.repo.AverageMoodSince(ctx, weekAgo.Format(models.DayLayout))
	if err != nil {
		return stats, err
	}
	if avg != nil {
		stats.AverageMoodScore = roundTo(*avg, 2)
	}

	if stats.UpcomingEvents, err = s.repo.CountUpcomingEvents(ctx, now); err != nil {
		return stats, err
	}
	if stats.OpenPeerSupportRequests, err = s.repo.CountOpenSupportRequests(ctx); err != nil {
		return stats, err
	}
	return stats, nil
}

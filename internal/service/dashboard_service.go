package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/models"
	"github.com/noah-isme/sprint-connect-api/internal/observability"
	"github.com/noah-isme/sprint-connect-api/internal/repository"
	"github.com/noah-isme/sprint-connect-api/internal/wellness"
)

const dashboardListSize = 5

// DashboardService produces the aggregated home screen of a student.
type DashboardService interface {
	GetDashboard(ctx context.Context, userID uint) (dto.DashboardResponse, error)
	Invalidate(ctx context.Context, userID uint)
}

// DashboardSources are the repositories the dashboard reads from.
type DashboardSources struct {
	Profiles      repository.ProfileRepository
	Points        repository.GamificationRepository
	Wellness      repository.WellnessRepository
	Circles       repository.CircleRepository
	Events        repository.EventRepository
	Community     repository.CommunityRepository
	Notifications repository.NotificationRepository
}

type dashboardService struct {
	src      DashboardSources
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDashboardService builds the dashboard aggregator. The redis client is
// optional.
func NewDashboardService(src DashboardSources, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		src:      src,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		now:      time.Now,
	}
}

func dashboardCacheKey(userID uint) string {
	return fmt.Sprintf("dashboard:user:%d", userID)
}

func (s *dashboardService) GetDashboard(ctx context.Context, userID uint) (dto.DashboardResponse, error) {
	cacheKey := dashboardCacheKey(userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				observability.CacheLookups().WithLabelValues("dashboard", "hit").Inc()
				s.logger.Debug().Uint("user_id", userID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
		observability.CacheLookups().WithLabelValues("dashboard", "miss").Inc()
	}

	response, err := s.build(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

// Invalidate drops the cached dashboard so the next read rebuilds it.
func (s *dashboardService) Invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey(userID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to invalidate dashboard cache")
	}
}

func (s *dashboardService) build(ctx context.Context, userID uint) (dto.DashboardResponse, error) {
	now := s.now().UTC()
	response := dto.DashboardResponse{
		Points:         dto.DashboardPoints{Level: 1},
		ActiveCircles:  []dto.CircleResponse{},
		RecentCheckins: []dto.CheckinView{},
		UpcomingEvents: []dto.EventResponse{},
		RecentPosts:    []dto.PostResponse{},
		GeneratedAt:    now,
	}

	profile, err := s.src.Profiles.FindByUser(ctx, userID)
	switch {
	case err == nil:
		view := dto.NewProfileResponse(profile, true)
		response.Profile = &view
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return dto.DashboardResponse{}, err
	}

	balance, err := s.src.Points.Points(ctx, userID)
	switch {
	case err == nil:
		response.Points = dto.DashboardPoints{Points: balance.Points, Level: balance.Level, StreakDays: balance.StreakDays}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return dto.DashboardResponse{}, err
	}

	checkins, err := s.src.Wellness.ListSince(ctx, userID, fromDay(now, wellness.SegmentSize))
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	history := make([]wellness.MoodEntry, 0, len(checkins))
	for _, checkin := range checkins {
		if day, parseErr := time.Parse(models.DayLayout, checkin.Day); parseErr == nil {
			history = append(history, wellness.MoodEntry{Date: day, Score: checkin.MoodScore})
		}
	}
	response.Wellness = dto.NewWellnessStatsResponse(wellness.Summarize(history, now))
	recent := dto.NewCheckinViewSlice(checkins)
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	response.RecentCheckins = recent

	circles, err := s.src.Circles.ListByMember(ctx, userID, models.CircleStatusActive)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	response.ActiveCircles = dto.NewCircleResponseSlice(circles)

	events, err := s.src.Events.List(ctx, repository.EventFilter{UpcomingFrom: &now, Limit: dashboardListSize})
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	response.UpcomingEvents = dto.NewEventResponseSlice(events)

	posts, _, err := s.src.Community.ListPosts(ctx, repository.PostFilter{Page: 1, PageSize: dashboardListSize})
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	response.RecentPosts = dto.NewPostResponseSlice(posts)

	unread, err := s.src.Notifications.CountUnread(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	response.UnreadCount = unread

	return response, nil
}

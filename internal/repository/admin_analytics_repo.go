package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// AdminAnalyticsRepository supplies platform-wide counters for staff.
type AdminAnalyticsRepository interface {
	CountProfiles(ctx context.Context) (int64, error)
	CountActiveCircles(ctx context.Context) (int64, error)
	CountCheckinsOnDay(ctx context.Context, day string) (int64, error)
	CountPostsSince(ctx context.Context, since time.Time) (int64, error)
	AverageMoodSince(ctx context.Context, fromDay string) (*float64, error)
	CountUpcomingEvents(ctx context.Context, from time.Time) (int64, error)
	CountOpenSupportRequests(ctx context.Context) (int64, error)
}

type adminAnalyticsRepository struct {
	db *gorm.DB
}

// NewAdminAnalyticsRepository constructs the analytics repository.
func NewAdminAnalyticsRepository(db *gorm.DB) AdminAnalyticsRepository {
	return &adminAnalyticsRepository{db: db}
}

func (r *adminAnalyticsRepository) count(ctx context.Context, model interface{}, query string, args ...interface{}) (int64, error) {
	var total int64
	tx := r.db.WithContext(ctx).Model(model)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	err := tx.Count(&total).Error
	return total, err
}

func (r *adminAnalyticsRepository) CountProfiles(ctx context.Context) (int64, error) {
	return r.count(ctx, &models.Profile{}, "")
}

func (r *adminAnalyticsRepository) CountActiveCircles(ctx context.Context) (int64, error) {
	return r.count(ctx, &models.StudyCircle{}, "status = ?", models.CircleStatusActive)
}

func (r *adminAnalyticsRepository) CountCheckinsOnDay(ctx context.Context, day string) (int64, error) {
	return r.count(ctx, &models.WellnessCheckin{}, "day = ?", day)
}

func (r *adminAnalyticsRepository) CountPostsSince(ctx context.Context, since time.Time) (int64, error) {
	return r.count(ctx, &models.CommunityPost{}, "created_at >= ?", since)
}

func (r *adminAnalyticsRepository) AverageMoodSince(ctx context.Context, fromDay string) (*float64, error) {
	var row struct {
		Avg *float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.WellnessCheckin{}).
		Select("AVG(mood_score) AS avg").
		Where("day >= ?", fromDay).
		Scan(&row).Error
	return row.Avg, err
}

func (r *adminAnalyticsRepository) CountUpcomingEvents(ctx context.Context, from time.Time) (int64, error) {
	return r.count(ctx, &models.Event{}, "event_date >= ?", from)
}

func (r *adminAnalyticsRepository) CountOpenSupportRequests(ctx context.Context) (int64, error) {
	return r.count(ctx, &models.PeerSupportRequest{}, "status = ?", models.PeerSupportPending)
}

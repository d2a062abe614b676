package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// WellnessRepository persists daily mood check-ins. Days are formatted with
// models.DayLayout so that range filters compare lexically.
type WellnessRepository interface {
	FindByDay(ctx context.Context, userID uint, day string) (models.WellnessCheckin, error)
	Create(ctx context.Context, checkin *models.WellnessCheckin) error
	Upsert(ctx context.Context, checkin *models.WellnessCheckin) (bool, error)
	ListSince(ctx context.Context, userID uint, fromDay string) ([]models.WellnessCheckin, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	CountOnDay(ctx context.Context, day string) (int64, error)
	AverageSince(ctx context.Context, fromDay string) (float64, error)
}

type wellnessRepository struct {
	db *gorm.DB
}

// NewWellnessRepository constructs the repository implementation.
func NewWellnessRepository(db *gorm.DB) WellnessRepository {
	return &wellnessRepository{db: db}
}

func (r *wellnessRepository) FindByDay(ctx context.Context, userID uint, day string) (models.WellnessCheckin, error) {
	var checkin models.WellnessCheckin
	if err := r.db.WithContext(ctx).Where("user_id = ? AND day = ?", userID, day).First(&checkin).Error; err != nil {
		return models.WellnessCheckin{}, err
	}
	return checkin, nil
}

func (r *wellnessRepository) Create(ctx context.Context, checkin *models.WellnessCheckin) error {
	return r.db.WithContext(ctx).Create(checkin).Error
}

// Upsert stores the check-in for its user and day. It reports true when the
// row was inserted and false when an existing row for that day was updated.
// On return checkin holds the stored row.
func (r *wellnessRepository) Upsert(ctx context.Context, checkin *models.WellnessCheckin) (bool, error) {
	db := r.db.WithContext(ctx)

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoNothing: true,
	}).Create(checkin)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	err := db.Model(&models.WellnessCheckin{}).
		Where("user_id = ? AND day = ?", checkin.UserID, checkin.Day).
		Updates(map[string]interface{}{
			"mood_score":  checkin.MoodScore,
			"mood_emoji":  checkin.MoodEmoji,
			"note":        checkin.Note,
			"sprint_week": checkin.SprintWeek,
			"updated_at":  time.Now().UTC(),
		}).Error
	if err != nil {
		return false, err
	}

	var stored models.WellnessCheckin
	if err := db.Where("user_id = ? AND day = ?", checkin.UserID, checkin.Day).First(&stored).Error; err != nil {
		return false, err
	}
	*checkin = stored
	return false, nil
}

// ListSince returns check-ins on or after fromDay, oldest first.
func (r *wellnessRepository) ListSince(ctx context.Context, userID uint, fromDay string) ([]models.WellnessCheckin, error) {
	var checkins []models.WellnessCheckin
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND day >= ?", userID, fromDay).
		Order("day ASC").
		Find(&checkins).Error; err != nil {
		return nil, err
	}
	return checkins, nil
}

func (r *wellnessRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.WellnessCheckin{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}

func (r *wellnessRepository) CountOnDay(ctx context.Context, day string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.WellnessCheckin{}).Where("day = ?", day).Count(&total).Error
	return total, err
}

func (r *wellnessRepository) AverageSince(ctx context.Context, fromDay string) (float64, error) {
	var result struct {
		Avg *float64
	}
	err := r.db.WithContext(ctx).Model(&models.WellnessCheckin{}).
		Select("AVG(mood_score) AS avg").
		Where("day >= ?", fromDay).
		Scan(&result).Error
	if err != nil || result.Avg == nil {
		return 0, err
	}
	return *result.Avg, nil
}

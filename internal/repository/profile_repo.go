package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// ProfileRepository persists student profiles.
type ProfileRepository interface {
	FindByUser(ctx context.Context, userID uint) (models.Profile, error)
	FindByUsers(ctx context.Context, userIDs []uint) (map[uint]models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
	ListOthers(ctx context.Context, excludeUserID uint, limit int) ([]models.Profile, error)
	Count(ctx context.Context) (int64, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository constructs the repository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByUser(ctx context.Context, userID uint) (models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

func (r *profileRepository) FindByUsers(ctx context.Context, userIDs []uint) (map[uint]models.Profile, error) {
	out := make(map[uint]models.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var profiles []models.Profile
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for _, profile := range profiles {
		out[profile.UserID] = profile
	}
	return out, nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"full_name", "email", "student_number", "nationality", "native_language",
			"program", "year", "bio", "avatar_emoji", "interests", "preferences", "updated_at",
		}),
	}).Create(profile).Error
}

func (r *profileRepository) ListOthers(ctx context.Context, excludeUserID uint, limit int) ([]models.Profile, error) {
	limit = normalizeLimit(limit, 200, 500)

	var profiles []models.Profile
	if err := r.db.WithContext(ctx).
		Where("user_id <> ?", excludeUserID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Profile{}).Count(&total).Error
	return total, err
}

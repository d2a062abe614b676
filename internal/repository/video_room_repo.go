package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// VideoRoomRepository persists circle meeting rooms.
type VideoRoomRepository interface {
	FindActiveByCircle(ctx context.Context, circleID uint) (models.VideoRoom, error)
	Create(ctx context.Context, room *models.VideoRoom) error
	Touch(ctx context.Context, room *models.VideoRoom, at time.Time) error
}

type videoRoomRepository struct {
	db *gorm.DB
}

// NewVideoRoomRepository constructs the repository implementation.
func NewVideoRoomRepository(db *gorm.DB) VideoRoomRepository {
	return &videoRoomRepository{db: db}
}

func (r *videoRoomRepository) FindActiveByCircle(ctx context.Context, circleID uint) (models.VideoRoom, error) {
	var room models.VideoRoom
	if err := r.db.WithContext(ctx).
		Where("circle_id = ? AND is_active = ?", circleID, true).
		Order("id DESC").
		First(&room).Error; err != nil {
		return models.VideoRoom{}, err
	}
	return room, nil
}

func (r *videoRoomRepository) Create(ctx context.Context, room *models.VideoRoom) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *videoRoomRepository) Touch(ctx context.Context, room *models.VideoRoom, at time.Time) error {
	room.LastUsedAt = &at
	return r.db.WithContext(ctx).Model(room).Update("last_used_at", at).Error
}

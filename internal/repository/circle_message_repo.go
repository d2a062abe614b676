package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// CircleMessageRepository persists circle live room messages.
type CircleMessageRepository interface {
	Save(ctx context.Context, message *models.CircleMessage) error
	ListByCircle(ctx context.Context, circleID uint, before time.Time, limit int) ([]models.CircleMessage, error)
}

type circleMessageRepository struct {
	db *gorm.DB
}

// NewCircleMessageRepository constructs the repository implementation.
func NewCircleMessageRepository(db *gorm.DB) CircleMessageRepository {
	return &circleMessageRepository{db: db}
}

func (r *circleMessageRepository) Save(ctx context.Context, message *models.CircleMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ListByCircle returns the newest messages first.
func (r *circleMessageRepository) ListByCircle(ctx context.Context, circleID uint, before time.Time, limit int) ([]models.CircleMessage, error) {
	limit = normalizeLimit(limit, 50, 100)

	query := r.db.WithContext(ctx).Where("circle_id = ?", circleID)
	if !before.IsZero() {
		query = query.Where("created_at < ?", before)
	}

	var messages []models.CircleMessage
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

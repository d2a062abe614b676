package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// ResourceRepository persists circle resources and their upvotes.
type ResourceRepository interface {
	ListByCircle(ctx context.Context, circleID uint) ([]models.CircleResource, error)
	FindByID(ctx context.Context, id uint) (models.CircleResource, error)
	Create(ctx context.Context, resource *models.CircleResource) error
	Upvote(ctx context.Context, resourceID, userID uint) (models.CircleResource, error)
}

type resourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository constructs the repository implementation.
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) ListByCircle(ctx context.Context, circleID uint) ([]models.CircleResource, error) {
	var resources []models.CircleResource
	if err := r.db.WithContext(ctx).
		Where("circle_id = ?", circleID).
		Order("upvotes DESC, created_at DESC").
		Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *resourceRepository) FindByID(ctx context.Context, id uint) (models.CircleResource, error) {
	var resource models.CircleResource
	if err := r.db.WithContext(ctx).First(&resource, id).Error; err != nil {
		return models.CircleResource{}, err
	}
	return resource, nil
}

func (r *resourceRepository) Create(ctx context.Context, resource *models.CircleResource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *resourceRepository) Upvote(ctx context.Context, resourceID, userID uint) (models.CircleResource, error) {
	var resource models.CircleResource
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.ResourceUpvote{}).Where("resource_id = ? AND user_id = ?", resourceID, userID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicate
		}
		if err := tx.Create(&models.ResourceUpvote{ResourceID: resourceID, UserID: userID}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.CircleResource{}).Where("id = ?", resourceID).
			UpdateColumn("upvotes", gorm.Expr("upvotes + ?", 1)).Error; err != nil {
			return err
		}
		return tx.First(&resource, resourceID).Error
	})
	return resource, err
}

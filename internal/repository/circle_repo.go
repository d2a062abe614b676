package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// CircleFilter narrows circle listings.
type CircleFilter struct {
	CourseID *uint
	Status   string
}

// CircleRepository persists study circles and their memberships.
type CircleRepository interface {
	List(ctx context.Context, filter CircleFilter) ([]models.StudyCircle, error)
	FindByID(ctx context.Context, id uint) (models.StudyCircle, error)
	ListActiveByCourse(ctx context.Context, courseID uint) ([]models.StudyCircle, error)
	ListByMember(ctx context.Context, userID uint, status string) ([]models.StudyCircle, error)
	Members(ctx context.Context, circleID uint) ([]models.CircleMember, error)
	IsMember(ctx context.Context, circleID, userID uint) (bool, error)
	CreateWithLeader(ctx context.Context, circle *models.StudyCircle, leaderID uint) error
	AddMember(ctx context.Context, circleID, userID uint) (models.CircleMember, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type circleRepository struct {
	db *gorm.DB
}

// NewCircleRepository constructs the repository implementation.
func NewCircleRepository(db *gorm.DB) CircleRepository {
	return &circleRepository{db: db}
}

func (r *circleRepository) List(ctx context.Context, filter CircleFilter) ([]models.StudyCircle, error) {
	query := r.db.WithContext(ctx).Model(&models.StudyCircle{}).Preload("Members")
	if filter.CourseID != nil {
		query = query.Where("course_id = ?", *filter.CourseID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var circles []models.StudyCircle
	if err := query.Order("id ASC").Find(&circles).Error; err != nil {
		return nil, err
	}
	return circles, nil
}

func (r *circleRepository) FindByID(ctx context.Context, id uint) (models.StudyCircle, error) {
	var circle models.StudyCircle
	if err := r.db.WithContext(ctx).Preload("Members").First(&circle, id).Error; err != nil {
		return models.StudyCircle{}, err
	}
	return circle, nil
}

func (r *circleRepository) ListActiveByCourse(ctx context.Context, courseID uint) ([]models.StudyCircle, error) {
	return r.List(ctx, CircleFilter{CourseID: &courseID, Status: models.CircleStatusActive})
}

func (r *circleRepository) ListByMember(ctx context.Context, userID uint, status string) ([]models.StudyCircle, error) {
	query := r.db.WithContext(ctx).
		Preload("Members").
		Joins("JOIN circle_members ON circle_members.circle_id = study_circles.id").
		Where("circle_members.user_id = ?", userID)
	if status != "" {
		query = query.Where("study_circles.status = ?", status)
	}

	var circles []models.StudyCircle
	if err := query.Order("study_circles.id ASC").Find(&circles).Error; err != nil {
		return nil, err
	}
	return circles, nil
}

func (r *circleRepository) Members(ctx context.Context, circleID uint) ([]models.CircleMember, error) {
	var members []models.CircleMember
	if err := r.db.WithContext(ctx).
		Where("circle_id = ?", circleID).
		Order("joined_at ASC, id ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *circleRepository) IsMember(ctx context.Context, circleID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CircleMember{}).
		Where("circle_id = ? AND user_id = ?", circleID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *circleRepository) CreateWithLeader(ctx context.Context, circle *models.StudyCircle, leaderID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Members").Create(circle).Error; err != nil {
			return err
		}
		leader := models.CircleMember{
			CircleID: circle.ID,
			UserID:   leaderID,
			Role:     models.CircleRoleLeader,
			JoinedAt: time.Now().UTC(),
		}
		if err := tx.Create(&leader).Error; err != nil {
			return err
		}
		circle.Members = []models.CircleMember{leader}
		return nil
	})
}

// AddMember joins the user to the circle. The circle row stays locked from the
// capacity check until the insert commits.
func (r *circleRepository) AddMember(ctx context.Context, circleID, userID uint) (models.CircleMember, error) {
	var member models.CircleMember
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var circle models.StudyCircle
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&circle, circleID).Error; err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.CircleMember{}).Where("circle_id = ? AND user_id = ?", circleID, userID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicate
		}

		var size int64
		if err := tx.Model(&models.CircleMember{}).Where("circle_id = ?", circleID).Count(&size).Error; err != nil {
			return err
		}
		if int(size) >= circle.MaxMembers {
			return ErrCapacityReached
		}

		member = models.CircleMember{
			CircleID: circleID,
			UserID:   userID,
			Role:     models.CircleRoleMember,
			JoinedAt: time.Now().UTC(),
		}
		return tx.Create(&member).Error
	})
	return member, err
}

func (r *circleRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.StudyCircle{}).Where("status = ?", status).Count(&total).Error
	return total, err
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// CourseRepository persists courses.
type CourseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id uint) (models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	FirstOrCreateByCode(ctx context.Context, course *models.Course) (bool, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository constructs the repository implementation.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := r.db.WithContext(ctx).Order("code ASC, sprint_number ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepository) FindByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

// FirstOrCreateByCode inserts the course unless one with the same code and
// sprint number exists, and reports whether a row was created.
func (r *courseRepository) FirstOrCreateByCode(ctx context.Context, course *models.Course) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("code = ? AND sprint_number = ?", course.Code, course.SprintNumber).
		FirstOrCreate(course)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// PomodoroTotals aggregates completed sessions.
type PomodoroTotals struct {
	Sessions       int64
	Minutes        int64
	FirstStartedAt *time.Time
}

// ProductivityRepository persists Pomodoro and study sessions.
type ProductivityRepository interface {
	CreatePomodoro(ctx context.Context, session *models.PomodoroSession) error
	FindPomodoro(ctx context.Context, id uint) (models.PomodoroSession, error)
	CompletePomodoro(ctx context.Context, session *models.PomodoroSession, at time.Time) error
	LatestOpenPomodoro(ctx context.Context, userID uint) (models.PomodoroSession, error)
	PomodoroTotals(ctx context.Context, userID uint) (PomodoroTotals, error)
	CountCompletedSince(ctx context.Context, userID uint, since time.Time) (int64, error)
	CreateStudySession(ctx context.Context, session *models.StudySession) error
	ListStudySessions(ctx context.Context, userID uint, limit int) ([]models.StudySession, error)
}

type productivityRepository struct {
	db *gorm.DB
}

// NewProductivityRepository constructs the repository implementation.
func NewProductivityRepository(db *gorm.DB) ProductivityRepository {
	return &productivityRepository{db: db}
}

func (r *productivityRepository) CreatePomodoro(ctx context.Context, session *models.PomodoroSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *productivityRepository) FindPomodoro(ctx context.Context, id uint) (models.PomodoroSession, error) {
	var session models.PomodoroSession
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return models.PomodoroSession{}, err
	}
	return session, nil
}

func (r *productivityRepository) CompletePomodoro(ctx context.Context, session *models.PomodoroSession, at time.Time) error {
	session.EndedAt = &at
	session.Completed = true
	return r.db.WithContext(ctx).Model(session).Updates(map[string]interface{}{
		"ended_at":  at,
		"completed": true,
	}).Error
}

func (r *productivityRepository) LatestOpenPomodoro(ctx context.Context, userID uint) (models.PomodoroSession, error) {
	var session models.PomodoroSession
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND completed = ? AND ended_at IS NULL", userID, false).
		Order("started_at DESC, id DESC").
		First(&session).Error; err != nil {
		return models.PomodoroSession{}, err
	}
	return session, nil
}

func (r *productivityRepository) PomodoroTotals(ctx context.Context, userID uint) (PomodoroTotals, error) {
	var totals PomodoroTotals
	base := r.db.WithContext(ctx).Model(&models.PomodoroSession{}).Where("user_id = ? AND completed = ?", userID, true)

	var sums struct {
		Sessions int64
		Minutes  int64
	}
	if err := base.Session(&gorm.Session{}).
		Select("COUNT(*) AS sessions, COALESCE(SUM(duration_minutes), 0) AS minutes").
		Scan(&sums).Error; err != nil {
		return PomodoroTotals{}, err
	}
	totals.Sessions = sums.Sessions
	totals.Minutes = sums.Minutes

	if totals.Sessions > 0 {
		var first models.PomodoroSession
		if err := base.Session(&gorm.Session{}).Order("started_at ASC").First(&first).Error; err != nil {
			return PomodoroTotals{}, err
		}
		totals.FirstStartedAt = &first.StartedAt
	}
	return totals, nil
}

func (r *productivityRepository) CountCompletedSince(ctx context.Context, userID uint, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.PomodoroSession{}).
		Where("user_id = ? AND completed = ? AND ended_at >= ?", userID, true, since).
		Count(&total).Error
	return total, err
}

func (r *productivityRepository) CreateStudySession(ctx context.Context, session *models.StudySession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *productivityRepository) ListStudySessions(ctx context.Context, userID uint, limit int) ([]models.StudySession, error) {
	var sessions []models.StudySession
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC, id DESC").
		Limit(normalizeLimit(limit, 20, 100)).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/sprint-connect-api/internal/gamification"
	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// GamificationRepository persists balances, the points ledger and badges.
type GamificationRepository interface {
	Points(ctx context.Context, userID uint) (models.UserPoints, error)
	Credit(ctx context.Context, userID uint, points int, action, description string, at time.Time) (models.UserPoints, error)
	UpdateStreak(ctx context.Context, userID uint, days int, day string) error
	Transactions(ctx context.Context, userID uint, limit int) ([]models.PointsTransaction, error)
	Leaderboard(ctx context.Context, since *time.Time, limit int) ([]models.UserPoints, error)
	CountAbove(ctx context.Context, points int) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	ListBadges(ctx context.Context) ([]models.Badge, error)
	UpsertBadges(ctx context.Context, badges []models.Badge) (int64, error)
	UserBadges(ctx context.Context, userID uint) ([]models.UserBadge, error)
	CountUserBadges(ctx context.Context, userID uint) (int64, error)
	AwardBadge(ctx context.Context, badge *models.UserBadge) (bool, error)
	ActivityStats(ctx context.Context, userID uint) (gamification.Stats, error)
}

type gamificationRepository struct {
	db *gorm.DB
}

// NewGamificationRepository constructs the repository implementation.
func NewGamificationRepository(db *gorm.DB) GamificationRepository {
	return &gamificationRepository{db: db}
}

func (r *gamificationRepository) Points(ctx context.Context, userID uint) (models.UserPoints, error) {
	var points models.UserPoints
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&points).Error; err != nil {
		return models.UserPoints{}, err
	}
	return points, nil
}

func ensurePointsRow(tx *gorm.DB, userID uint) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&models.UserPoints{UserID: userID, Level: 1}).Error
}

// Credit adds points to the balance, appends a ledger entry and refreshes the
// level in one transaction.
func (r *gamificationRepository) Credit(ctx context.Context, userID uint, points int, action, description string, at time.Time) (models.UserPoints, error) {
	var balance models.UserPoints
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePointsRow(tx, userID); err != nil {
			return err
		}

		if err := tx.Model(&models.UserPoints{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
			"points":              gorm.Expr("points + ?", points),
			"total_points_earned": gorm.Expr("total_points_earned + ?", points),
			"last_activity":       at,
			"updated_at":          at,
		}).Error; err != nil {
			return err
		}

		entry := models.PointsTransaction{
			UserID:      userID,
			Points:      points,
			ActionType:  action,
			Description: description,
			CreatedAt:   at,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).First(&balance).Error; err != nil {
			return err
		}

		if level := gamification.Level(balance.TotalPointsEarned); level != balance.Level {
			balance.Level = level
			return tx.Model(&models.UserPoints{}).Where("user_id = ?", userID).Update("level", level).Error
		}
		return nil
	})
	return balance, err
}

func (r *gamificationRepository) UpdateStreak(ctx context.Context, userID uint, days int, day string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePointsRow(tx, userID); err != nil {
			return err
		}
		return tx.Model(&models.UserPoints{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
			"streak_days":      days,
			"last_checkin_day": day,
		}).Error
	})
}

func (r *gamificationRepository) Transactions(ctx context.Context, userID uint, limit int) ([]models.PointsTransaction, error) {
	var items []models.PointsTransaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(normalizeLimit(limit, 20, 100)).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *gamificationRepository) Leaderboard(ctx context.Context, since *time.Time, limit int) ([]models.UserPoints, error) {
	query := r.db.WithContext(ctx).Model(&models.UserPoints{})
	if since != nil {
		query = query.Where("last_activity >= ?", *since)
	}

	var rows []models.UserPoints
	if err := query.Order("points DESC, user_id ASC").Limit(normalizeLimit(limit, 10, 100)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *gamificationRepository) CountAbove(ctx context.Context, points int) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.UserPoints{}).Where("points > ?", points).Count(&total).Error
	return total, err
}

func (r *gamificationRepository) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.UserPoints{}).Count(&total).Error
	return total, err
}

func (r *gamificationRepository) ListBadges(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	if err := r.db.WithContext(ctx).Order("points_required ASC, id ASC").Find(&badges).Error; err != nil {
		return nil, err
	}
	return badges, nil
}

func (r *gamificationRepository) UpsertBadges(ctx context.Context, badges []models.Badge) (int64, error) {
	if len(badges) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "icon", "category", "points_required", "criteria", "rarity", "updated_at"}),
	}).Create(&badges)
	return result.RowsAffected, result.Error
}

func (r *gamificationRepository) UserBadges(ctx context.Context, userID uint) ([]models.UserBadge, error) {
	var items []models.UserBadge
	if err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *gamificationRepository) CountUserBadges(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.UserBadge{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}

// AwardBadge stores the badge unless the user already owns it.
func (r *gamificationRepository) AwardBadge(ctx context.Context, badge *models.UserBadge) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Omit("Badge").Create(badge)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ActivityStats gathers the counters badge criteria are checked against.
func (r *gamificationRepository) ActivityStats(ctx context.Context, userID uint) (gamification.Stats, error) {
	db := r.db.WithContext(ctx)
	var stats gamification.Stats

	counts := []struct {
		model interface{}
		where string
		dest  *int
	}{
		{&models.WellnessCheckin{}, "user_id = ?", &stats.Checkins},
		{&models.CommunityPost{}, "author_id = ?", &stats.Posts},
		{&models.CircleMember{}, "user_id = ?", &stats.Circles},
	}
	for _, c := range counts {
		var n int64
		if err := db.Model(c.model).Where(c.where, userID).Count(&n).Error; err != nil {
			return gamification.Stats{}, err
		}
		*c.dest = int(n)
	}

	var pomodoros int64
	if err := db.Model(&models.PomodoroSession{}).Where("user_id = ? AND completed = ?", userID, true).Count(&pomodoros).Error; err != nil {
		return gamification.Stats{}, err
	}
	stats.Pomodoros = int(pomodoros)

	var helps int64
	if err := db.Model(&models.PeerSupportRequest{}).
		Where("supporter_id = ? AND status = ?", userID, models.PeerSupportCompleted).
		Count(&helps).Error; err != nil {
		return gamification.Stats{}, err
	}
	stats.PeerHelps = int(helps)

	var minutes struct {
		Total int64
	}
	if err := db.Model(&models.StudySession{}).
		Select("COALESCE(SUM(duration_minutes), 0) AS total").
		Where("user_id = ?", userID).
		Scan(&minutes).Error; err != nil {
		return gamification.Stats{}, err
	}
	stats.StudyMinutes = int(minutes.Total)

	balance, err := r.Points(ctx, userID)
	switch {
	case err == nil:
		stats.Level = balance.Level
		stats.Streak = balance.StreakDays
	case errors.Is(err, gorm.ErrRecordNotFound):
		stats.Level = 1
	default:
		return gamification.Stats{}, err
	}

	return stats, nil
}

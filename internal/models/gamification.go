package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/sprint-connect-api/internal/gamification"
)

// UserPoints is the running gamification balance of a user.
type UserPoints struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Points            int        `gorm:"not null;default:0;index" json:"points"`
	Level             int        `gorm:"not null;default:1" json:"level"`
	TotalPointsEarned int        `gorm:"not null;default:0" json:"total_points_earned"`
	StreakDays        int        `gorm:"not null;default:0" json:"streak_days"`
	LastCheckinDay    string     `gorm:"size:10" json:"last_checkin_day"`
	LastActivity      *time.Time `gorm:"index" json:"last_activity,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// PointsTransaction is one ledger entry.
type PointsTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Points      int       `gorm:"not null" json:"points"`
	ActionType  string    `gorm:"size:64;not null;index" json:"action_type"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// Badge is one entry of the persisted badge catalogue.
type Badge struct {
	ID             uint                                      `gorm:"primaryKey" json:"id"`
	Code           string                                    `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Name           string                                    `gorm:"size:128;uniqueIndex;not null" json:"name"`
	Description    string                                    `gorm:"type:text" json:"description"`
	Icon           string                                    `gorm:"size:16" json:"icon"`
	Category       string                                    `gorm:"size:64" json:"category"`
	PointsRequired int                                       `gorm:"not null;default:0" json:"points_required"`
	Criteria       datatypes.JSONType[gamification.Criteria] `json:"criteria"`
	Rarity         string                                    `gorm:"size:32;not null;default:common" json:"rarity"`
	CreatedAt      time.Time                                 `json:"created_at"`
	UpdatedAt      time.Time                                 `json:"updated_at"`
}

// UserBadge records that a user earned a badge.
type UserBadge struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"user_id"`
	BadgeID  uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"badge_id"`
	Progress float64   `gorm:"not null;default:1" json:"progress"`
	EarnedAt time.Time `json:"earned_at"`
	Badge    Badge     `gorm:"foreignKey:BadgeID" json:"badge"`
}

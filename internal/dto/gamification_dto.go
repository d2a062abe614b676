package dto

import (
	"time"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// PointsAward describes the outcome of crediting points to a user.
type PointsAward struct {
	Action       string          `json:"action"`
	Points       int             `json:"points"`
	TotalPoints  int             `json:"total_points"`
	Level        int             `json:"level"`
	LeveledUp    bool            `json:"leveled_up"`
	BadgesEarned []BadgeResponse `json:"badges_earned,omitempty"`
}

// BadgeResponse is the serialized badge.
type BadgeResponse struct {
	ID             uint   `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Icon           string `json:"icon"`
	Category       string `json:"category"`
	PointsRequired int    `json:"points_required"`
	Rarity         string `json:"rarity"`
}

// NewBadgeResponse converts a model into a DTO.
func NewBadgeResponse(badge models.Badge) BadgeResponse {
	return BadgeResponse{
		ID:             badge.ID,
		Code:           badge.Code,
		Name:           badge.Name,
		Description:    badge.Description,
		Icon:           badge.Icon,
		Category:       badge.Category,
		PointsRequired: badge.PointsRequired,
		Rarity:         badge.Rarity,
	}
}

// NewBadgeResponseSlice converts badges into DTOs.
func NewBadgeResponseSlice(badges []models.Badge) []BadgeResponse {
	out := make([]BadgeResponse, 0, len(badges))
	for _, badge := range badges {
		out = append(out, NewBadgeResponse(badge))
	}
	return out
}

// UserBadgeResponse is a badge the user owns.
type UserBadgeResponse struct {
	Badge    BadgeResponse `json:"badge"`
	Progress float64       `json:"progress"`
	EarnedAt time.Time     `json:"earned_at"`
}

// NewUserBadgeResponseSlice converts earned badges into DTOs.
func NewUserBadgeResponseSlice(items []models.UserBadge) []UserBadgeResponse {
	out := make([]UserBadgeResponse, 0, len(items))
	for _, item := range items {
		out = append(out, UserBadgeResponse{
			Badge:    NewBadgeResponse(item.Badge),
			Progress: item.Progress,
			EarnedAt: item.EarnedAt,
		})
	}
	return out
}

// TransactionResponse is one ledger entry.
type TransactionResponse struct {
	ID          uint      `json:"id"`
	Points      int       `json:"points"`
	ActionType  string    `json:"action_type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewTransactionResponseSlice converts ledger entries into DTOs.
func NewTransactionResponseSlice(items []models.PointsTransaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(items))
	for _, item := range items {
		out = append(out, TransactionResponse{
			ID:          item.ID,
			Points:      item.Points,
			ActionType:  item.ActionType,
			Description: item.Description,
			CreatedAt:   item.CreatedAt,
		})
	}
	return out
}

// GamificationStatsResponse summarises the caller's progress.
type GamificationStatsResponse struct {
	Points             int                   `json:"points"`
	Level              int                   `json:"level"`
	TotalPointsEarned  int                   `json:"total_points_earned"`
	PointsToNextLevel  int                   `json:"points_to_next_level"`
	StreakDays         int                   `json:"streak_days"`
	BadgesCount        int64                 `json:"badges_count"`
	Rank               int64                 `json:"rank"`
	TotalUsers         int64                 `json:"total_users"`
	RecentTransactions []TransactionResponse `json:"recent_transactions"`
}

// LeaderboardEntry is one row of the leaderboard.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      uint   `json:"user_id"`
	FullName    string `json:"full_name,omitempty"`
	AvatarEmoji string `json:"avatar_emoji,omitempty"`
	Points      int    `json:"points"`
	Level       int    `json:"level"`
}

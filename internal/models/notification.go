package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types.
const (
	NotificationTypeAlert       = "alert"
	NotificationTypeAchievement = "achievement"
	NotificationTypeEvent       = "event"
	NotificationTypeMessage     = "message"
	NotificationTypeSupport     = "support"
)

// Notification is an in-app message targeted at one user.
type Notification struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"index;not null" json:"user_id"`
	Title     string            `gorm:"size:255;not null" json:"title"`
	Message   string            `gorm:"type:text;not null" json:"message"`
	Type      string            `gorm:"size:64;index" json:"type"`
	ActionURL string            `gorm:"size:512" json:"action_url"`
	Metadata  datatypes.JSONMap `json:"metadata"`
	Read      bool              `gorm:"not null;default:false;index" json:"read"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

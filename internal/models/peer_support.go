package models

import "time"

// Peer support statuses.
const (
	PeerSupportPending   = "pending"
	PeerSupportActive    = "active"
	PeerSupportCompleted = "completed"
)

// PeerSupportRequest pairs a student seeking support with a supporter.
type PeerSupportRequest struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SeekerID    uint       `gorm:"index;not null" json:"seeker_id"`
	SupporterID *uint      `gorm:"index" json:"supporter_id,omitempty"`
	Status      string     `gorm:"size:32;not null;default:pending;index" json:"status"`
	Topic       string     `gorm:"size:64" json:"topic"`
	Message     string     `gorm:"type:text" json:"message"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

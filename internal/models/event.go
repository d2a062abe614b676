package models

import "time"

// Event is a community gathering students can RSVP to.
type Event struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatorID     uint      `gorm:"index;not null" json:"creator_id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	Location      string    `gorm:"size:255" json:"location"`
	EventDate     time.Time `gorm:"index;not null" json:"event_date"`
	AttendeeCount int       `gorm:"not null;default:0" json:"attendee_count"`
	MaxAttendees  *int      `json:"max_attendees,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsFull reports whether the attendee limit has been reached.
func (e Event) IsFull() bool {
	return e.MaxAttendees != nil && e.AttendeeCount >= *e.MaxAttendees
}

// EventAttendee records one RSVP.
type EventAttendee struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	EventID  uint       `gorm:"not null;uniqueIndex:idx_event_attendee" json:"event_id"`
	UserID   uint       `gorm:"not null;uniqueIndex:idx_event_attendee;index" json:"user_id"`
	RSVPAt   time.Time  `json:"rsvp_at"`
	Attended *time.Time `json:"attended_at,omitempty"`
}

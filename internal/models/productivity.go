package models

import "time"

// Study session types.
const (
	SessionTypeSolo     = "solo"
	SessionTypeGroup    = "group"
	SessionTypePomodoro = "pomodoro"
)

// PomodoroSession is one focus interval.
type PomodoroSession struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"index;not null" json:"user_id"`
	CircleID        *uint      `gorm:"index" json:"circle_id,omitempty"`
	DurationMinutes int        `gorm:"not null;default:25" json:"duration_minutes"`
	BreakMinutes    int        `gorm:"not null;default:5" json:"break_minutes"`
	IsGroupSession  bool       `gorm:"not null;default:false" json:"is_group_session"`
	StartedAt       time.Time  `gorm:"index;not null" json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	Completed       bool       `gorm:"not null;default:false;index" json:"completed"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// StudySession is a logged block of study time.
type StudySession struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             uint       `gorm:"index;not null" json:"user_id"`
	CircleID           *uint      `gorm:"index" json:"circle_id,omitempty"`
	CourseID           *uint      `gorm:"index" json:"course_id,omitempty"`
	SessionType        string     `gorm:"size:32;not null" json:"session_type"`
	StartedAt          time.Time  `gorm:"not null" json:"started_at"`
	EndedAt            *time.Time `json:"ended_at,omitempty"`
	DurationMinutes    int        `gorm:"not null;default:0" json:"duration_minutes"`
	Notes              string     `gorm:"type:text" json:"notes"`
	ProductivityRating *int       `json:"productivity_rating,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

package models

import "time"

// DayLayout is the calendar-day format used to key daily records.
const DayLayout = "2006-01-02"

// WellnessCheckin is a student's mood entry for one calendar day.
type WellnessCheckin struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_checkin_user_day" json:"user_id"`
	Day        string    `gorm:"size:10;not null;uniqueIndex:idx_checkin_user_day;index" json:"day"`
	MoodScore  int       `gorm:"not null" json:"mood_score"`
	MoodEmoji  string    `gorm:"size:16" json:"mood_emoji"`
	Note       string    `gorm:"type:text" json:"note"`
	SprintWeek string    `gorm:"size:64" json:"sprint_week"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

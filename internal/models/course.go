package models

import "time"

// Course is a taught module students form study circles around.
type Course struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Code         string     `gorm:"size:32;not null;index" json:"code"`
	Title        string     `gorm:"size:255;not null" json:"title"`
	SprintNumber int        `json:"sprint_number"`
	AcademicYear string     `gorm:"size:32" json:"academic_year"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

package dto

import (
	"time"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// PomodoroStartRequest starts a focus interval. Zero durations use the
// configured defaults.
type PomodoroStartRequest struct {
	CircleID        *uint `json:"circle_id" validate:"omitempty,gt=0"`
	DurationMinutes int   `json:"duration_minutes" validate:"omitempty,min=1,max=180"`
	BreakMinutes    int   `json:"break_minutes" validate:"omitempty,min=1,max=60"`
	IsGroupSession  bool  `json:"is_group_session"`
}

// PomodoroResponse is the serialized session.
type PomodoroResponse struct {
	ID              uint       `json:"id"`
	CircleID        *uint      `json:"circle_id,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	BreakMinutes    int        `json:"break_minutes"`
	IsGroupSession  bool       `json:"is_group_session"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	Completed       bool       `json:"completed"`
}

// NewPomodoroResponse converts a model into a DTO.
func NewPomodoroResponse(session models.PomodoroSession) PomodoroResponse {
	return PomodoroResponse{
		ID:              session.ID,
		CircleID:        session.CircleID,
		DurationMinutes: session.DurationMinutes,
		BreakMinutes:    session.BreakMinutes,
		IsGroupSession:  session.IsGroupSession,
		StartedAt:       session.StartedAt,
		EndedAt:         session.EndedAt,
		Completed:       session.Completed,
	}
}

// PomodoroCompleteResponse wraps a finished session with its points.
type PomodoroCompleteResponse struct {
	Session PomodoroResponse `json:"session"`
	Points  *PointsAward     `json:"points,omitempty"`
}

// PomodoroStatsResponse aggregates completed sessions.
type PomodoroStatsResponse struct {
	TotalSessions  int64   `json:"total_sessions"`
	TotalMinutes   int64   `json:"total_minutes"`
	TotalHours     float64 `json:"total_hours"`
	CompletedToday int64   `json:"completed_today"`
	AveragePerDay  float64 `json:"average_per_day"`
}

// PomodoroActiveResponse describes the running session, if any.
type PomodoroActiveResponse struct {
	Active           bool              `json:"active"`
	Session          *PomodoroResponse `json:"session,omitempty"`
	ElapsedMinutes   int               `json:"elapsed_minutes,omitempty"`
	RemainingMinutes int               `json:"remaining_minutes,omitempty"`
}

// StudySessionCreateRequest logs a block of study time. DurationMinutes is
// derived from EndedAt when omitted.
type StudySessionCreateRequest struct {
	CircleID           *uint      `json:"circle_id" validate:"omitempty,gt=0"`
	CourseID           *uint      `json:"course_id" validate:"omitempty,gt=0"`
	SessionType        string     `json:"session_type" validate:"required,oneof=solo group pomodoro"`
	StartedAt          time.Time  `json:"started_at" validate:"required"`
	EndedAt            *time.Time `json:"ended_at"`
	DurationMinutes    int        `json:"duration_minutes" validate:"omitempty,min=1,max=1440"`
	Notes              string     `json:"notes" validate:"omitempty,max=4000"`
	ProductivityRating *int       `json:"productivity_rating" validate:"omitempty,min=1,max=5"`
}

// StudySessionResponse is the serialized study session.
type StudySessionResponse struct {
	ID                 uint       `json:"id"`
	CircleID           *uint      `json:"circle_id,omitempty"`
	CourseID           *uint      `json:"course_id,omitempty"`
	SessionType        string     `json:"session_type"`
	StartedAt          time.Time  `json:"started_at"`
	EndedAt            *time.Time `json:"ended_at,omitempty"`
	DurationMinutes    int        `json:"duration_minutes"`
	Notes              string     `json:"notes,omitempty"`
	ProductivityRating *int       `json:"productivity_rating,omitempty"`
}

// NewStudySessionResponse converts a model into a DTO.
func NewStudySessionResponse(session models.StudySession) StudySessionResponse {
	return StudySessionResponse{
		ID:                 session.ID,
		CircleID:           session.CircleID,
		CourseID:           session.CourseID,
		SessionType:        session.SessionType,
		StartedAt:          session.StartedAt,
		EndedAt:            session.EndedAt,
		DurationMinutes:    session.DurationMinutes,
		Notes:              session.Notes,
		ProductivityRating: session.ProductivityRating,
	}
}

// StudySessionCreateResponse wraps a logged session with its points.
type StudySessionCreateResponse struct {
	Session StudySessionResponse `json:"session"`
	Points  *PointsAward         `json:"points,omitempty"`
}

package dto

import (
	"time"

	"github.com/noah-isme/sprint-connect-api/internal/models"
	"github.com/noah-isme/sprint-connect-api/internal/wellness"
)

// CheckinRequest records today's mood. MoodScore is a pointer so that 0 is
// accepted while a missing value is rejected.
type CheckinRequest struct {
	MoodScore  *int   `json:"mood_score" validate:"required,min=0,max=5"`
	MoodEmoji  string `json:"mood_emoji" validate:"omitempty,max=16"`
	Note       string `json:"note" validate:"omitempty,max=2000"`
	SprintWeek string `json:"sprint_week" validate:"omitempty,max=64"`
}

// CheckinView is the serialized check-in.
type CheckinView struct {
	ID         uint      `json:"id"`
	Day        string    `json:"day"`
	MoodScore  int       `json:"mood_score"`
	MoodEmoji  string    `json:"mood_emoji"`
	Note       string    `json:"note"`
	SprintWeek string    `json:"sprint_week,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewCheckinView converts a model into a DTO.
func NewCheckinView(checkin models.WellnessCheckin) CheckinView {
	return CheckinView{
		ID:         checkin.ID,
		Day:        checkin.Day,
		MoodScore:  checkin.MoodScore,
		MoodEmoji:  checkin.MoodEmoji,
		Note:       checkin.Note,
		SprintWeek: checkin.SprintWeek,
		CreatedAt:  checkin.CreatedAt,
		UpdatedAt:  checkin.UpdatedAt,
	}
}

// NewCheckinViewSlice converts check-ins into DTOs.
func NewCheckinViewSlice(checkins []models.WellnessCheckin) []CheckinView {
	out := make([]CheckinView, 0, len(checkins))
	for _, checkin := range checkins {
		out = append(out, NewCheckinView(checkin))
	}
	return out
}

// CheckinResponse is returned after a check-in. Points and streak are only
// set for the first check-in of a day.
type CheckinResponse struct {
	Checkin    CheckinView  `json:"checkin"`
	FirstToday bool         `json:"first_today"`
	StreakDays int          `json:"streak_days"`
	Points     *PointsAward `json:"points,omitempty"`
	Alert      string       `json:"alert,omitempty"`
}

// WellnessStatsResponse summarises the last seven days.
type WellnessStatsResponse struct {
	AverageMood   float64 `json:"average_mood"`
	Trend         string  `json:"trend"`
	Streak        int     `json:"streak"`
	TotalCheckins int     `json:"total_checkins"`
}

// NewWellnessStatsResponse converts the weekly summary.
func NewWellnessStatsResponse(stats wellness.WeeklyStats) WellnessStatsResponse {
	return WellnessStatsResponse{
		AverageMood:   stats.AverageMood,
		Trend:         string(stats.Trend),
		Streak:        stats.Streak,
		TotalCheckins: stats.TotalCheckins,
	}
}

// WellnessTrendResponse exposes the thirty day trend analysis.
type WellnessTrendResponse struct {
	Sufficient      bool    `json:"sufficient"`
	Entries         int     `json:"entries"`
	Average30d      float64 `json:"average_30d"`
	AverageRecent7d float64 `json:"average_recent_7d"`
	AveragePrior7d  float64 `json:"average_prior_7d"`
	PriorFallback   bool    `json:"prior_fallback"`
	Trend           string  `json:"trend,omitempty"`
	LowMoodDays     int     `json:"low_mood_days"`
	Alert           bool    `json:"alert"`
	Level           string  `json:"level,omitempty"`
	Message         string  `json:"message,omitempty"`
	Notified        bool    `json:"notified"`
}

// NewWellnessTrendResponse converts an analyzer report.
func NewWellnessTrendResponse(report wellness.TrendReport, sufficient bool) WellnessTrendResponse {
	resp := WellnessTrendResponse{Sufficient: sufficient, Entries: report.Entries}
	if !sufficient {
		return resp
	}
	resp.Average30d = report.Average30d
	resp.AverageRecent7d = report.AverageRecent7d
	resp.AveragePrior7d = report.AveragePrior7d
	resp.PriorFallback = report.PriorFallback
	resp.Trend = string(report.Trend)
	resp.LowMoodDays = report.LowMoodDays
	resp.Alert = report.Alert
	resp.Level = string(report.Level)
	resp.Message = report.Message
	return resp
}

package dto

import "time"

// DashboardResponse aggregates the student's home screen.
type DashboardResponse struct {
	Profile        *ProfileResponse      `json:"profile,omitempty"`
	Points         DashboardPoints       `json:"points"`
	Wellness       WellnessStatsResponse `json:"wellness"`
	ActiveCircles  []CircleResponse      `json:"active_circles"`
	RecentCheckins []CheckinView         `json:"recent_checkins"`
	UpcomingEvents []EventResponse       `json:"upcoming_events"`
	RecentPosts    []PostResponse        `json:"recent_posts"`
	UnreadCount    int64                 `json:"unread_notifications"`
	GeneratedAt    time.Time             `json:"generated_at"`
}

// DashboardPoints is the compact gamification block on the dashboard.
type DashboardPoints struct {
	Points     int `json:"points"`
	Level      int `json:"level"`
	StreakDays int `json:"streak_days"`
}

// AdminStatsResponse is the platform overview for staff.
type AdminStatsResponse struct {
	TotalUsers              int64     `json:"total_users"`
	ActiveStudyCircles      int64     `json:"active_study_circles"`
	WellnessCheckinsToday   int64     `json:"wellness_checkins_today"`
	CommunityPostsThisWeek  int64     `json:"community_posts_this_week"`
	AverageMoodScore        float64   `json:"average_mood_score"`
	UpcomingEvents          int64     `json:"upcoming_events"`
	OpenPeerSupportRequests int64     `json:"open_peer_support_requests"`
	GeneratedAt             time.Time `json:"generated_at"`
	CacheHit                bool      `json:"cache_hit"`
}

// SeedResult reports how many rows a seed run touched.
type SeedResult struct {
	Badges  int64 `json:"badges"`
	Courses int64 `json:"courses"`
	Events  int64 `json:"events"`
}

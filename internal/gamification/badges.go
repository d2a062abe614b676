package gamification

// Rarity grades how hard a badge is to earn.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Criteria are thresholds that must all be met. Zero fields are ignored; a
// badge without any threshold is never earned.
type Criteria struct {
	Checkins      int `json:"checkins,omitempty"`
	CheckinStreak int `json:"checkin_streak,omitempty"`
	Posts         int `json:"posts,omitempty"`
	Circles       int `json:"circles,omitempty"`
	Pomodoros     int `json:"pomodoros,omitempty"`
	StudyHours    int `json:"study_hours,omitempty"`
	PeerHelps     int `json:"peer_helps,omitempty"`
	Level         int `json:"level,omitempty"`
}

// Stats is the activity snapshot badges are checked against.
type Stats struct {
	Checkins     int
	Streak       int
	Posts        int
	Circles      int
	Pomodoros    int
	StudyMinutes int
	PeerHelps    int
	Level        int
}

// Badge describes one entry of the catalogue.
type Badge struct {
	Code           string
	Name           string
	Description    string
	Icon           string
	Category       string
	PointsRequired int
	Rarity         Rarity
	Criteria       Criteria
}

var catalogue = []Badge{
	{Code: "first_steps", Name: "First Steps", Description: "Complete your first wellness check-in", Icon: "👣", Category: "wellness", PointsRequired: 10, Rarity: RarityCommon, Criteria: Criteria{Checkins: 1}},
	{Code: "wellness_warrior", Name: "Wellness Warrior", Description: "Complete 7 consecutive wellness check-ins", Icon: "💪", Category: "wellness", PointsRequired: 70, Rarity: RarityRare, Criteria: Criteria{CheckinStreak: 7}},
	{Code: "community_builder", Name: "Community Builder", Description: "Create 5 community posts", Icon: "🏗️", Category: "participation", PointsRequired: 75, Rarity: RarityRare, Criteria: Criteria{Posts: 5}},
	{Code: "study_buddy", Name: "Study Buddy", Description: "Join your first study circle", Icon: "🎓", Category: "achievement", PointsRequired: 20, Rarity: RarityCommon, Criteria: Criteria{Circles: 1}},
	{Code: "social_butterfly", Name: "Social Butterfly", Description: "Join 3 study circles", Icon: "🦋", Category: "achievement", PointsRequired: 60, Rarity: RarityRare, Criteria: Criteria{Circles: 3}},
	{Code: "time_master", Name: "Time Master", Description: "Complete 10 Pomodoro sessions", Icon: "⏰", Category: "productivity", PointsRequired: 50, Rarity: RarityRare, Criteria: Criteria{Pomodoros: 10}},
	{Code: "marathon_studier", Name: "Marathon Studier", Description: "Study for 20 hours total", Icon: "📚", Category: "productivity", PointsRequired: 200, Rarity: RarityEpic, Criteria: Criteria{StudyHours: 20}},
	{Code: "helping_hand", Name: "Helping Hand", Description: "Help 10 peers in study circles", Icon: "🤝", Category: "participation", PointsRequired: 250, Rarity: RarityEpic, Criteria: Criteria{PeerHelps: 10}},
	{Code: "sprint_champion", Name: "Sprint Champion", Description: "Reach level 10", Icon: "🏆", Category: "achievement", PointsRequired: 1000, Rarity: RarityLegendary, Criteria: Criteria{Level: 10}},
}

// Catalogue returns a copy of the built-in badges.
func Catalogue() []Badge {
	out := make([]Badge, len(catalogue))
	copy(out, catalogue)
	return out
}

// Empty reports whether no threshold is set.
func (c Criteria) Empty() bool {
	return c == Criteria{}
}

type requirement struct {
	need int
	have int
}

func (c Criteria) requirements(stats Stats) []requirement {
	all := []requirement{
		{c.Checkins, stats.Checkins},
		{c.CheckinStreak, stats.Streak},
		{c.Posts, stats.Posts},
		{c.Circles, stats.Circles},
		{c.Pomodoros, stats.Pomodoros},
		{c.StudyHours * 60, stats.StudyMinutes},
		{c.PeerHelps, stats.PeerHelps},
		{c.Level, stats.Level},
	}
	out := all[:0]
	for _, r := range all {
		if r.need > 0 {
			out = append(out, r)
		}
	}
	return out
}

// Met reports whether stats satisfy every threshold.
func (c Criteria) Met(stats Stats) bool {
	reqs := c.requirements(stats)
	if len(reqs) == 0 {
		return false
	}
	for _, r := range reqs {
		if r.have < r.need {
			return false
		}
	}
	return true
}

// Progress is the average completion across thresholds, in [0,1].
func (c Criteria) Progress(stats Stats) float64 {
	reqs := c.requirements(stats)
	if len(reqs) == 0 {
		return 0
	}
	var total float64
	for _, r := range reqs {
		ratio := float64(r.have) / float64(r.need)
		if ratio > 1 {
			ratio = 1
		}
		if ratio < 0 {
			ratio = 0
		}
		total += ratio
	}
	return total / float64(len(reqs))
}

// Evaluate returns the badges from candidates that stats now satisfy and the
// user does not own yet, in catalogue order.
func Evaluate(candidates []Badge, stats Stats, owned map[string]bool) []Badge {
	var earned []Badge
	for _, badge := range candidates {
		if owned[badge.Code] {
			continue
		}
		if badge.Criteria.Met(stats) {
			earned = append(earned, badge)
		}
	}
	return earned
}

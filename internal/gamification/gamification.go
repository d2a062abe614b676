// Package gamification holds the fixed rule table behind points, levels,
// streaks and badges. Services persist the outcomes; nothing here touches
// storage.
package gamification

import (
	"fmt"
	"strings"
	"time"
)

// Action is a user activity that earns points.
type Action string

const (
	ActionDailyCheckin     Action = "daily_checkin"
	ActionStreakBonus      Action = "wellness_streak_bonus"
	ActionCreatePost       Action = "create_post"
	ActionComment          Action = "comment"
	ActionLikePost         Action = "like_post"
	ActionJoinCircle       Action = "join_circle"
	ActionEventRSVP        Action = "event_rsvp"
	ActionEventAttend      Action = "event_attend"
	ActionPomodoroComplete Action = "pomodoro_complete"
	ActionStudySessionHour Action = "study_session_hour"
	ActionHelpPeer         Action = "help_peer"
)

// PointsPerLevel is the number of lifetime points between two levels.
const PointsPerLevel = 100

var pointsTable = map[Action]int{
	ActionDailyCheckin:     10,
	ActionStreakBonus:      5,
	ActionCreatePost:       15,
	ActionComment:          5,
	ActionLikePost:         1,
	ActionJoinCircle:       20,
	ActionEventRSVP:        10,
	ActionEventAttend:      15,
	ActionPomodoroComplete: 5,
	ActionStudySessionHour: 10,
	ActionHelpPeer:         25,
}

// Points returns the value of a single action. Unknown actions are worth
// nothing and report false.
func Points(action Action) (int, bool) {
	value, ok := pointsTable[action]
	return value, ok
}

// Actions lists every action with its point value.
func Actions() map[Action]int {
	out := make(map[Action]int, len(pointsTable))
	for action, value := range pointsTable {
		out[action] = value
	}
	return out
}

// Describe is the default transaction description for an action.
func Describe(action Action) string {
	words := strings.Split(string(action), "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// Level maps lifetime points to a level starting at 1.
func Level(totalEarned int) int {
	if totalEarned < 0 {
		totalEarned = 0
	}
	return totalEarned/PointsPerLevel + 1
}

// PointsToNextLevel is how many points are still missing for the next level.
func PointsToNextLevel(totalEarned int) int {
	if totalEarned < 0 {
		totalEarned = 0
	}
	return PointsPerLevel - totalEarned%PointsPerLevel
}

// StreakUpdate is the outcome of a daily check-in for the streak counter.
type StreakUpdate struct {
	Days  int
	Bonus int
}

// NextStreak advances a check-in streak. lastDay is the previous check-in day
// (zero when there is none). Checking in again on the same day keeps the
// streak, the following day extends it and earns a bonus of
// wellness_streak_bonus per streak day, and any gap restarts it at 1.
func NextStreak(current int, lastDay, today time.Time) StreakUpdate {
	if lastDay.IsZero() {
		return StreakUpdate{Days: 1}
	}

	gap := daysBetween(lastDay, today)
	switch {
	case gap <= 0:
		if current < 1 {
			current = 1
		}
		return StreakUpdate{Days: current}
	case gap == 1:
		days := current + 1
		return StreakUpdate{Days: days, Bonus: pointsTable[ActionStreakBonus] * days}
	default:
		return StreakUpdate{Days: 1}
	}
}

func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.In(from.Location()).Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// Timeframe narrows the leaderboard to recently active users.
type Timeframe string

const (
	TimeframeAllTime Timeframe = "all_time"
	TimeframeWeek    Timeframe = "week"
	TimeframeMonth   Timeframe = "month"
)

// ParseTimeframe accepts the leaderboard query values; empty means all time.
func ParseTimeframe(value string) (Timeframe, error) {
	switch tf := Timeframe(strings.ToLower(strings.TrimSpace(value))); tf {
	case "":
		return TimeframeAllTime, nil
	case TimeframeAllTime, TimeframeWeek, TimeframeMonth:
		return tf, nil
	default:
		return "", fmt.Errorf("unsupported timeframe %q", value)
	}
}

// Since returns the earliest last-activity time included, or false when the
// timeframe is unbounded.
func (tf Timeframe) Since(now time.Time) (time.Time, bool) {
	switch tf {
	case TimeframeWeek:
		return now.AddDate(0, 0, -7), true
	case TimeframeMonth:
		return now.AddDate(0, 0, -30), true
	default:
		return time.Time{}, false
	}
}

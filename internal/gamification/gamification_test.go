package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPointsTable(t *testing.T) {
	cases := map[Action]int{
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
	for action, want := range cases {
		got, ok := Points(action)
		require.True(t, ok, action)
		require.Equal(t, want, got, action)
	}
	require.Len(t, Actions(), len(cases))

	_, ok := Points("teleport")
	require.False(t, ok)
}

func TestDescribe(t *testing.T) {
	require.Equal(t, "Daily Checkin", Describe(ActionDailyCheckin))
	require.Equal(t, "Help Peer", Describe(ActionHelpPeer))
}

func TestLevel(t *testing.T) {
	require.Equal(t, 1, Level(0))
	require.Equal(t, 1, Level(99))
	require.Equal(t, 2, Level(100))
	require.Equal(t, 10, Level(950))
	require.Equal(t, 1, Level(-5))

	require.Equal(t, 100, PointsToNextLevel(0))
	require.Equal(t, 1, PointsToNextLevel(199))
}

func TestNextStreak(t *testing.T) {
	today := time.Date(2024, time.May, 10, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		current int
		last    time.Time
		want    StreakUpdate
	}{
		{name: "first check-in", current: 0, last: time.Time{}, want: StreakUpdate{Days: 1}},
		{name: "same day", current: 4, last: today.Add(-2 * time.Hour), want: StreakUpdate{Days: 4}},
		{name: "consecutive day", current: 4, last: today.Add(-20 * time.Hour), want: StreakUpdate{Days: 5, Bonus: 25}},
		{name: "late last night", current: 1, last: time.Date(2024, time.May, 9, 23, 59, 0, 0, time.UTC), want: StreakUpdate{Days: 2, Bonus: 10}},
		{name: "gap resets", current: 9, last: today.AddDate(0, 0, -2), want: StreakUpdate{Days: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NextStreak(tc.current, tc.last, today))
		})
	}
}

func TestParseTimeframe(t *testing.T) {
	tf, err := ParseTimeframe("")
	require.NoError(t, err)
	require.Equal(t, TimeframeAllTime, tf)

	tf, err = ParseTimeframe("Week")
	require.NoError(t, err)
	require.Equal(t, TimeframeWeek, tf)

	_, err = ParseTimeframe("decade")
	require.Error(t, err)

	now := time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC)
	since, ok := TimeframeMonth.Since(now)
	require.True(t, ok)
	require.Equal(t, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), since)

	_, ok = TimeframeAllTime.Since(now)
	require.False(t, ok)
}

func TestCatalogueCodesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, badge := range Catalogue() {
		require.False(t, seen[badge.Code], badge.Code)
		require.False(t, badge.Criteria.Empty(), badge.Code)
		seen[badge.Code] = true
	}
	require.Len(t, seen, 9)
}

func TestEvaluateAwardsNewBadgesOnly(t *testing.T) {
	stats := Stats{Checkins: 7, Streak: 7, Circles: 1, Level: 2}

	earned := Evaluate(Catalogue(), stats, map[string]bool{"first_steps": true})
	codes := make([]string, 0, len(earned))
	for _, badge := range earned {
		codes = append(codes, badge.Code)
	}
	require.Equal(t, []string{"wellness_warrior", "study_buddy"}, codes)
}

func TestEvaluateStudyHoursAndPeerHelps(t *testing.T) {
	earned := Evaluate(Catalogue(), Stats{StudyMinutes: 20*60 - 1, PeerHelps: 9}, nil)
	require.Empty(t, earned)

	earned = Evaluate(Catalogue(), Stats{StudyMinutes: 20 * 60, PeerHelps: 10}, nil)
	require.Len(t, earned, 2)
	require.Equal(t, "marathon_studier", earned[0].Code)
	require.Equal(t, "helping_hand", earned[1].Code)
}

func TestCriteriaEmptyNeverMet(t *testing.T) {
	require.False(t, Criteria{}.Met(Stats{Checkins: 100}))
	require.Zero(t, Criteria{}.Progress(Stats{Checkins: 100}))
}

func TestCriteriaProgress(t *testing.T) {
	c := Criteria{Posts: 4, Circles: 2}
	require.InDelta(t, 0.75, c.Progress(Stats{Posts: 2, Circles: 5}), 1e-9)
	require.False(t, c.Met(Stats{Posts: 2, Circles: 5}))
	require.True(t, c.Met(Stats{Posts: 4, Circles: 2}))
}

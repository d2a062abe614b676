package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sprint-connect-api/internal/gamification"
)

func TestGamificationServiceAwardLevelsUpAndNotifiesBadges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.profile(t, 1, "Ada Lovelace", "", visualMorning())

	first, err := f.points.Award(ctx, 1, gamification.ActionJoinCircle, "Joined a circle")
	require.NoError(t, err)
	require.Equal(t, 20, first.Points)
	require.Equal(t, 20, first.TotalPoints)
	require.Equal(t, 1, first.Level)
	require.False(t, first.LeveledUp)

	big, err := f.points.AwardAmount(ctx, 1, gamification.ActionStudySessionHour, 90, "Studied for 9 hours")
	require.NoError(t, err)
	require.Equal(t, 110, big.TotalPoints)
	require.Equal(t, 2, big.Level)
	require.True(t, big.LeveledUp)

	stats, err := f.points.Stats(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 110, stats.Points)
	require.Equal(t, 90, stats.PointsToNextLevel)
	require.Equal(t, int64(1), stats.Rank)
	require.Len(t, stats.RecentTransactions, 2)
}

func TestGamificationServiceUnknownAction(t *testing.T) {
	f := newFixture(t)

	_, err := f.points.Award(context.Background(), 1, gamification.Action("teleport"), "")
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestGamificationServiceRecordCheckinStreakBonus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day1 := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)

	f.checkin(t, 7, day1, 4)
	streak, award, err := f.points.RecordCheckin(ctx, 7, day1)
	require.NoError(t, err)
	require.Equal(t, 1, streak)
	require.Equal(t, 10, award.Points)
	require.Len(t, award.BadgesEarned, 1)
	require.Equal(t, "first_steps", award.BadgesEarned[0].Code)
	require.Contains(t, f.notifier.titles(), "New Badge Earned: 👣 First Steps!")

	day2 := day1.AddDate(0, 0, 1)
	f.checkin(t, 7, day2, 4)
	streak, award, err = f.points.RecordCheckin(ctx, 7, day2)
	require.NoError(t, err)
	require.Equal(t, 2, streak)
	require.Equal(t, 10+10, award.Points)
	require.Equal(t, 10+10+5*2, award.TotalPoints)

	transactions, err := f.points.Transactions(ctx, 7, 10)
	require.NoError(t, err)
	require.Len(t, transactions, 3)
	require.Equal(t, "2 day streak bonus!", transactions[0].Description)

	owned, err := f.points.UserBadges(ctx, 7)
	require.NoError(t, err)
	require.Len(t, owned, 1)
}

func TestGamificationServiceLeaderboardCache(t *testing.T) {
	f := newFixture(t)
	server, client := newTestRedis(t)
	ctx := context.Background()

	svc := NewGamificationService(f.repos.points, f.repos.profiles, nil, client, time.Minute, testLogger())
	f.profile(t, 1, "Ada", "", visualMorning())
	f.profile(t, 2, "Grace", "", visualMorning())

	_, err := svc.Award(ctx, 1, gamification.ActionCreatePost, "")
	require.NoError(t, err)
	_, err = svc.Award(ctx, 2, gamification.ActionHelpPeer, "")
	require.NoError(t, err)

	board, err := svc.Leaderboard(ctx, "", 5)
	require.NoError(t, err)
	require.Len(t, board, 2)
	require.Equal(t, uint(2), board[0].UserID)
	require.Equal(t, "Grace", board[0].FullName)
	require.Equal(t, 2, board[1].Rank)
	require.True(t, server.Exists("leaderboard:all_time:5"))

	_, err = svc.Award(ctx, 1, gamification.ActionHelpPeer, "")
	require.NoError(t, err)
	require.False(t, server.Exists("leaderboard:all_time:5"))

	board, err = svc.Leaderboard(ctx, "all_time", 5)
	require.NoError(t, err)
	require.Equal(t, uint(1), board[0].UserID)

	_, err = svc.Leaderboard(ctx, "decade", 5)
	require.Error(t, err)
}

func TestGamificationServiceEnsureCatalogueIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.points.EnsureCatalogue(ctx)
	require.NoError(t, err)

	badges, err := f.points.Badges(ctx)
	require.NoError(t, err)
	require.Len(t, badges, len(gamification.Catalogue()))
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/sprint-connect-api/internal/gamification"
	"github.com/noah-isme/sprint-connect-api/internal/models"
)

func TestGamificationRepositoryCreditUpdatesLevel(t *testing.T) {
	db := newTestDB(t)
	repo := NewGamificationRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	balance, err := repo.Credit(ctx, 7, 60, string(gamification.ActionHelpPeer), "Help Peer", now)
	require.NoError(t, err)
	require.Equal(t, 60, balance.Points)
	require.Equal(t, 1, balance.Level)

	balance, err = repo.Credit(ctx, 7, 60, string(gamification.ActionHelpPeer), "Help Peer", now)
	require.NoError(t, err)
	require.Equal(t, 120, balance.Points)
	require.Equal(t, 120, balance.TotalPointsEarned)
	require.Equal(t, 2, balance.Level)

	txs, err := repo.Transactions(ctx, 7, 10)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	require.NoError(t, repo.UpdateStreak(ctx, 7, 3, "2024-05-10"))
	stored, err := repo.Points(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 3, stored.StreakDays)
	require.Equal(t, "2024-05-10", stored.LastCheckinDay)
	require.Equal(t, 120, stored.Points)
}

func TestGamificationRepositoryLeaderboardAndRank(t *testing.T) {
	db := newTestDB(t)
	repo := NewGamificationRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	stale := now.AddDate(0, 0, -40)
	_, err := repo.Credit(ctx, 1, 50, "seed", "", now)
	require.NoError(t, err)
	_, err = repo.Credit(ctx, 2, 80, "seed", "", stale)
	require.NoError(t, err)
	_, err = repo.Credit(ctx, 3, 20, "seed", "", now)
	require.NoError(t, err)

	all, err := repo.Leaderboard(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, uint(2), all[0].UserID)

	since := now.AddDate(0, 0, -7)
	week, err := repo.Leaderboard(ctx, &since, 10)
	require.NoError(t, err)
	require.Len(t, week, 2)
	require.Equal(t, uint(1), week[0].UserID)

	above, err := repo.CountAbove(ctx, 50)
	require.NoError(t, err)
	require.Equal(t, int64(1), above)

	users, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), users)
}

func TestGamificationRepositoryBadges(t *testing.T) {
	db := newTestDB(t)
	repo := NewGamificationRepository(db)
	ctx := context.Background()

	badges := []models.Badge{
		{Code: "first_steps", Name: "First Steps", Criteria: datatypes.NewJSONType(gamification.Criteria{Checkins: 1}), Rarity: "common"},
	}
	_, err := repo.UpsertBadges(ctx, badges)
	require.NoError(t, err)

	stored, err := repo.ListBadges(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, 1, stored[0].Criteria.Data().Checkins)

	award := models.UserBadge{UserID: 4, BadgeID: stored[0].ID, Progress: 1, EarnedAt: time.Now().UTC()}
	created, err := repo.AwardBadge(ctx, &award)
	require.NoError(t, err)
	require.True(t, created)

	again := models.UserBadge{UserID: 4, BadgeID: stored[0].ID, Progress: 1, EarnedAt: time.Now().UTC()}
	created, err = repo.AwardBadge(ctx, &again)
	require.NoError(t, err)
	require.False(t, created)

	owned, err := repo.UserBadges(ctx, 4)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	require.Equal(t, "First Steps", owned[0].Badge.Name)
}

func TestGamificationRepositoryActivityStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewGamificationRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	supporter := uint(5)

	require.NoError(t, db.Create(&models.WellnessCheckin{UserID: 5, Day: "2024-05-01", MoodScore: 3}).Error)
	require.NoError(t, db.Create(&models.CommunityPost{AuthorID: 5, Title: "t", Content: "c", Category: models.PostCategoryQuestion}).Error)
	require.NoError(t, db.Create(&models.CircleMember{CircleID: 1, UserID: 5, Role: models.CircleRoleMember, JoinedAt: now}).Error)
	require.NoError(t, db.Create(&models.PomodoroSession{UserID: 5, DurationMinutes: 25, StartedAt: now, Completed: true}).Error)
	require.NoError(t, db.Create(&models.PomodoroSession{UserID: 5, DurationMinutes: 25, StartedAt: now}).Error)
	require.NoError(t, db.Create(&models.StudySession{UserID: 5, SessionType: models.SessionTypeSolo, StartedAt: now, DurationMinutes: 90}).Error)
	require.NoError(t, db.Create(&models.PeerSupportRequest{SeekerID: 6, SupporterID: &supporter, Status: models.PeerSupportCompleted, Topic: "academic", Message: "help"}).Error)

	stats, err := repo.ActivityStats(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, gamification.Stats{
		Checkins:     1,
		Posts:        1,
		Circles:      1,
		Pomodoros:    1,
		StudyMinutes: 90,
		PeerHelps:    1,
		Level:        1,
	}, stats)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sprint-connect-api/internal/models"
	"github.com/noah-isme/sprint-connect-api/internal/repository"
)

func TestAdminAnalyticsAggregatesAndCaches(t *testing.T) {
	f := newFixture(t)
	server, client := newTestRedis(t)
	svc := NewAdminAnalyticsService(repository.NewAdminAnalyticsRepository(f.db), client, time.Minute, testLogger())
	ctx := context.Background()
	now := time.Now().UTC()

	f.profile(t, 1, "Ana", "", visualMorning())
	f.profile(t, 2, "Bo", "", visualMorning())
	f.checkin(t, 1, now, 4)
	f.checkin(t, 2, now, 3)
	f.checkin(t, 1, now.AddDate(0, 0, -2), 2)
	f.checkin(t, 1, now.AddDate(0, 0, -30), 1)
	require.NoError(t, f.repos.community.CreatePost(ctx, &models.CommunityPost{AuthorID: 1, Title: "Hi", Content: "there", Category: models.PostCategoryTip}))
	require.NoError(t, f.repos.events.Create(ctx, &models.Event{Title: "Later", EventDate: now.Add(24 * time.Hour)}))
	require.NoError(t, f.repos.peerSupport.Create(ctx, &models.PeerSupportRequest{SeekerID: 1, Status: models.PeerSupportPending, Topic: "other", Message: "please help"}))

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	require.False(t, stats.CacheHit)
	require.Equal(t, int64(2), stats.TotalUsers)
	require.Equal(t, int64(2), stats.WellnessCheckinsToday)
	require.Equal(t, int64(1), stats.CommunityPostsThisWeek)
	require.InDelta(t, 3.0, stats.AverageMoodScore, 1e-9)
	require.Equal(t, int64(1), stats.UpcomingEvents)
	require.Equal(t, int64(1), stats.OpenPeerSupportRequests)
	require.True(t, server.Exists("analytics:admin_stats"))

	f.profile(t, 3, "Cy", "", visualMorning())
	cached, err := svc.GetStats(ctx)
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	require.Equal(t, int64(2), cached.TotalUsers)
}

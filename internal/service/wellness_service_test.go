package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/models"
	"github.com/noah-isme/sprint-connect-api/internal/repository"
	"github.com/noah-isme/sprint-connect-api/internal/wellness"
	"github.com/noah-isme/sprint-connect-api/pkg/mailer"
)

func newWellnessService(f *fixture, mail *recordingMailer, cache CacheInvalidator, now time.Time) *wellnessService {
	var m mailer.Mailer
	if mail != nil {
		m = mail
	}
	svc := NewWellnessService(f.repos.wellness, f.points, f.repos.profiles, f.notifier, m, nil, cache, testValidator(), testLogger()).(*wellnessService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestWellnessServiceCheckinOncePerDay(t *testing.T) {
	f := newFixture(t)
	cache := &countingInvalidator{}
	now := time.Date(2024, time.May, 10, 8, 30, 0, 0, time.UTC)
	svc := newWellnessService(f, nil, cache, now)
	ctx := context.Background()

	first, err := svc.Checkin(ctx, 3, dto.CheckinRequest{MoodScore: intPtr(4), MoodEmoji: "😌", Note: "<b>ok</b> day"})
	require.NoError(t, err)
	require.True(t, first.FirstToday)
	require.Equal(t, "2024-05-10", first.Checkin.Day)
	require.Equal(t, "ok day", first.Checkin.Note)
	require.Equal(t, 1, first.StreakDays)
	require.NotNil(t, first.Points)
	require.Equal(t, 10, first.Points.Points)

	second, err := svc.Checkin(ctx, 3, dto.CheckinRequest{MoodScore: intPtr(0)})
	require.NoError(t, err)
	require.False(t, second.FirstToday)
	require.Nil(t, second.Points)
	require.Equal(t, first.Checkin.ID, second.Checkin.ID)
	require.Equal(t, 0, second.Checkin.MoodScore)
	require.Equal(t, 1, second.StreakDays)

	count, err := f.repos.wellness.CountByUser(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	stats, err := f.points.Stats(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 10, stats.Points)
	require.Equal(t, []uint{3, 3}, cache.users)
}

// concurrentCheckinRepo stores a same-day check-in from another request
// just before the wrapped upsert runs.
type concurrentCheckinRepo struct {
	repository.WellnessRepository
	competing models.WellnessCheckin
}

func (r *concurrentCheckinRepo) Upsert(ctx context.Context, checkin *models.WellnessCheckin) (bool, error) {
	competing := r.competing
	if err := r.WellnessRepository.Create(ctx, &competing); err != nil {
		return false, err
	}
	return r.WellnessRepository.Upsert(ctx, checkin)
}

func TestWellnessServiceCheckinLosesSameDayRace(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2024, time.May, 10, 8, 30, 0, 0, time.UTC)
	ctx := context.Background()

	repo := &concurrentCheckinRepo{
		WellnessRepository: f.repos.wellness,
		competing:          models.WellnessCheckin{UserID: 3, Day: "2024-05-10", MoodScore: 2},
	}
	svc := NewWellnessService(repo, f.points, f.repos.profiles, f.notifier, nil, nil, nil, testValidator(), testLogger()).(*wellnessService)
	svc.now = func() time.Time { return now }

	resp, err := svc.Checkin(ctx, 3, dto.CheckinRequest{MoodScore: intPtr(5), Note: "late"})
	require.NoError(t, err)
	require.False(t, resp.FirstToday)
	require.Nil(t, resp.Points)
	require.Equal(t, 5, resp.Checkin.MoodScore)

	stored, err := f.repos.wellness.FindByDay(ctx, 3, "2024-05-10")
	require.NoError(t, err)
	require.Equal(t, 5, stored.MoodScore)
	require.Equal(t, "late", stored.Note)

	count, err := f.repos.wellness.CountByUser(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestWellnessServiceRejectsOutOfRangeMood(t *testing.T) {
	f := newFixture(t)
	svc := newWellnessService(f, nil, nil, time.Now())

	_, err := svc.Checkin(context.Background(), 3, dto.CheckinRequest{MoodScore: intPtr(6)})
	require.Error(t, err)

	_, err = svc.Checkin(context.Background(), 3, dto.CheckinRequest{})
	require.Error(t, err)
}

func TestWellnessServiceTrendInsufficientData(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		f.checkin(t, 4, now.AddDate(0, 0, -i), 3)
	}
	svc := newWellnessService(f, nil, nil, now)

	trend, err := svc.Trend(context.Background(), 4)
	require.NoError(t, err)
	require.False(t, trend.Sufficient)
	require.Equal(t, 6, trend.Entries)
	require.False(t, trend.Alert)
	require.Empty(t, f.notifier.calls)
}

func TestWellnessServiceTrendAlertsOncePerDay(t *testing.T) {
	f := newFixture(t)
	f.profile(t, 5, "Lin", "lin@example.com", visualMorning())
	now := time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC)

	// Prior week fine, recent week low.
	for i := 7; i < 14; i++ {
		f.checkin(t, 5, now.AddDate(0, 0, -i), 4)
	}
	for i := 0; i < 7; i++ {
		f.checkin(t, 5, now.AddDate(0, 0, -i), 1)
	}

	mail := &recordingMailer{}
	svc := newWellnessService(f, mail, nil, now)
	ctx := context.Background()

	trend, err := svc.Trend(ctx, 5)
	require.NoError(t, err)
	require.True(t, trend.Sufficient)
	require.Equal(t, string(wellness.TrendDeclining), trend.Trend)
	require.Equal(t, 7, trend.LowMoodDays)
	require.True(t, trend.Alert)
	require.Equal(t, string(wellness.AlertReachOut), trend.Level)
	require.True(t, trend.Notified)

	again, err := svc.Trend(ctx, 5)
	require.NoError(t, err)
	require.True(t, again.Alert)
	require.False(t, again.Notified)

	require.Len(t, f.notifier.calls, 1)
	alert := f.notifier.calls[0]
	require.Equal(t, wellnessAlertTitle, alert.Title)
	require.Equal(t, models.NotificationTypeAlert, alert.Type)
	require.Equal(t, "/peer-support", alert.ActionURL)
	require.Equal(t, wellness.ReachOutMessage, alert.Message)

	require.Len(t, mail.sent, 1)
	require.Equal(t, "lin@example.com", mail.sent[0].ToEmail)
	require.Equal(t, "wellness_alert", mail.sent[0].Template)
}

func TestWellnessServiceAlertDedupUsesRedis(t *testing.T) {
	f := newFixture(t)
	server, client := newTestRedis(t)
	now := time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		f.checkin(t, 6, now.AddDate(0, 0, -i), 2)
	}

	build := func() *wellnessService {
		svc := NewWellnessService(f.repos.wellness, nil, nil, f.notifier, nil, client, nil, testValidator(), testLogger()).(*wellnessService)
		svc.now = func() time.Time { return now }
		return svc
	}

	// Two instances share the redis claim, as two API replicas would.
	first, err := build().Trend(context.Background(), 6)
	require.NoError(t, err)
	require.True(t, first.Notified)
	require.Equal(t, string(wellness.AlertSupport), first.Level)

	second, err := build().Trend(context.Background(), 6)
	require.NoError(t, err)
	require.False(t, second.Notified)

	require.True(t, server.Exists("wellness:alert:6:2024-05-20"))
	require.Len(t, f.notifier.calls, 1)
}

func TestWellnessServiceStatsAndHistory(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)
	scores := []int{2, 2, 3, 4, 5}
	for i, score := range scores {
		f.checkin(t, 8, now.AddDate(0, 0, -(len(scores)-1-i)), score)
	}
	f.checkin(t, 8, now.AddDate(0, 0, -40), 1)
	svc := newWellnessService(f, nil, nil, now)
	ctx := context.Background()

	stats, err := svc.Stats(ctx, 8)
	require.NoError(t, err)
	require.Equal(t, 5, stats.TotalCheckins)
	require.Equal(t, 5, stats.Streak)
	require.InDelta(t, 3.2, stats.AverageMood, 1e-9)
	require.Equal(t, string(wellness.TrendImproving), stats.Trend)

	history, err := svc.History(ctx, 8, 0)
	require.NoError(t, err)
	require.Len(t, history, 5)

	history, err = svc.History(ctx, 8, 365)
	require.NoError(t, err)
	require.Len(t, history, 6)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
)

func newEventService(f *fixture, now time.Time) EventService {
	svc := NewEventService(f.repos.events, f.points, nil, testValidator(), testLogger())
	svc.(*eventService).now = func() time.Time { return now }
	return svc
}

func TestEventRSVPRespectsCapacity(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	svc := newEventService(f, now)
	ctx := context.Background()

	event, err := svc.Create(ctx, 1, dto.EventCreateRequest{
		Title:        "Study <b>Jam</b>",
		Location:     "Library",
		EventDate:    now.Add(48 * time.Hour),
		MaxAttendees: intPtr(2),
	})
	require.NoError(t, err)
	require.Equal(t, "Study Jam", event.Title)
	require.False(t, event.IsFull)

	first, err := svc.RSVP(ctx, event.ID, 10)
	require.NoError(t, err)
	require.Equal(t, "RSVP successful", first.Message)
	require.Equal(t, 1, first.AttendeeCount)
	require.Equal(t, 10, first.Points.Points)

	_, err = svc.RSVP(ctx, event.ID, 10)
	require.ErrorIs(t, err, ErrAlreadyRSVPd)

	second, err := svc.RSVP(ctx, event.ID, 11)
	require.NoError(t, err)
	require.Equal(t, 2, second.AttendeeCount)

	_, err = svc.RSVP(ctx, event.ID, 12)
	require.ErrorIs(t, err, ErrEventFull)

	_, err = svc.RSVP(ctx, 404, 12)
	require.ErrorIs(t, err, ErrEventNotFound)

	events, err := svc.List(ctx, dto.EventListQuery{UpcomingOnly: true})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.True(t, events[0].IsFull)
}

func TestEventAttendRequiresRSVP(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	svc := newEventService(f, now)
	ctx := context.Background()

	event, err := svc.Create(ctx, 1, dto.EventCreateRequest{Title: "Wellness Talk", EventDate: now})
	require.NoError(t, err)

	_, err = svc.Attend(ctx, event.ID, 5)
	require.ErrorIs(t, err, ErrNotRSVPd)

	_, err = svc.RSVP(ctx, event.ID, 5)
	require.NoError(t, err)

	attended, err := svc.Attend(ctx, event.ID, 5)
	require.NoError(t, err)
	require.Equal(t, now, attended.AttendedAt)
	require.Equal(t, 15, attended.Points.Points)

	_, err = svc.Attend(ctx, event.ID, 5)
	require.ErrorIs(t, err, ErrAlreadyAttended)

	_, err = svc.Attend(ctx, 404, 5)
	require.ErrorIs(t, err, ErrEventNotFound)

	stats, err := f.points.Stats(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, 25, stats.TotalPointsEarned)
}

func TestEventListHidesPastEvents(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	svc := newEventService(f, now)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, dto.EventCreateRequest{Title: "Last week", EventDate: now.AddDate(0, 0, -7)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, dto.EventCreateRequest{Title: "Next week", EventDate: now.AddDate(0, 0, 7)})
	require.NoError(t, err)

	upcoming, err := svc.List(ctx, dto.EventListQuery{UpcomingOnly: true})
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	require.Equal(t, "Next week", upcoming[0].Title)

	all, err := svc.List(ctx, dto.EventListQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = svc.Create(ctx, 1, dto.EventCreateRequest{Title: "No date"})
	require.Error(t, err)
}

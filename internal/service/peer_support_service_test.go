package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/models"
)

func TestPeerSupportFlow(t *testing.T) {
	f := newFixture(t)
	mail := &recordingMailer{}
	cache := &countingInvalidator{}
	svc := NewPeerSupportService(f.repos.peerSupport, f.repos.profiles, f.points, f.notifier, mail, cache, testValidator(), testLogger())
	ctx := context.Background()

	f.profile(t, 1, "Seeker", "seeker@example.com", models.StudyPreferences{})

	request, err := svc.Create(ctx, 1, dto.PeerSupportCreateRequest{Message: "Feeling <b>overwhelmed</b> by exams"})
	require.NoError(t, err)
	require.Equal(t, "other", request.Topic)
	require.Equal(t, models.PeerSupportPending, request.Status)
	require.Equal(t, "Feeling overwhelmed by exams", request.Message)

	open, err := svc.List(ctx, 2, dto.PeerSupportListQuery{Scope: "open"})
	require.NoError(t, err)
	require.Len(t, open, 1)

	own, err := svc.List(ctx, 1, dto.PeerSupportListQuery{Scope: "open"})
	require.NoError(t, err)
	require.Empty(t, own)

	_, err = svc.Accept(ctx, request.ID, 1)
	require.ErrorIs(t, err, ErrPeerSupportSelf)

	_, err = svc.Complete(ctx, request.ID, 1)
	require.ErrorIs(t, err, ErrPeerSupportNotActive)

	accepted, err := svc.Accept(ctx, request.ID, 2)
	require.NoError(t, err)
	require.Equal(t, models.PeerSupportActive, accepted.Status)
	require.Equal(t, uint(2), *accepted.SupporterID)

	_, err = svc.Accept(ctx, request.ID, 3)
	require.ErrorIs(t, err, ErrPeerSupportNotPending)

	require.Contains(t, f.notifier.titles(), "A peer supporter is here for you")
	require.Len(t, mail.sent, 1)
	require.Equal(t, "peer_support_accepted", mail.sent[0].Template)
	require.Equal(t, "seeker@example.com", mail.sent[0].ToEmail)

	_, err = svc.Complete(ctx, request.ID, 3)
	require.ErrorIs(t, err, ErrPeerSupportNotFound)

	done, err := svc.Complete(ctx, request.ID, 1)
	require.NoError(t, err)
	require.Equal(t, models.PeerSupportCompleted, done.Request.Status)
	require.NotNil(t, done.Points)
	require.Equal(t, 25, done.Points.Points)

	supporter, err := f.points.Stats(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 25, supporter.TotalPointsEarned)

	mine, err := svc.List(ctx, 2, dto.PeerSupportListQuery{})
	require.NoError(t, err)
	require.Len(t, mine, 1)

	_, err = svc.Accept(ctx, 404, 2)
	require.ErrorIs(t, err, ErrPeerSupportNotFound)

	require.Equal(t, []uint{1, 2, 1, 2}, cache.users)
}

func TestPeerSupportRejectsShortMessages(t *testing.T) {
	f := newFixture(t)
	svc := NewPeerSupportService(f.repos.peerSupport, f.repos.profiles, f.points, f.notifier, nil, nil, testValidator(), testLogger())

	_, err := svc.Create(context.Background(), 1, dto.PeerSupportCreateRequest{Message: "hi"})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), 1, dto.PeerSupportCreateRequest{Topic: "gossip", Message: "long enough message"})
	require.Error(t, err)
}

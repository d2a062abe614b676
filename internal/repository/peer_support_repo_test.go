package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

func TestPeerSupportRepositoryScopes(t *testing.T) {
	db := newTestDB(t)
	repo := NewPeerSupportRepository(db)
	ctx := context.Background()

	mine := models.PeerSupportRequest{SeekerID: 1, Status: models.PeerSupportPending, Topic: "academic", Message: "stuck"}
	theirs := models.PeerSupportRequest{SeekerID: 2, Status: models.PeerSupportPending, Topic: "wellbeing", Message: "stressed"}
	require.NoError(t, repo.Create(ctx, &mine))
	require.NoError(t, repo.Create(ctx, &theirs))

	open, err := repo.List(ctx, PeerSupportFilter{Open: true, ExcludeSeeker: 1})
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, theirs.ID, open[0].ID)

	supporter := uint(1)
	theirs.SupporterID = &supporter
	theirs.Status = models.PeerSupportActive
	require.NoError(t, repo.Save(ctx, &theirs))

	participant := uint(1)
	involved, err := repo.List(ctx, PeerSupportFilter{Participant: &participant})
	require.NoError(t, err)
	require.Len(t, involved, 2)

	active, err := repo.List(ctx, PeerSupportFilter{Participant: &participant, Status: models.PeerSupportActive})
	require.NoError(t, err)
	require.Len(t, active, 1)

	pending, err := repo.CountByStatus(ctx, models.PeerSupportPending)
	require.NoError(t, err)
	require.Equal(t, int64(1), pending)
}

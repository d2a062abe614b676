package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/models"
)

func TestProfileUpsertAndVisibility(t *testing.T) {
	f := newFixture(t)
	cache := &countingInvalidator{}
	svc := NewProfileService(f.repos.profiles, cache, testValidator(), testLogger())
	ctx := context.Background()

	_, err := svc.Get(ctx, 7)
	require.ErrorIs(t, err, ErrProfileNotFound)

	saved, err := svc.Upsert(ctx, 7, dto.ProfileUpsertRequest{
		FullName:      "<b>Maya</b> Lin",
		Email:         "maya@example.com",
		StudentNumber: "S-001",
		Program:       "Digital Transformation",
		Interests:     []string{" design ", "Design", "data"},
		StudyPreferences: dto.StudyPreferencesPayload{
			LearningStyle:  "visual",
			PreferredTimes: []string{"morning"},
			GroupSize:      "small",
			Goals:          []string{"pass exam"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Maya Lin", saved.FullName)
	require.Equal(t, models.DefaultAvatarEmoji, saved.AvatarEmoji)
	require.Equal(t, []string{"design", "data"}, saved.Interests)
	require.Equal(t, "maya@example.com", saved.Email)
	require.Equal(t, []uint{7}, cache.users)

	public, err := svc.GetPublic(ctx, 7)
	require.NoError(t, err)
	require.Empty(t, public.Email)
	require.Empty(t, public.StudentNumber)
	require.Equal(t, "visual", public.StudyPreferences.LearningStyle)

	updated, err := svc.Upsert(ctx, 7, dto.ProfileUpsertRequest{
		FullName:         "Maya Lin",
		AvatarEmoji:      "🦊",
		StudyPreferences: dto.StudyPreferencesPayload{LearningStyle: "auditory", GroupSize: "medium"},
	})
	require.NoError(t, err)
	require.Equal(t, saved.ID, updated.ID)
	require.Equal(t, "🦊", updated.AvatarEmoji)
	require.Equal(t, "auditory", updated.StudyPreferences.LearningStyle)
	require.Empty(t, updated.StudyPreferences.Goals)
}

func TestProfileUpsertValidatesPreferences(t *testing.T) {
	f := newFixture(t)
	svc := NewProfileService(f.repos.profiles, nil, testValidator(), testLogger())

	_, err := svc.Upsert(context.Background(), 1, dto.ProfileUpsertRequest{
		FullName:         "Sam",
		StudyPreferences: dto.StudyPreferencesPayload{LearningStyle: "telepathic", GroupSize: "small"},
	})
	require.Error(t, err)

	_, err = svc.Upsert(context.Background(), 1, dto.ProfileUpsertRequest{
		FullName:         "Sam",
		Email:            "not-an-email",
		StudyPreferences: dto.StudyPreferencesPayload{LearningStyle: "visual", GroupSize: "small"},
	})
	require.Error(t, err)
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/matching"
	"github.com/noah-isme/sprint-connect-api/internal/models"
)

func newCircleService(f *fixture, cache CacheInvalidator) CircleService {
	return NewCircleService(f.repos.circles, f.repos.courses, f.repos.profiles, f.points, cache, matching.DefaultScorer(), testValidator(), testLogger())
}

func TestCircleMatchCreatesThenJoins(t *testing.T) {
	f := newFixture(t)
	cache := &countingInvalidator{}
	svc := newCircleService(f, cache)
	ctx := context.Background()

	course := f.course(t, "DTM101")
	f.profile(t, 1, "Ana", "ana@example.com", visualMorning())
	f.profile(t, 2, "Bo", "bo@example.com", visualMorning())

	first, err := svc.Match(ctx, 1, dto.CircleMatchRequest{CourseID: course.ID})
	require.NoError(t, err)
	require.True(t, first.Created)
	require.Equal(t, "DTM101 Study Circle 1", first.Circle.Name)
	require.Equal(t, "Sprint3", first.Circle.SprintID)
	require.Equal(t, 1, first.Circle.MemberCount)
	require.NotNil(t, first.Points)
	require.Equal(t, 20, first.Points.Points)

	second, err := svc.Match(ctx, 2, dto.CircleMatchRequest{CourseID: course.ID})
	require.NoError(t, err)
	require.False(t, second.Created)
	require.Equal(t, first.Circle.ID, second.Circle.ID)
	require.InDelta(t, 1.0, second.Score, 1e-9)
	require.Equal(t, 2, second.Circle.MemberCount)

	_, err = svc.Match(ctx, 2, dto.CircleMatchRequest{CourseID: course.ID})
	require.ErrorIs(t, err, ErrAlreadyInCircle)

	members, err := svc.Members(ctx, first.Circle.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, models.CircleRoleLeader, members[0].Role)
	require.Equal(t, "Ana", members[0].FullName)

	mine, err := svc.List(ctx, 2, &course.ID, true)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	require.Equal(t, []uint{1, 2}, cache.users)
	require.Contains(t, f.notifier.titles(), "New Badge Earned: 🎓 Study Buddy!")
}

func TestCircleMatchOpensNewCircleWhenFull(t *testing.T) {
	f := newFixture(t)
	svc := newCircleService(f, nil)
	ctx := context.Background()

	course := f.course(t, "DTM201")
	for id := uint(1); id <= DefaultCircleCapacity+1; id++ {
		f.profile(t, id, "Student", "", visualMorning())
	}

	var last dto.CircleMatchResponse
	for id := uint(1); id <= DefaultCircleCapacity+1; id++ {
		resp, err := svc.Match(ctx, id, dto.CircleMatchRequest{CourseID: course.ID})
		require.NoError(t, err)
		last = resp
	}

	require.True(t, last.Created)
	require.Equal(t, "DTM201 Study Circle 2", last.Circle.Name)

	circles, err := svc.List(ctx, 0, &course.ID, false)
	require.NoError(t, err)
	require.Len(t, circles, 2)
	require.Equal(t, DefaultCircleCapacity, circles[0].MemberCount)
}

func TestCircleMatchRequiresPreferences(t *testing.T) {
	f := newFixture(t)
	svc := newCircleService(f, nil)
	ctx := context.Background()
	course := f.course(t, "DTM301")

	_, err := svc.Match(ctx, 9, dto.CircleMatchRequest{CourseID: course.ID})
	require.ErrorIs(t, err, ErrProfileIncomplete)

	f.profile(t, 9, "No Prefs", "", models.StudyPreferences{})
	_, err = svc.Match(ctx, 9, dto.CircleMatchRequest{CourseID: course.ID})
	require.ErrorIs(t, err, ErrProfileIncomplete)

	f.profile(t, 9, "No Prefs", "", visualMorning())
	_, err = svc.Match(ctx, 9, dto.CircleMatchRequest{CourseID: 999})
	require.ErrorIs(t, err, ErrCourseNotFound)

	_, err = svc.Match(ctx, 9, dto.CircleMatchRequest{})
	require.Error(t, err)
}

func TestCircleSuggestionsRankByCompatibility(t *testing.T) {
	f := newFixture(t)
	svc := newCircleService(f, nil)
	ctx := context.Background()

	f.profile(t, 1, "Ana", "", visualMorning())
	f.profile(t, 2, "Bo", "", visualMorning())
	f.profile(t, 3, "Cy", "", models.StudyPreferences{LearningStyle: "auditory", GroupSize: "large", PreferredTimes: []string{"night"}})
	f.profile(t, 4, "Di", "", models.StudyPreferences{})

	peers, err := svc.Suggestions(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, peers, 2)
	require.Equal(t, uint(2), peers[0].UserID)
	require.InDelta(t, 1.0, peers[0].Score, 1e-9)
	require.Equal(t, []string{"pass exam"}, peers[0].SharedGoals)
	require.Equal(t, uint(3), peers[1].UserID)
	require.Empty(t, peers[1].SharedGoals)

	_, err = svc.Suggestions(ctx, 4, 5)
	require.ErrorIs(t, err, ErrProfileIncomplete)
}

func TestCircleEnsureMember(t *testing.T) {
	f := newFixture(t)
	svc := newCircleService(f, nil)
	ctx := context.Background()

	course := f.course(t, "DTM101")
	f.profile(t, 1, "Ana", "", visualMorning())
	resp, err := svc.Match(ctx, 1, dto.CircleMatchRequest{CourseID: course.ID})
	require.NoError(t, err)

	require.NoError(t, svc.EnsureMember(ctx, resp.Circle.ID, 1))
	require.ErrorIs(t, svc.EnsureMember(ctx, resp.Circle.ID, 2), ErrNotCircleMember)
	require.ErrorIs(t, svc.EnsureMember(ctx, 404, 1), ErrCircleNotFound)
}

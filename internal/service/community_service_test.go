package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/models"
)

func newCommunityService(f *fixture, cache CacheInvalidator) CommunityService {
	return NewCommunityService(f.repos.community, f.points, f.notifier, cache, testValidator(), testLogger())
}

func TestCommunityCreatePostSanitizesAndAwards(t *testing.T) {
	f := newFixture(t)
	cache := &countingInvalidator{}
	svc := newCommunityService(f, cache)
	ctx := context.Background()

	resp, err := svc.CreatePost(ctx, 1, dto.PostCreateRequest{
		Title:    "<i>Exam</i> tips",
		Content:  "<b>Sleep</b> well<script>alert(1)</script>",
		Category: models.PostCategoryTip,
	})
	require.NoError(t, err)
	require.Equal(t, "Exam tips", resp.Post.Title)
	require.Equal(t, "<b>Sleep</b> well", resp.Post.Content)
	require.NotNil(t, resp.Points)
	require.Equal(t, 15, resp.Points.Points)
	require.Equal(t, []uint{1}, cache.users)

	_, err = svc.CreatePost(ctx, 1, dto.PostCreateRequest{Title: "Hi", Content: "x", Category: "rant"})
	require.Error(t, err)

	_, err = svc.CreatePost(ctx, 1, dto.PostCreateRequest{Title: "<script>x</script>", Content: "body", Category: models.PostCategoryQuestion})
	require.Error(t, err)
}

func TestCommunityListPostsPaginates(t *testing.T) {
	f := newFixture(t)
	svc := newCommunityService(f, nil)
	ctx := context.Background()

	for _, category := range []string{models.PostCategoryTip, models.PostCategoryQuestion, models.PostCategoryTip} {
		_, err := svc.CreatePost(ctx, 2, dto.PostCreateRequest{Title: "Post title", Content: "content", Category: category})
		require.NoError(t, err)
	}

	posts, meta, err := svc.ListPosts(ctx, dto.PostListQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.Equal(t, dto.PaginationMeta{Page: 1, PageSize: 2, TotalItems: 3, TotalPages: 2}, meta)

	tips, meta, err := svc.ListPosts(ctx, dto.PostListQuery{Category: models.PostCategoryTip})
	require.NoError(t, err)
	require.Len(t, tips, 2)
	require.Equal(t, int64(2), meta.TotalItems)
}

func TestCommunityLikeOncePerUser(t *testing.T) {
	f := newFixture(t)
	svc := newCommunityService(f, nil)
	ctx := context.Background()

	created, err := svc.CreatePost(ctx, 1, dto.PostCreateRequest{Title: "Celebrate", Content: "We passed!", Category: models.PostCategoryCelebration})
	require.NoError(t, err)

	like, err := svc.Like(ctx, created.Post.ID, 2)
	require.NoError(t, err)
	require.Equal(t, 1, like.LikesCount)

	_, err = svc.Like(ctx, created.Post.ID, 2)
	require.ErrorIs(t, err, ErrAlreadyLiked)

	_, err = svc.Like(ctx, 999, 2)
	require.ErrorIs(t, err, ErrPostNotFound)

	stats, err := f.points.Stats(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalPointsEarned)
}

func TestCommunityCommentNotifiesAuthor(t *testing.T) {
	f := newFixture(t)
	svc := newCommunityService(f, nil)
	ctx := context.Background()

	created, err := svc.CreatePost(ctx, 1, dto.PostCreateRequest{Title: "Need help", Content: "Anyone for stats?", Category: models.PostCategoryQuestion})
	require.NoError(t, err)

	_, err = svc.Comment(ctx, created.Post.ID, 1, dto.CommentCreateRequest{Content: "bump"})
	require.NoError(t, err)
	require.NotContains(t, f.notifier.titles(), "New comment on your post")

	reply, err := svc.Comment(ctx, created.Post.ID, 2, dto.CommentCreateRequest{Content: "Me!"})
	require.NoError(t, err)
	require.Equal(t, 5, reply.Points.Points)
	require.Contains(t, f.notifier.titles(), "New comment on your post")

	var notified dto.NotificationCreateRequest
	for _, call := range f.notifier.calls {
		if call.Title == "New comment on your post" {
			notified = call
		}
	}
	require.Equal(t, uint(1), notified.UserID)
	require.Equal(t, models.NotificationTypeMessage, notified.Type)

	comments, err := svc.ListComments(ctx, created.Post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)

	_, err = svc.ListComments(ctx, 404)
	require.ErrorIs(t, err, ErrPostNotFound)
}

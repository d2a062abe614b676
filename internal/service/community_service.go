package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/gamification"
	"github.com/noah-isme/sprint-connect-api/internal/models"
	"github.com/noah-isme/sprint-connect-api/internal/repository"
)

var (
	// ErrPostNotFound is returned when a community post does not exist.
	ErrPostNotFound = errors.New("post not found")
	// ErrAlreadyLiked is returned when the user liked the post before.
	ErrAlreadyLiked = errors.New("post already liked")
)

const defaultPostPageSize = 20

// CommunityService manages the community feed.
type CommunityService interface {
	ListPosts(ctx context.Context, query dto.PostListQuery) ([]dto.PostResponse, dto.PaginationMeta, error)
	CreatePost(ctx context.Context, userID uint, req dto.PostCreateRequest) (dto.PostCreateResponse, error)
	Like(ctx context.Context, postID, userID uint) (dto.LikeResponse, error)
	Comment(ctx context.Context, postID, userID uint, req dto.CommentCreateRequest) (dto.CommentCreateResponse, error)
	ListComments(ctx context.Context, postID uint) ([]dto.CommentResponse, error)
}

type communityService struct {
	repo      repository.CommunityRepository
	points    GamificationService
	notifier  Notifier
	cache     CacheInvalidator
	validator *validator.Validate
	strict    *bluemonday.Policy
	ugc       *bluemonday.Policy
	logger    zerolog.Logger
}

// NewCommunityService constructs the community feed service.
func NewCommunityService(repo repository.CommunityRepository, points GamificationService, notifier Notifier, cache CacheInvalidator, validate *validator.Validate, logger zerolog.Logger) CommunityService {
	return &communityService{
		repo:      repo,
		points:    points,
		notifier:  notifier,
		cache:     cache,
		validator: validate,
		strict:    bluemonday.StrictPolicy(),
		ugc:       bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "community_service").Logger(),
	}
}

func (s *communityService) ListPosts(ctx context.Context, query dto.PostListQuery) ([]dto.PostResponse, dto.PaginationMeta, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, dto.PaginationMeta{}, err
	}

	page := query.Page
	if page <= 0 {
		page = 1
	}
	size := query.Limit
	if size <= 0 {
		size = defaultPostPageSize
	}

	posts, total, err := s.repo.ListPosts(ctx, repository.PostFilter{Category: query.Category, Page: page, PageSize: size})
	if err != nil {
		return nil, dto.PaginationMeta{}, err
	}
	return dto.NewPostResponseSlice(posts), dto.NewPaginationMeta(page, size, total), nil
}

func (s *communityService) CreatePost(ctx context.Context, userID uint, req dto.PostCreateRequest) (dto.PostCreateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PostCreateResponse{}, err
	}

	post := models.CommunityPost{
		AuthorID: userID,
		Title:    sanitizeText(s.strict, req.Title),
		Content:  sanitizeText(s.ugc, req.Content),
		Category: req.Category,
	}
	if post.Title == "" || post.Content == "" {
		return dto.PostCreateResponse{}, errors.New("post content empty after sanitization")
	}

	if err := s.repo.CreatePost(ctx, &post); err != nil {
		return dto.PostCreateResponse{}, fmt.Errorf("create post: %w", err)
	}

	award := awardBestEffort(ctx, s.points, s.logger, userID, gamification.ActionCreatePost, "Created a community post")
	invalidate(ctx, s.cache, userID)

	return dto.PostCreateResponse{Post: dto.NewPostResponse(post), Points: award}, nil
}

func (s *communityService) Like(ctx context.Context, postID, userID uint) (dto.LikeResponse, error) {
	post, err := s.repo.Like(ctx, postID, userID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.LikeResponse{}, ErrPostNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return dto.LikeResponse{}, ErrAlreadyLiked
		}
		return dto.LikeResponse{}, err
	}

	awardBestEffort(ctx, s.points, s.logger, userID, gamification.ActionLikePost, "Liked a post")
	return dto.LikeResponse{PostID: post.ID, LikesCount: post.LikesCount}, nil
}

func (s *communityService) Comment(ctx context.Context, postID, userID uint, req dto.CommentCreateRequest) (dto.CommentCreateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CommentCreateResponse{}, err
	}

	post, err := s.repo.FindPost(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CommentCreateResponse{}, ErrPostNotFound
		}
		return dto.CommentCreateResponse{}, err
	}

	comment := models.Comment{PostID: post.ID, AuthorID: userID, Content: sanitizeText(s.ugc, req.Content)}
	if comment.Content == "" {
		return dto.CommentCreateResponse{}, errors.New("comment content empty after sanitization")
	}
	if err := s.repo.CreateComment(ctx, &comment); err != nil {
		return dto.CommentCreateResponse{}, fmt.Errorf("create comment: %w", err)
	}

	award := awardBestEffort(ctx, s.points, s.logger, userID, gamification.ActionComment, "Commented on a post")

	if post.AuthorID != userID {
		notifyBestEffort(ctx, s.notifier, s.logger, dto.NotificationCreateRequest{
			UserID:    post.AuthorID,
			Title:     "New comment on your post",
			Message:   fmt.Sprintf("Someone replied to \"%s\".", post.Title),
			Type:      models.NotificationTypeMessage,
			ActionURL: fmt.Sprintf("/community/posts/%d", post.ID),
			Metadata:  map[string]interface{}{"post_id": post.ID, "comment_id": comment.ID},
		})
	}

	return dto.CommentCreateResponse{Comment: dto.NewCommentResponse(comment), Points: award}, nil
}

func (s *communityService) ListComments(ctx context.Context, postID uint) ([]dto.CommentResponse, error) {
	if _, err := s.repo.FindPost(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comments, err := s.repo.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	return dto.NewCommentResponseSlice(comments), nil
}

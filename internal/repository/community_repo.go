package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// PostFilter narrows the community feed.
type PostFilter struct {
	Category string
	Page     int
	PageSize int
}

// CommunityRepository persists posts, likes and comments.
type CommunityRepository interface {
	ListPosts(ctx context.Context, filter PostFilter) ([]models.CommunityPost, int64, error)
	FindPost(ctx context.Context, id uint) (models.CommunityPost, error)
	CreatePost(ctx context.Context, post *models.CommunityPost) error
	Like(ctx context.Context, postID, userID uint) (models.CommunityPost, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, postID uint) ([]models.Comment, error)
	CountPostsSince(ctx context.Context, since time.Time) (int64, error)
	CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error)
}

type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository constructs the repository implementation.
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) ListPosts(ctx context.Context, filter PostFilter) ([]models.CommunityPost, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CommunityPost{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pageSize := normalizeLimit(filter.PageSize, 20, 100)
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	var posts []models.CommunityPost
	if err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *communityRepository) FindPost(ctx context.Context, id uint) (models.CommunityPost, error) {
	var post models.CommunityPost
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return models.CommunityPost{}, err
	}
	return post, nil
}

func (r *communityRepository) CreatePost(ctx context.Context, post *models.CommunityPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *communityRepository) Like(ctx context.Context, postID, userID uint) (models.CommunityPost, error) {
	var post models.CommunityPost
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, postID).Error; err != nil {
			return err
		}
		var existing int64
		if err := tx.Model(&models.PostLike{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicate
		}
		if err := tx.Create(&models.PostLike{PostID: postID, UserID: userID}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.CommunityPost{}).Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1)).Error; err != nil {
			return err
		}
		return tx.First(&post, postID).Error
	})
	return post, err
}

func (r *communityRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.CommunityPost{}).Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + ?", 1)).Error
	})
}

func (r *communityRepository) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at ASC, id ASC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *communityRepository) CountPostsSince(ctx context.Context, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.CommunityPost{}).Where("created_at >= ?", since).Count(&total).Error
	return total, err
}

func (r *communityRepository) CountPostsByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.CommunityPost{}).Where("author_id = ?", authorID).Count(&total).Error
	return total, err
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// PeerSupportFilter selects requests. Participant matches either side; Open
// lists pending requests not created by ExcludeSeeker.
type PeerSupportFilter struct {
	Participant   *uint
	Open          bool
	ExcludeSeeker uint
	Status        string
	Limit         int
}

// PeerSupportRepository persists peer support requests.
type PeerSupportRepository interface {
	Create(ctx context.Context, request *models.PeerSupportRequest) error
	FindByID(ctx context.Context, id uint) (models.PeerSupportRequest, error)
	Save(ctx context.Context, request *models.PeerSupportRequest) error
	List(ctx context.Context, filter PeerSupportFilter) ([]models.PeerSupportRequest, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type peerSupportRepository struct {
	db *gorm.DB
}

// NewPeerSupportRepository constructs the repository implementation.
func NewPeerSupportRepository(db *gorm.DB) PeerSupportRepository {
	return &peerSupportRepository{db: db}
}

func (r *peerSupportRepository) Create(ctx context.Context, request *models.PeerSupportRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *peerSupportRepository) FindByID(ctx context.Context, id uint) (models.PeerSupportRequest, error) {
	var request models.PeerSupportRequest
	if err := r.db.WithContext(ctx).First(&request, id).Error; err != nil {
		return models.PeerSupportRequest{}, err
	}
	return request, nil
}

func (r *peerSupportRepository) Save(ctx context.Context, request *models.PeerSupportRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *peerSupportRepository) List(ctx context.Context, filter PeerSupportFilter) ([]models.PeerSupportRequest, error) {
	query := r.db.WithContext(ctx).Model(&models.PeerSupportRequest{})
	switch {
	case filter.Open:
		query = query.Where("status = ? AND seeker_id <> ?", models.PeerSupportPending, filter.ExcludeSeeker)
	case filter.Participant != nil:
		query = query.Where("seeker_id = ? OR supporter_id = ?", *filter.Participant, *filter.Participant)
	}
	if filter.Status != "" && !filter.Open {
		query = query.Where("status = ?", filter.Status)
	}

	var requests []models.PeerSupportRequest
	if err := query.Order("created_at DESC, id DESC").Limit(normalizeLimit(filter.Limit, 20, 100)).Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *peerSupportRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.PeerSupportRequest{}).Where("status = ?", status).Count(&total).Error
	return total, err
}

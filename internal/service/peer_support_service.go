package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/gamification"
	"github.com/noah-isme/sprint-connect-api/internal/models"
	"github.com/noah-isme/sprint-connect-api/internal/repository"
	"github.com/noah-isme/sprint-connect-api/pkg/mailer"
)

var (
	// ErrPeerSupportNotFound is returned when the request does not exist or the
	// caller may not see it.
	ErrPeerSupportNotFound = errors.New("peer support request not found")
	// ErrPeerSupportSelf is returned when a student accepts their own request.
	ErrPeerSupportSelf = errors.New("cannot support your own request")
	// ErrPeerSupportNotPending is returned when accepting a taken request.
	ErrPeerSupportNotPending = errors.New("peer support request is no longer pending")
	// ErrPeerSupportNotActive is returned when completing a request that is not active.
	ErrPeerSupportNotActive = errors.New("peer support request is not active")
)

// PeerSupportService pairs students who need support with peer supporters.
type PeerSupportService interface {
	Create(ctx context.Context, userID uint, req dto.PeerSupportCreateRequest) (dto.PeerSupportResponse, error)
	List(ctx context.Context, userID uint, query dto.PeerSupportListQuery) ([]dto.PeerSupportResponse, error)
	Accept(ctx context.Context, requestID, supporterID uint) (dto.PeerSupportResponse, error)
	Complete(ctx context.Context, requestID, userID uint) (dto.PeerSupportCompleteResponse, error)
}

type peerSupportService struct {
	repo      repository.PeerSupportRepository
	profiles  repository.ProfileRepository
	points    GamificationService
	notifier  Notifier
	mail      mailer.Mailer
	cache     CacheInvalidator
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewPeerSupportService constructs the peer support service.
func NewPeerSupportService(repo repository.PeerSupportRepository, profiles repository.ProfileRepository, points GamificationService, notifier Notifier, mail mailer.Mailer, cache CacheInvalidator, validate *validator.Validate, logger zerolog.Logger) PeerSupportService {
	return &peerSupportService{
		repo:      repo,
		profiles:  profiles,
		points:    points,
		notifier:  notifier,
		mail:      mail,
		cache:     cache,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "peer_support_service").Logger(),
		now:       time.Now,
	}
}

func (s *peerSupportService) Create(ctx context.Context, userID uint, req dto.PeerSupportCreateRequest) (dto.PeerSupportResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PeerSupportResponse{}, err
	}

	topic := req.Topic
	if topic == "" {
		topic = "other"
	}
	request := models.PeerSupportRequest{
		SeekerID: userID,
		Status:   models.PeerSupportPending,
		Topic:    topic,
		Message:  sanitizeText(s.sanitizer, req.Message),
	}
	if request.Message == "" {
		return dto.PeerSupportResponse{}, errors.New("message empty after sanitization")
	}

	if err := s.repo.Create(ctx, &request); err != nil {
		return dto.PeerSupportResponse{}, fmt.Errorf("create peer support request: %w", err)
	}

	s.logger.Info().Uint("request_id", request.ID).Str("topic", topic).Msg("peer support requested")
	return dto.NewPeerSupportResponse(request), nil
}

func (s *peerSupportService) List(ctx context.Context, userID uint, query dto.PeerSupportListQuery) ([]dto.PeerSupportResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	filter := repository.PeerSupportFilter{Status: query.Status, Limit: query.Limit}
	if query.Scope == "open" {
		filter.Open = true
		filter.ExcludeSeeker = userID
	} else {
		filter.Participant = &userID
	}

	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewPeerSupportResponseSlice(requests), nil
}

func (s *peerSupportService) Accept(ctx context.Context, requestID, supporterID uint) (dto.PeerSupportResponse, error) {
	request, err := s.find(ctx, requestID)
	if err != nil {
		return dto.PeerSupportResponse{}, err
	}
	if request.SeekerID == supporterID {
		return dto.PeerSupportResponse{}, ErrPeerSupportSelf
	}
	if request.Status != models.PeerSupportPending {
		return dto.PeerSupportResponse{}, ErrPeerSupportNotPending
	}

	now := s.now().UTC()
	request.SupporterID = &supporterID
	request.Status = models.PeerSupportActive
	request.AcceptedAt = &now
	if err := s.repo.Save(ctx, &request); err != nil {
		return dto.PeerSupportResponse{}, fmt.Errorf("accept peer support request: %w", err)
	}

	notifyBestEffort(ctx, s.notifier, s.logger, dto.NotificationCreateRequest{
		UserID:    request.SeekerID,
		Title:     "A peer supporter is here for you",
		Message:   "Someone accepted your support request and will reach out soon.",
		Type:      models.NotificationTypeSupport,
		ActionURL: fmt.Sprintf("/peer-support/%d", request.ID),
		Metadata:  map[string]interface{}{"request_id": request.ID},
	})

	if s.mail != nil && s.profiles != nil {
		if profile, err := s.profiles.FindByUser(ctx, request.SeekerID); err == nil && profile.Email != "" {
			sendMailBestEffort(ctx, s.mail, s.logger, mailer.Message{
				Template: "peer_support_accepted",
				ToName:   profile.FullName,
				ToEmail:  profile.Email,
				Subject:  "Your peer support request was accepted",
				Text:     fmt.Sprintf("Hi %s,\n\nA peer supporter accepted your request about %s. Open the app to continue the conversation.", profile.FullName, request.Topic),
			})
		}
	}

	invalidate(ctx, s.cache, request.SeekerID, supporterID)
	return dto.NewPeerSupportResponse(request), nil
}

// Complete closes an active request. Either participant may complete it; the
// supporter earns the help_peer points.
func (s *peerSupportService) Complete(ctx context.Context, requestID, userID uint) (dto.PeerSupportCompleteResponse, error) {
	request, err := s.find(ctx, requestID)
	if err != nil {
		return dto.PeerSupportCompleteResponse{}, err
	}
	isSupporter := request.SupporterID != nil && *request.SupporterID == userID
	if request.SeekerID != userID && !isSupporter {
		return dto.PeerSupportCompleteResponse{}, ErrPeerSupportNotFound
	}
	if request.Status != models.PeerSupportActive || request.SupporterID == nil {
		return dto.PeerSupportCompleteResponse{}, ErrPeerSupportNotActive
	}

	now := s.now().UTC()
	request.Status = models.PeerSupportCompleted
	request.CompletedAt = &now
	if err := s.repo.Save(ctx, &request); err != nil {
		return dto.PeerSupportCompleteResponse{}, fmt.Errorf("complete peer support request: %w", err)
	}

	supporterID := *request.SupporterID
	award := awardBestEffort(ctx, s.points, s.logger, supporterID, gamification.ActionHelpPeer, "Helped a peer")
	invalidate(ctx, s.cache, request.SeekerID, supporterID)

	return dto.PeerSupportCompleteResponse{Request: dto.NewPeerSupportResponse(request), Points: award}, nil
}

func (s *peerSupportService) find(ctx context.Context, id uint) (models.PeerSupportRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PeerSupportRequest{}, ErrPeerSupportNotFound
		}
		return models.PeerSupportRequest{}, err
	}
	return request, nil
}

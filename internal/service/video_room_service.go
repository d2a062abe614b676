package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/models"
	"github.com/noah-isme/sprint-connect-api/internal/repository"
)

// VideoRoomService hands out meeting links for study circles. Only the link is
// managed here; the call itself runs on the external meeting service.
type VideoRoomService interface {
	Ensure(ctx context.Context, circleID, userID uint) (dto.VideoRoomResponse, error)
	Get(ctx context.Context, circleID, userID uint) (dto.VideoRoomResponse, error)
}

type videoRoomService struct {
	repo    repository.VideoRoomRepository
	circles CircleService
	baseURL string
	logger  zerolog.Logger
	now     func() time.Time
}

// NewVideoRoomService constructs the service. baseURL is the meeting host,
// for example https://meet.jit.si.
func NewVideoRoomService(repo repository.VideoRoomRepository, circles CircleService, baseURL string, logger zerolog.Logger) VideoRoomService {
	return &videoRoomService{
		repo:    repo,
		circles: circles,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With().Str("component", "video_room_service").Logger(),
		now:     time.Now,
	}
}

func (s *videoRoomService) Ensure(ctx context.Context, circleID, userID uint) (dto.VideoRoomResponse, error) {
	if err := s.circles.EnsureMember(ctx, circleID, userID); err != nil {
		return dto.VideoRoomResponse{}, err
	}

	room, err := s.repo.FindActiveByCircle(ctx, circleID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.VideoRoomResponse{}, err
		}
		room = models.VideoRoom{
			CircleID:   circleID,
			RoomName:   fmt.Sprintf("SprintConnect-Circle-%d", circleID),
			ExternalID: fmt.Sprintf("SprintConnect-%d-%s", circleID, uuid.NewString()[:8]),
			CreatedBy:  userID,
			IsActive:   true,
		}
		if err := s.repo.Create(ctx, &room); err != nil {
			return dto.VideoRoomResponse{}, err
		}
		s.logger.Info().Uint("circle_id", circleID).Str("room", room.RoomName).Msg("video room created")
	}

	if err := s.repo.Touch(ctx, &room, s.now().UTC()); err != nil {
		return dto.VideoRoomResponse{}, err
	}

	return s.response(room), nil
}

func (s *videoRoomService) Get(ctx context.Context, circleID, userID uint) (dto.VideoRoomResponse, error) {
	if err := s.circles.EnsureMember(ctx, circleID, userID); err != nil {
		return dto.VideoRoomResponse{}, err
	}

	room, err := s.repo.FindActiveByCircle(ctx, circleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.VideoRoomResponse{Exists: false}, nil
		}
		return dto.VideoRoomResponse{}, err
	}
	return s.response(room), nil
}

func (s *videoRoomService) response(room models.VideoRoom) dto.VideoRoomResponse {
	return dto.VideoRoomResponse{
		Exists:   true,
		Room:     dto.NewVideoRoomInfo(room),
		JoinURL:  s.baseURL + "/" + room.RoomName,
		RoomName: room.RoomName,
	}
}

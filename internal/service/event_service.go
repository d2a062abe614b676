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
)

var (
	// ErrEventNotFound is returned when an event does not exist.
	ErrEventNotFound = errors.New("event not found")
	// ErrEventFull is returned when the attendee limit has been reached.
	ErrEventFull = errors.New("event is full")
	// ErrAlreadyRSVPd is returned when the user already RSVP'd.
	ErrAlreadyRSVPd = errors.New("already RSVP'd to this event")
	// ErrNotRSVPd is returned when marking attendance without an RSVP.
	ErrNotRSVPd = errors.New("RSVP required before attending")
	// ErrAlreadyAttended is returned when attendance was recorded before.
	ErrAlreadyAttended = errors.New("attendance already recorded")
)

// EventService manages community events and RSVPs.
type EventService interface {
	List(ctx context.Context, query dto.EventListQuery) ([]dto.EventResponse, error)
	Create(ctx context.Context, userID uint, req dto.EventCreateRequest) (dto.EventResponse, error)
	RSVP(ctx context.Context, eventID, userID uint) (dto.RSVPResponse, error)
	Attend(ctx context.Context, eventID, userID uint) (dto.AttendResponse, error)
}

type eventService struct {
	repo      repository.EventRepository
	points    GamificationService
	cache     CacheInvalidator
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewEventService constructs the events service.
func NewEventService(repo repository.EventRepository, points GamificationService, cache CacheInvalidator, validate *validator.Validate, logger zerolog.Logger) EventService {
	return &eventService{
		repo:      repo,
		points:    points,
		cache:     cache,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "event_service").Logger(),
		now:       time.Now,
	}
}

func (s *eventService) List(ctx context.Context, query dto.EventListQuery) ([]dto.EventResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	filter := repository.EventFilter{Limit: query.Limit}
	if query.UpcomingOnly {
		now := s.now().UTC()
		filter.UpcomingFrom = &now
	}

	events, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewEventResponseSlice(events), nil
}

func (s *eventService) Create(ctx context.Context, userID uint, req dto.EventCreateRequest) (dto.EventResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.EventResponse{}, err
	}

	event := models.Event{
		CreatorID:    userID,
		Title:        sanitizeText(s.sanitizer, req.Title),
		Description:  sanitizeText(s.sanitizer, req.Description),
		Location:     sanitizeText(s.sanitizer, req.Location),
		EventDate:    req.EventDate.UTC(),
		MaxAttendees: req.MaxAttendees,
	}
	if event.Title == "" {
		return dto.EventResponse{}, errors.New("event title empty after sanitization")
	}

	if err := s.repo.Create(ctx, &event); err != nil {
		return dto.EventResponse{}, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info().Uint("event_id", event.ID).Uint("creator_id", userID).Msg("event created")
	return dto.NewEventResponse(event), nil
}

func (s *eventService) RSVP(ctx context.Context, eventID, userID uint) (dto.RSVPResponse, error) {
	event, err := s.repo.RSVP(ctx, eventID, userID, s.now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.RSVPResponse{}, ErrEventNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return dto.RSVPResponse{}, ErrAlreadyRSVPd
		case errors.Is(err, repository.ErrCapacityReached):
			return dto.RSVPResponse{}, ErrEventFull
		}
		return dto.RSVPResponse{}, err
	}

	award := awardBestEffort(ctx, s.points, s.logger, userID, gamification.ActionEventRSVP, fmt.Sprintf("RSVP'd to %s", event.Title))
	invalidate(ctx, s.cache, userID)

	return dto.RSVPResponse{
		Message:       "RSVP successful",
		AttendeeCount: event.AttendeeCount,
		Points:        award,
	}, nil
}

func (s *eventService) Attend(ctx context.Context, eventID, userID uint) (dto.AttendResponse, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttendResponse{}, ErrEventNotFound
		}
		return dto.AttendResponse{}, err
	}

	attendee, err := s.repo.FindAttendee(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AttendResponse{}, ErrNotRSVPd
		}
		return dto.AttendResponse{}, err
	}
	if attendee.Attended != nil {
		return dto.AttendResponse{}, ErrAlreadyAttended
	}

	now := s.now().UTC()
	if err := s.repo.MarkAttended(ctx, &attendee, now); err != nil {
		return dto.AttendResponse{}, fmt.Errorf("mark attended: %w", err)
	}

	award := awardBestEffort(ctx, s.points, s.logger, userID, gamification.ActionEventAttend, fmt.Sprintf("Attended %s", event.Title))
	return dto.AttendResponse{EventID: event.ID, AttendedAt: now, Points: award}, nil
}

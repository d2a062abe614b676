package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/gamification"
	"github.com/noah-isme/sprint-connect-api/internal/matching"
	"github.com/noah-isme/sprint-connect-api/internal/models"
	"github.com/noah-isme/sprint-connect-api/internal/observability"
	"github.com/noah-isme/sprint-connect-api/internal/repository"
)

// DefaultCircleCapacity is the size of newly created circles.
const DefaultCircleCapacity = 5

var (
	// ErrCircleNotFound indicates the study circle does not exist.
	ErrCircleNotFound = errors.New("study circle not found")
	// ErrNotCircleMember indicates the caller is not part of the circle.
	ErrNotCircleMember = errors.New("not a member of this study circle")
	// ErrAlreadyInCircle indicates the student already has an active circle for the course.
	ErrAlreadyInCircle = errors.New("already a member of an active circle for this course")
	// ErrProfileIncomplete indicates matching needs study preferences first.
	ErrProfileIncomplete = errors.New("profile with study preferences is required")
)

// CircleService matches students into study circles.
type CircleService interface {
	List(ctx context.Context, userID uint, courseID *uint, mineOnly bool) ([]dto.CircleResponse, error)
	Members(ctx context.Context, circleID uint) ([]dto.CircleMemberResponse, error)
	Match(ctx context.Context, userID uint, payload dto.CircleMatchRequest) (dto.CircleMatchResponse, error)
	Suggestions(ctx context.Context, userID uint, limit int) ([]dto.PeerSuggestion, error)
	EnsureMember(ctx context.Context, circleID, userID uint) error
}

type circleService struct {
	circles   repository.CircleRepository
	courses   repository.CourseRepository
	profiles  repository.ProfileRepository
	points    GamificationService
	cache     CacheInvalidator
	scorer    matching.Scorer
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewCircleService constructs the circle matching service.
func NewCircleService(circles repository.CircleRepository, courses repository.CourseRepository, profiles repository.ProfileRepository, points GamificationService, cache CacheInvalidator, scorer matching.Scorer, validate *validator.Validate, logger zerolog.Logger) CircleService {
	return &circleService{
		circles:   circles,
		courses:   courses,
		profiles:  profiles,
		points:    points,
		cache:     cache,
		scorer:    scorer,
		validator: validate,
		logger:    logger.With().Str("component", "circle_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/sprint-connect-api/internal/service/circle"),
	}
}

func (s *circleService) List(ctx context.Context, userID uint, courseID *uint, mineOnly bool) ([]dto.CircleResponse, error) {
	var (
		circles []models.StudyCircle
		err     error
	)
	if mineOnly {
		circles, err = s.circles.ListByMember(ctx, userID, "")
	} else {
		circles, err = s.circles.List(ctx, repository.CircleFilter{CourseID: courseID, Status: models.CircleStatusActive})
	}
	if err != nil {
		return nil, err
	}

	if mineOnly && courseID != nil {
		filtered := circles[:0]
		for _, circle := range circles {
			if circle.CourseID == *courseID {
				filtered = append(filtered, circle)
			}
		}
		circles = filtered
	}

	return dto.NewCircleResponseSlice(circles), nil
}

func (s *circleService) Members(ctx context.Context, circleID uint) ([]dto.CircleMemberResponse, error) {
	if _, err := s.circles.FindByID(ctx, circleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCircleNotFound
		}
		return nil, err
	}

	members, err := s.circles.Members(ctx, circleID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.UserID)
	}
	profiles, err := s.profiles.FindByUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CircleMemberResponse, 0, len(members))
	for _, member := range members {
		item := dto.CircleMemberResponse{
			UserID:             member.UserID,
			AvatarEmoji:        models.DefaultAvatarEmoji,
			Role:               member.Role,
			ParticipationScore: member.ParticipationScore,
			JoinedAt:           member.JoinedAt,
		}
		if profile, ok := profiles[member.UserID]; ok {
			item.FullName = profile.FullName
			item.AvatarEmoji = profile.AvatarEmoji
		}
		out = append(out, item)
	}
	return out, nil
}

// Match places the student in the most compatible circle of the course or
// opens a new one when no circle reaches the threshold.
func (s *circleService) Match(ctx context.Context, userID uint, payload dto.CircleMatchRequest) (dto.CircleMatchResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CircleMatchResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "circles.match", trace.WithAttributes(
		attribute.Int64("circle.user_id", int64(userID)),
		attribute.Int64("circle.course_id", int64(payload.CourseID)),
	))
	defer span.End()

	profile, err := s.profiles.FindByUser(spanCtx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CircleMatchResponse{}, ErrProfileIncomplete
		}
		return dto.CircleMatchResponse{}, err
	}
	if !profile.HasPreferences() {
		return dto.CircleMatchResponse{}, ErrProfileIncomplete
	}

	course, err := s.courses.FindByID(spanCtx, payload.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CircleMatchResponse{}, ErrCourseNotFound
		}
		return dto.CircleMatchResponse{}, err
	}

	circles, err := s.circles.ListActiveByCourse(spanCtx, course.ID)
	if err != nil {
		span.RecordError(err)
		return dto.CircleMatchResponse{}, err
	}
	for _, circle := range circles {
		for _, member := range circle.Members {
			if member.UserID == userID {
				return dto.CircleMatchResponse{}, ErrAlreadyInCircle
			}
		}
	}

	groups, err := s.groupProfiles(spanCtx, circles)
	if err != nil {
		span.RecordError(err)
		return dto.CircleMatchResponse{}, err
	}

	candidate := dto.MatchingPreferences(profile)
	response := dto.CircleMatchResponse{}

	match, found := s.scorer.FindBestGroup(candidate, groups)
	if found {
		if _, err := s.circles.AddMember(spanCtx, match.Group.ID, userID); err == nil {
			joined, err := s.circles.FindByID(spanCtx, match.Group.ID)
			if err != nil {
				return dto.CircleMatchResponse{}, err
			}
			response.Circle = dto.NewCircleResponse(joined)
			response.Score = match.Score
			observability.CircleMatches().WithLabelValues("joined").Inc()
		} else if !errors.Is(err, repository.ErrCapacityReached) {
			span.RecordError(err)
			return dto.CircleMatchResponse{}, err
		} else {
			s.logger.Info().Uint("circle_id", match.Group.ID).Msg("matched circle filled up, creating a new one")
			found = false
		}
	}

	if !found {
		circle := models.StudyCircle{
			CourseID:   course.ID,
			Name:       fmt.Sprintf("%s Study Circle %d", course.Code, len(circles)+1),
			SprintID:   fmt.Sprintf("Sprint%d", course.SprintNumber),
			Status:     models.CircleStatusActive,
			MaxMembers: DefaultCircleCapacity,
		}
		if err := s.circles.CreateWithLeader(spanCtx, &circle, userID); err != nil {
			span.RecordError(err)
			return dto.CircleMatchResponse{}, err
		}
		response.Circle = dto.NewCircleResponse(circle)
		response.Created = true
		observability.CircleMatches().WithLabelValues("created").Inc()
	}

	span.SetAttributes(
		attribute.Int64("circle.id", int64(response.Circle.ID)),
		attribute.Bool("circle.created", response.Created),
		attribute.Float64("circle.score", response.Score),
	)

	response.Points = awardBestEffort(spanCtx, s.points, s.logger, userID, gamification.ActionJoinCircle, "Joined "+response.Circle.Name)
	invalidate(spanCtx, s.cache, userID)

	s.logger.Info().
		Uint("user_id", userID).
		Uint("circle_id", response.Circle.ID).
		Bool("created", response.Created).
		Float64("score", response.Score).
		Msg("student matched to study circle")

	return response, nil
}

func (s *circleService) groupProfiles(ctx context.Context, circles []models.StudyCircle) ([]matching.StudyGroupProfile, error) {
	var ids []uint
	for _, circle := range circles {
		for _, member := range circle.Members {
			ids = append(ids, member.UserID)
		}
	}
	profiles, err := s.profiles.FindByUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	groups := make([]matching.StudyGroupProfile, 0, len(circles))
	for _, circle := range circles {
		group := matching.StudyGroupProfile{
			ID:          circle.ID,
			CourseID:    circle.CourseID,
			Capacity:    circle.MaxMembers,
			CurrentSize: len(circle.Members),
		}
		for _, member := range circle.Members {
			if profile, ok := profiles[member.UserID]; ok && profile.HasPreferences() {
				group.MemberPreferences = append(group.MemberPreferences, dto.MatchingPreferences(profile))
			}
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (s *circleService) Suggestions(ctx context.Context, userID uint, limit int) ([]dto.PeerSuggestion, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	profile, err := s.profiles.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileIncomplete
		}
		return nil, err
	}
	if !profile.HasPreferences() {
		return nil, ErrProfileIncomplete
	}

	others, err := s.profiles.ListOthers(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	peers := make([]matching.Peer, 0, len(others))
	byUser := make(map[uint]models.Profile, len(others))
	for _, other := range others {
		if !other.HasPreferences() {
			continue
		}
		byUser[other.UserID] = other
		peers = append(peers, matching.Peer{UserID: other.UserID, Preferences: dto.MatchingPreferences(other)})
	}

	candidate := dto.MatchingPreferences(profile)
	ranked := s.scorer.RankPeers(candidate, peers, limit)

	out := make([]dto.PeerSuggestion, 0, len(ranked))
	for _, peer := range ranked {
		other := byUser[peer.UserID]
		out = append(out, dto.PeerSuggestion{
			UserID:      peer.UserID,
			FullName:    other.FullName,
			AvatarEmoji: other.AvatarEmoji,
			Program:     other.Program,
			Score:       peer.Score,
			SharedGoals: sharedValues(candidate.Goals, peer.Preferences.Goals),
		})
	}
	return out, nil
}

func (s *circleService) EnsureMember(ctx context.Context, circleID, userID uint) error {
	if _, err := s.circles.FindByID(ctx, circleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCircleNotFound
		}
		return err
	}
	ok, err := s.circles.IsMember(ctx, circleID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotCircleMember
	}
	return nil
}

func sharedValues(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, value := range b {
		set[strings.ToLower(strings.TrimSpace(value))] = struct{}{}
	}
	out := []string{}
	for _, value := range a {
		if _, ok := set[strings.ToLower(strings.TrimSpace(value))]; ok {
			out = append(out, value)
		}
	}
	return out
}

package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/models"
	"github.com/noah-isme/sprint-connect-api/internal/repository"
)

// ErrProfileNotFound indicates the user has not created a profile yet.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileService manages student profiles and study preferences.
type ProfileService interface {
	Get(ctx context.Context, userID uint) (dto.ProfileResponse, error)
	GetPublic(ctx context.Context, userID uint) (dto.ProfileResponse, error)
	Upsert(ctx context.Context, userID uint, payload dto.ProfileUpsertRequest) (dto.ProfileResponse, error)
}

type profileService struct {
	repo      repository.ProfileRepository
	cache     CacheInvalidator
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(repo repository.ProfileRepository, cache CacheInvalidator, validate *validator.Validate, logger zerolog.Logger) ProfileService {
	return &profileService{
		repo:      repo,
		cache:     cache,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "profile_service").Logger(),
	}
}

func (s *profileService) Get(ctx context.Context, userID uint) (dto.ProfileResponse, error) {
	profile, err := s.find(ctx, userID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}
	return dto.NewProfileResponse(profile, true), nil
}

func (s *profileService) GetPublic(ctx context.Context, userID uint) (dto.ProfileResponse, error) {
	profile, err := s.find(ctx, userID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}
	return dto.NewProfileResponse(profile, false), nil
}

func (s *profileService) find(ctx context.Context, userID uint) (models.Profile, error) {
	profile, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Profile{}, ErrProfileNotFound
		}
		return models.Profile{}, err
	}
	return profile, nil
}

func (s *profileService) Upsert(ctx context.Context, userID uint, payload dto.ProfileUpsertRequest) (dto.ProfileResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProfileResponse{}, err
	}

	prefs := payload.StudyPreferences
	profile := models.Profile{
		UserID:         userID,
		FullName:       sanitizeText(s.sanitizer, payload.FullName),
		Email:          payload.Email,
		StudentNumber:  sanitizeText(s.sanitizer, payload.StudentNumber),
		Nationality:    sanitizeText(s.sanitizer, payload.Nationality),
		NativeLanguage: sanitizeText(s.sanitizer, payload.NativeLanguage),
		Program:        sanitizeText(s.sanitizer, payload.Program),
		Year:           payload.Year,
		Bio:            sanitizeText(s.sanitizer, payload.Bio),
		AvatarEmoji:    payload.AvatarEmoji,
		Interests:      datatypes.JSONSlice[string](cleanList(payload.Interests)),
		Preferences: datatypes.NewJSONType(models.StudyPreferences{
			LearningStyle:  prefs.LearningStyle,
			PreferredTimes: cleanList(prefs.PreferredTimes),
			GroupSize:      prefs.GroupSize,
			Goals:          cleanList(prefs.Goals),
		}),
	}
	if profile.AvatarEmoji == "" {
		profile.AvatarEmoji = models.DefaultAvatarEmoji
	}

	if err := s.repo.Upsert(ctx, &profile); err != nil {
		return dto.ProfileResponse{}, err
	}

	stored, err := s.find(ctx, userID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	invalidate(ctx, s.cache, userID)
	s.logger.Info().Uint("user_id", userID).Str("email", maskEmailAddress(stored.Email)).Msg("profile saved")

	return dto.NewProfileResponse(stored, true), nil
}

package dto

import (
	"time"

	"github.com/noah-isme/sprint-connect-api/internal/matching"
	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// StudyPreferencesPayload is the editable study preference block.
type StudyPreferencesPayload struct {
	LearningStyle  string   `json:"learning_style" validate:"required,oneof=visual auditory kinesthetic reading"`
	PreferredTimes []string `json:"preferred_times" validate:"omitempty,max=4,dive,oneof=morning afternoon evening night"`
	GroupSize      string   `json:"group_size" validate:"required,oneof=small medium large"`
	Goals          []string `json:"goals" validate:"omitempty,max=10,dive,min=1,max=64"`
}

// ProfileUpsertRequest creates or replaces the caller's profile.
type ProfileUpsertRequest struct {
	FullName         string                  `json:"full_name" validate:"required,min=2,max=255"`
	Email            string                  `json:"email" validate:"omitempty,email,max=255"`
	StudentNumber    string                  `json:"student_number" validate:"omitempty,max=64"`
	Nationality      string                  `json:"nationality" validate:"omitempty,max=128"`
	NativeLanguage   string                  `json:"native_language" validate:"omitempty,max=128"`
	Program          string                  `json:"program" validate:"omitempty,max=255"`
	Year             int                     `json:"year" validate:"omitempty,min=1,max=10"`
	Bio              string                  `json:"bio" validate:"omitempty,max=2000"`
	AvatarEmoji      string                  `json:"avatar_emoji" validate:"omitempty,max=16"`
	Interests        []string                `json:"interests" validate:"omitempty,max=20,dive,min=1,max=64"`
	StudyPreferences StudyPreferencesPayload `json:"study_preferences"`
}

// ProfileResponse is the public view of a profile.
type ProfileResponse struct {
	ID               uint                    `json:"id"`
	UserID           uint                    `json:"user_id"`
	FullName         string                  `json:"full_name"`
	Email            string                  `json:"email,omitempty"`
	StudentNumber    string                  `json:"student_number,omitempty"`
	Nationality      string                  `json:"nationality,omitempty"`
	NativeLanguage   string                  `json:"native_language,omitempty"`
	Program          string                  `json:"program,omitempty"`
	Year             int                     `json:"year,omitempty"`
	Bio              string                  `json:"bio,omitempty"`
	AvatarEmoji      string                  `json:"avatar_emoji"`
	Interests        []string                `json:"interests"`
	StudyPreferences StudyPreferencesPayload `json:"study_preferences"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// NewProfileResponse converts a model into a DTO. Contact details are only
// included when includePrivate is set.
func NewProfileResponse(profile models.Profile, includePrivate bool) ProfileResponse {
	prefs := profile.Preferences.Data()
	interests := []string(profile.Interests)
	if interests == nil {
		interests = []string{}
	}
	resp := ProfileResponse{
		ID:             profile.ID,
		UserID:         profile.UserID,
		FullName:       profile.FullName,
		Nationality:    profile.Nationality,
		NativeLanguage: profile.NativeLanguage,
		Program:        profile.Program,
		Year:           profile.Year,
		Bio:            profile.Bio,
		AvatarEmoji:    profile.AvatarEmoji,
		Interests:      interests,
		StudyPreferences: StudyPreferencesPayload{
			LearningStyle:  prefs.LearningStyle,
			PreferredTimes: nonNil(prefs.PreferredTimes),
			GroupSize:      prefs.GroupSize,
			Goals:          nonNil(prefs.Goals),
		},
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	}
	if includePrivate {
		resp.Email = profile.Email
		resp.StudentNumber = profile.StudentNumber
	}
	return resp
}

// MatchingPreferences maps stored preferences onto the scorer's input.
func MatchingPreferences(profile models.Profile) matching.StudentPreferences {
	prefs := profile.Preferences.Data()
	times := make([]matching.TimeSlot, 0, len(prefs.PreferredTimes))
	for _, slot := range prefs.PreferredTimes {
		times = append(times, matching.TimeSlot(slot))
	}
	return matching.StudentPreferences{
		LearningStyle:  matching.LearningStyle(prefs.LearningStyle),
		PreferredTimes: times,
		GroupSize:      matching.GroupSize(prefs.GroupSize),
		Goals:          prefs.Goals,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

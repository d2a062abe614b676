package models

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultAvatarEmoji is shown for profiles without a chosen avatar.
const DefaultAvatarEmoji = "🎓"

// StudyPreferences captures how a student likes to study. It is stored as a
// JSON column on the profile.
type StudyPreferences struct {
	LearningStyle  string   `json:"learning_style"`
	PreferredTimes []string `json:"preferred_times"`
	GroupSize      string   `json:"group_size"`
	Goals          []string `json:"goals"`
}

// Profile is the student-facing profile linked to an authenticated user id.
type Profile struct {
	ID             uint                                 `gorm:"primaryKey" json:"id"`
	UserID         uint                                 `gorm:"uniqueIndex;not null" json:"user_id"`
	FullName       string                               `gorm:"size:255;not null" json:"full_name"`
	Email          string                               `gorm:"size:255;index" json:"email"`
	StudentNumber  string                               `gorm:"size:64" json:"student_number"`
	Nationality    string                               `gorm:"size:128" json:"nationality"`
	NativeLanguage string                               `gorm:"size:128" json:"native_language"`
	Program        string                               `gorm:"size:255" json:"program"`
	Year           int                                  `json:"year"`
	Bio            string                               `gorm:"type:text" json:"bio"`
	AvatarEmoji    string                               `gorm:"size:16;default:🎓" json:"avatar_emoji"`
	Interests      datatypes.JSONSlice[string]          `json:"interests"`
	Preferences    datatypes.JSONType[StudyPreferences] `json:"study_preferences"`
	CreatedAt      time.Time                            `json:"created_at"`
	UpdatedAt      time.Time                            `json:"updated_at"`
}

// HasPreferences reports whether the student filled in enough preferences to
// be matched.
func (p Profile) HasPreferences() bool {
	prefs := p.Preferences.Data()
	return prefs.LearningStyle != "" && prefs.GroupSize != ""
}

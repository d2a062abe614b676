package models

import "time"

// Study circle statuses.
const (
	CircleStatusActive    = "active"
	CircleStatusCompleted = "completed"
)

// Circle member roles.
const (
	CircleRoleLeader = "leader"
	CircleRoleMember = "member"
)

// Resource kinds.
const (
	ResourceKindLink      = "link"
	ResourceKindNote      = "note"
	ResourceKindFlashcard = "flashcard"
	ResourceKindGuide     = "guide"
	ResourceKindFile      = "file"
)

// StudyCircle is a small peer group working through a course together.
type StudyCircle struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CourseID   uint           `gorm:"index;not null" json:"course_id"`
	Name       string         `gorm:"size:255;not null" json:"name"`
	SprintID   string         `gorm:"size:64" json:"sprint_id"`
	Status     string         `gorm:"size:32;not null;default:active;index" json:"status"`
	MaxMembers int            `gorm:"not null;default:5" json:"max_members"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	Members    []CircleMember `gorm:"foreignKey:CircleID" json:"members,omitempty"`
}

// CircleMember links a user to a study circle.
type CircleMember struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	CircleID           uint      `gorm:"not null;uniqueIndex:idx_circle_member" json:"circle_id"`
	UserID             uint      `gorm:"not null;uniqueIndex:idx_circle_member;index" json:"user_id"`
	Role               string    `gorm:"size:32;not null;default:member" json:"role"`
	ParticipationScore float64   `gorm:"not null;default:0" json:"participation_score"`
	JoinedAt           time.Time `json:"joined_at"`
}

// CircleResource is a link or uploaded file shared inside a circle.
type CircleResource struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CircleID    uint      `gorm:"index;not null" json:"circle_id"`
	UploadedBy  uint      `gorm:"index;not null" json:"uploaded_by"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Kind        string    `gorm:"size:32;not null" json:"kind"`
	URL         string    `gorm:"size:1024;not null" json:"url"`
	MimeType    string    `gorm:"size:128" json:"mime_type,omitempty"`
	SizeBytes   int64     `json:"size_bytes,omitempty"`
	Checksum    string    `gorm:"size:128" json:"checksum,omitempty"`
	Upvotes     int       `gorm:"not null;default:0" json:"upvotes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ResourceUpvote records that a user upvoted a resource once.
type ResourceUpvote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ResourceID uint      `gorm:"not null;uniqueIndex:idx_resource_upvote" json:"resource_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_resource_upvote" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// VideoRoom is the external meeting room attached to a circle.
type VideoRoom struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	CircleID         uint       `gorm:"not null;index" json:"circle_id"`
	RoomName         string     `gorm:"size:255;not null;uniqueIndex" json:"room_name"`
	ExternalID       string     `gorm:"size:255;uniqueIndex" json:"external_id"`
	CreatedBy        uint       `gorm:"not null" json:"created_by"`
	IsActive         bool       `gorm:"not null;default:true" json:"is_active"`
	ParticipantCount int        `gorm:"not null;default:0" json:"participant_count"`
	LastUsedAt       *time.Time `json:"last_used_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Live room message types.
const (
	MessageTypeText              = "text"
	MessageTypePomodoroStarted   = "pomodoro_started"
	MessageTypePomodoroCompleted = "pomodoro_completed"
)

// CircleMessage is a message or timer event posted in a circle's live room.
type CircleMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CircleID  uint      `gorm:"index;not null" json:"circle_id"`
	SenderID  uint      `gorm:"index" json:"sender_id"`
	Type      string    `gorm:"size:32;not null;default:text" json:"type"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

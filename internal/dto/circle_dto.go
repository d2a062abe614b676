package dto

import (
	"time"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// CourseCreateRequest registers a course.
type CourseCreateRequest struct {
	Code         string     `json:"code" validate:"required,min=2,max=32"`
	Title        string     `json:"title" validate:"required,min=2,max=255"`
	SprintNumber int        `json:"sprint_number" validate:"min=0,max=52"`
	AcademicYear string     `json:"academic_year" validate:"omitempty,max=32"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

// CourseResponse is the serialized course.
type CourseResponse struct {
	ID           uint       `json:"id"`
	Code         string     `json:"code"`
	Title        string     `json:"title"`
	SprintNumber int        `json:"sprint_number"`
	AcademicYear string     `json:"academic_year"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

// NewCourseResponse converts a model into a DTO.
func NewCourseResponse(course models.Course) CourseResponse {
	return CourseResponse{
		ID:           course.ID,
		Code:         course.Code,
		Title:        course.Title,
		SprintNumber: course.SprintNumber,
		AcademicYear: course.AcademicYear,
		StartDate:    course.StartDate,
		EndDate:      course.EndDate,
	}
}

// CircleResponse is the serialized study circle.
type CircleResponse struct {
	ID          uint      `json:"id"`
	CourseID    uint      `json:"course_id"`
	Name        string    `json:"name"`
	SprintID    string    `json:"sprint_id"`
	Status      string    `json:"status"`
	MaxMembers  int       `json:"max_members"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCircleResponse converts a model into a DTO. Members must be preloaded
// for the member count to be accurate.
func NewCircleResponse(circle models.StudyCircle) CircleResponse {
	return CircleResponse{
		ID:          circle.ID,
		CourseID:    circle.CourseID,
		Name:        circle.Name,
		SprintID:    circle.SprintID,
		Status:      circle.Status,
		MaxMembers:  circle.MaxMembers,
		MemberCount: len(circle.Members),
		CreatedAt:   circle.CreatedAt,
	}
}

// NewCircleResponseSlice converts circles into DTOs.
func NewCircleResponseSlice(circles []models.StudyCircle) []CircleResponse {
	out := make([]CircleResponse, 0, len(circles))
	for _, circle := range circles {
		out = append(out, NewCircleResponse(circle))
	}
	return out
}

// CircleMemberResponse describes one member of a circle.
type CircleMemberResponse struct {
	UserID             uint      `json:"user_id"`
	FullName           string    `json:"full_name"`
	AvatarEmoji        string    `json:"avatar_emoji"`
	Role               string    `json:"role"`
	ParticipationScore float64   `json:"participation_score"`
	JoinedAt           time.Time `json:"joined_at"`
}

// CircleMatchRequest asks to be placed in a circle for a course.
type CircleMatchRequest struct {
	CourseID uint `json:"course_id" validate:"required,gt=0"`
}

// CircleMatchResponse reports where the student was placed.
type CircleMatchResponse struct {
	Circle  CircleResponse `json:"circle"`
	Score   float64        `json:"score"`
	Created bool           `json:"created"`
	Points  *PointsAward   `json:"points,omitempty"`
}

// PeerSuggestion is a compatible student for the caller.
type PeerSuggestion struct {
	UserID      uint     `json:"user_id"`
	FullName    string   `json:"full_name"`
	AvatarEmoji string   `json:"avatar_emoji"`
	Program     string   `json:"program,omitempty"`
	Score       float64  `json:"score"`
	SharedGoals []string `json:"shared_goals"`
}

// ResourceCreateRequest describes a shared link or the metadata of an upload.
type ResourceCreateRequest struct {
	Title       string `json:"title" form:"title" validate:"required,min=2,max=255"`
	Description string `json:"description" form:"description" validate:"omitempty,max=2000"`
	Kind        string `json:"kind" form:"kind" validate:"required,oneof=link note flashcard guide file"`
	URL         string `json:"url" form:"url" validate:"omitempty,url,max=1024"`
}

// ResourceResponse is the serialized circle resource.
type ResourceResponse struct {
	ID          uint      `json:"id"`
	CircleID    uint      `json:"circle_id"`
	UploadedBy  uint      `json:"uploaded_by"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Kind        string    `json:"kind"`
	URL         string    `json:"url"`
	MimeType    string    `json:"mime_type,omitempty"`
	SizeBytes   int64     `json:"size_bytes,omitempty"`
	Checksum    string    `json:"checksum,omitempty"`
	Upvotes     int       `json:"upvotes"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewResourceResponse converts a model into a DTO.
func NewResourceResponse(resource models.CircleResource) ResourceResponse {
	return ResourceResponse{
		ID:          resource.ID,
		CircleID:    resource.CircleID,
		UploadedBy:  resource.UploadedBy,
		Title:       resource.Title,
		Description: resource.Description,
		Kind:        resource.Kind,
		URL:         resource.URL,
		MimeType:    resource.MimeType,
		SizeBytes:   resource.SizeBytes,
		Checksum:    resource.Checksum,
		Upvotes:     resource.Upvotes,
		CreatedAt:   resource.CreatedAt,
	}
}

// VideoRoomResponse carries the join link for a circle's meeting room.
type VideoRoomResponse struct {
	Exists   bool           `json:"exists"`
	Room     *VideoRoomInfo `json:"room,omitempty"`
	JoinURL  string         `json:"join_url,omitempty"`
	RoomName string         `json:"room_name,omitempty"`
}

// VideoRoomInfo is the persisted room state.
type VideoRoomInfo struct {
	ID         uint       `json:"id"`
	CircleID   uint       `json:"circle_id"`
	RoomName   string     `json:"room_name"`
	ExternalID string     `json:"external_id"`
	CreatedBy  uint       `json:"created_by"`
	IsActive   bool       `json:"is_active"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewVideoRoomInfo converts a model into a DTO.
func NewVideoRoomInfo(room models.VideoRoom) *VideoRoomInfo {
	return &VideoRoomInfo{
		ID:         room.ID,
		CircleID:   room.CircleID,
		RoomName:   room.RoomName,
		ExternalID: room.ExternalID,
		CreatedBy:  room.CreatedBy,
		IsActive:   room.IsActive,
		LastUsedAt: room.LastUsedAt,
		CreatedAt:  room.CreatedAt,
	}
}

// LiveSendRequest is a message sent over the circle websocket.
type LiveSendRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
	Type    string `json:"type" validate:"omitempty,oneof=text"`
}

// LiveHistoryQuery pages through a circle's live room history.
type LiveHistoryQuery struct {
	Before *time.Time
	Limit  int `validate:"omitempty,min=1,max=100"`
}

// CircleMessageResponse is a message or timer event in a circle live room.
type CircleMessageResponse struct {
	ID        uint      `json:"id"`
	CircleID  uint      `json:"circle_id"`
	SenderID  uint      `json:"sender_id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCircleMessageResponse converts a model into a DTO.
func NewCircleMessageResponse(message models.CircleMessage) CircleMessageResponse {
	return CircleMessageResponse{
		ID:        message.ID,
		CircleID:  message.CircleID,
		SenderID:  message.SenderID,
		Type:      message.Type,
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}
}

// NewCircleMessageResponseSlice converts messages into DTOs.
func NewCircleMessageResponseSlice(messages []models.CircleMessage) []CircleMessageResponse {
	out := make([]CircleMessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, NewCircleMessageResponse(message))
	}
	return out
}

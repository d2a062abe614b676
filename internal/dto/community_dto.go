package dto

import (
	"time"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// PostListQuery filters the community feed.
type PostListQuery struct {
	Category string `validate:"omitempty,oneof=event question tip celebration"`
	Page     int    `validate:"omitempty,min=1"`
	Limit    int    `validate:"omitempty,min=1,max=100"`
}

// PostCreateRequest publishes a community post.
type PostCreateRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=255"`
	Content  string `json:"content" validate:"required,min=1,max=10000"`
	Category string `json:"category" validate:"required,oneof=event question tip celebration"`
}

// PostResponse is the serialized community post.
type PostResponse struct {
	ID            uint      `json:"id"`
	AuthorID      uint      `json:"author_id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Category      string    `json:"category"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewPostResponse converts a model into a DTO.
func NewPostResponse(post models.CommunityPost) PostResponse {
	return PostResponse{
		ID:            post.ID,
		AuthorID:      post.AuthorID,
		Title:         post.Title,
		Content:       post.Content,
		Category:      post.Category,
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
		CreatedAt:     post.CreatedAt,
	}
}

// NewPostResponseSlice converts posts into DTOs.
func NewPostResponseSlice(posts []models.CommunityPost) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, NewPostResponse(post))
	}
	return out
}

// PostCreateResponse wraps a new post with the points it earned.
type PostCreateResponse struct {
	Post   PostResponse `json:"post"`
	Points *PointsAward `json:"points,omitempty"`
}

// LikeResponse reports the updated like count.
type LikeResponse struct {
	PostID     uint `json:"post_id"`
	LikesCount int  `json:"likes_count"`
}

// CommentCreateRequest adds a comment to a post.
type CommentCreateRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

// CommentResponse is the serialized comment.
type CommentResponse struct {
	ID        uint      `json:"id"`
	PostID    uint      `json:"post_id"`
	AuthorID  uint      `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCommentResponse converts a model into a DTO.
func NewCommentResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}

// NewCommentResponseSlice converts comments into DTOs.
func NewCommentResponseSlice(comments []models.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		out = append(out, NewCommentResponse(comment))
	}
	return out
}

// CommentCreateResponse wraps a new comment with the points it earned.
type CommentCreateResponse struct {
	Comment CommentResponse `json:"comment"`
	Points  *PointsAward    `json:"points,omitempty"`
}

// EventListQuery filters the event list.
type EventListQuery struct {
	UpcomingOnly bool
	Limit        int `validate:"omitempty,min=1,max=100"`
}

// EventCreateRequest schedules a community event.
type EventCreateRequest struct {
	Title        string    `json:"title" validate:"required,min=3,max=255"`
	Description  string    `json:"description" validate:"omitempty,max=4000"`
	Location     string    `json:"location" validate:"omitempty,max=255"`
	EventDate    time.Time `json:"event_date" validate:"required"`
	MaxAttendees *int      `json:"max_attendees" validate:"omitempty,gt=0"`
}

// EventResponse is the serialized event.
type EventResponse struct {
	ID            uint      `json:"id"`
	CreatorID     uint      `json:"creator_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	EventDate     time.Time `json:"event_date"`
	AttendeeCount int       `json:"attendee_count"`
	MaxAttendees  *int      `json:"max_attendees,omitempty"`
	IsFull        bool      `json:"is_full"`
}

// NewEventResponse converts a model into a DTO.
func NewEventResponse(event models.Event) EventResponse {
	return EventResponse{
		ID:            event.ID,
		CreatorID:     event.CreatorID,
		Title:         event.Title,
		Description:   event.Description,
		Location:      event.Location,
		EventDate:     event.EventDate,
		AttendeeCount: event.AttendeeCount,
		MaxAttendees:  event.MaxAttendees,
		IsFull:        event.IsFull(),
	}
}

// NewEventResponseSlice converts events into DTOs.
func NewEventResponseSlice(events []models.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, NewEventResponse(event))
	}
	return out
}

// AttendResponse confirms attendance at an event.
type AttendResponse struct {
	EventID    uint         `json:"event_id"`
	AttendedAt time.Time    `json:"attended_at"`
	Points     *PointsAward `json:"points,omitempty"`
}

// RSVPResponse confirms an RSVP.
type RSVPResponse struct {
	Message       string       `json:"message"`
	AttendeeCount int          `json:"attendee_count"`
	Points        *PointsAward `json:"points,omitempty"`
}

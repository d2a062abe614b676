package dto

import (
	"time"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// NotificationCreateRequest describes the payload to create a notification.
type NotificationCreateRequest struct {
	UserID    uint                   `json:"user_id" validate:"required,gt=0"`
	Title     string                 `json:"title" validate:"required,max=255"`
	Message   string                 `json:"message" validate:"required,max=2000"`
	Type      string                 `json:"type" validate:"required,oneof=alert achievement event message support"`
	ActionURL string                 `json:"action_url" validate:"omitempty,max=512"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// NotificationListQuery filters a user's notifications.
type NotificationListQuery struct {
	Limit      int `validate:"omitempty,min=1,max=100"`
	UnreadOnly bool
}

// NotificationResponse is the serialized notification.
type NotificationResponse struct {
	ID        uint                   `json:"id"`
	UserID    uint                   `json:"user_id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Type      string                 `json:"type"`
	ActionURL string                 `json:"action_url,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewNotificationResponse converts a model into a DTO.
func NewNotificationResponse(notification models.Notification) NotificationResponse {
	var metadata map[string]interface{}
	if len(notification.Metadata) > 0 {
		metadata = map[string]interface{}(notification.Metadata)
	}
	return NotificationResponse{
		ID:        notification.ID,
		UserID:    notification.UserID,
		Title:     notification.Title,
		Message:   notification.Message,
		Type:      notification.Type,
		ActionURL: notification.ActionURL,
		Metadata:  metadata,
		Read:      notification.Read,
		CreatedAt: notification.CreatedAt,
	}
}

// NewNotificationResponseSlice converts notifications into DTOs.
func NewNotificationResponseSlice(notifications []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		out = append(out, NewNotificationResponse(notification))
	}
	return out
}

// NotificationListMeta accompanies notification lists.
type NotificationListMeta struct {
	Unread int64 `json:"unread"`
}

package dto

import (
	"time"

	"github.com/noah-isme/sprint-connect-api/internal/models"
)

// PeerSupportCreateRequest asks for a peer supporter.
type PeerSupportCreateRequest struct {
	Topic   string `json:"topic" validate:"omitempty,oneof=academic wellbeing social career other"`
	Message string `json:"message" validate:"required,min=5,max=2000"`
}

// PeerSupportListQuery selects which requests to list. Scope "open" lists
// pending requests from other students; "mine" lists the caller's own.
type PeerSupportListQuery struct {
	Scope  string `validate:"omitempty,oneof=mine open"`
	Status string `validate:"omitempty,oneof=pending active completed"`
	Limit  int    `validate:"omitempty,min=1,max=100"`
}

// PeerSupportResponse is the serialized request.
type PeerSupportResponse struct {
	ID          uint       `json:"id"`
	SeekerID    uint       `json:"seeker_id"`
	SupporterID *uint      `json:"supporter_id,omitempty"`
	Status      string     `json:"status"`
	Topic       string     `json:"topic,omitempty"`
	Message     string     `json:"message"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewPeerSupportResponse converts a model into a DTO.
func NewPeerSupportResponse(request models.PeerSupportRequest) PeerSupportResponse {
	return PeerSupportResponse{
		ID:          request.ID,
		SeekerID:    request.SeekerID,
		SupporterID: request.SupporterID,
		Status:      request.Status,
		Topic:       request.Topic,
		Message:     request.Message,
		AcceptedAt:  request.AcceptedAt,
		CompletedAt: request.CompletedAt,
		CreatedAt:   request.CreatedAt,
	}
}

// NewPeerSupportResponseSlice converts requests into DTOs.
func NewPeerSupportResponseSlice(requests []models.PeerSupportRequest) []PeerSupportResponse {
	out := make([]PeerSupportResponse, 0, len(requests))
	for _, request := range requests {
		out = append(out, NewPeerSupportResponse(request))
	}
	return out
}

// PeerSupportCompleteResponse wraps a completed request with the points the
// supporter earned.
type PeerSupportCompleteResponse struct {
	Request PeerSupportResponse `json:"request"`
	Points  *PointsAward        `json:"points,omitempty"`
}

package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// SendMessageRequest posts a chat message to a project
type SendMessageRequest struct {
	Message string `json:"message" binding:"required" example:"Bumped the snare 2 dB"`
}

// MessageResponse is one chat message
type MessageResponse struct {
	ID          uuid.UUID `json:"messageId"`
	ProjectID   uuid.UUID `json:"projectId"`
	UserEmail   string    `json:"userEmail"`
	UserName    string    `json:"userName"`
	Message     string    `json:"message"`
	MessageType string    `json:"messageType" example:"text"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToMessageResponse converts a domain chat message
func ToMessageResponse(m *domain.ProjectChat) *MessageResponse {
	return &MessageResponse{
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		UserEmail:   m.UserEmail,
		UserName:    m.UserName,
		Message:     m.Message,
		MessageType: m.MessageType,
		CreatedAt:   m.CreatedDate,
	}
}

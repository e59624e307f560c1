package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/repository"
	"github.com/dadolfin1208/signalforge/internal/response"
)

const (
	chatHistoryLimit = 50
	maxMessageLength = 2000
)

// ChatService reads and posts project chat messages
type ChatService interface {
	ListMessages(ctx context.Context, projectID uuid.UUID) ([]*dto.MessageResponse, error)
	SendMessage(ctx context.Context, user domain.User, projectID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
}

type chatServiceImpl struct {
	chatRepo    repository.ChatRepository
	projectRepo repository.ProjectRepository
}

// NewChatService creates a new instance of ChatService
func NewChatService(chatRepo repository.ChatRepository, projectRepo repository.ProjectRepository) ChatService {
	return &chatServiceImpl{chatRepo: chatRepo, projectRepo: projectRepo}
}

// ListMessages returns the latest messages, oldest first
func (s *chatServiceImpl) ListMessages(ctx context.Context, projectID uuid.UUID) ([]*dto.MessageResponse, error) {
	messages, err := s.chatRepo.ListRecent(ctx, projectID, chatHistoryLimit)
	if err != nil {
		return nil, storeError(err, "Messages")
	}

	responses := make([]*dto.MessageResponse, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		responses = append(responses, dto.ToMessageResponse(messages[i]))
	}
	return responses, nil
}

func (s *chatServiceImpl) SendMessage(ctx context.Context, user domain.User, projectID uuid.UUID, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return nil, response.NewValidationError("Message cannot be empty", "")
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return nil, response.NewValidationError("Message is too long", "at most 2000 characters")
	}

	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		return nil, storeError(err, "Project")
	}

	message := &domain.ProjectChat{
		BaseModel:   domain.BaseModel{CreatedBy: user.Email},
		ProjectID:   projectID,
		UserEmail:   user.Email,
		UserName:    user.DisplayName(),
		Message:     text,
		MessageType: domain.MessageTypeText,
	}
	if err := s.chatRepo.Create(ctx, message); err != nil {
		return nil, storeError(err, "Message")
	}
	return dto.ToMessageResponse(message), nil
}

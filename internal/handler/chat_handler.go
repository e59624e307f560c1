package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/response"
	"github.com/dadolfin1208/signalforge/internal/service"
)

type ChatHandler struct {
	chatService service.ChatService
}

func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ListMessages godoc
// @Summary      List project chat messages
// @Description  Returns the 50 most recent messages, oldest first
// @Tags         chat
// @Produce      json
// @Param        projectId path string true "Project ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=[]dto.MessageResponse}
// @Security     BearerAuth
// @Router       /projects/{projectId}/chat [get]
func (h *ChatHandler) ListMessages(c *gin.Context) {
	projectID, ok := uuidParam(c, "projectId", "project")
	if !ok {
		return
	}
	messages, err := h.chatService.ListMessages(c.Request.Context(), projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, messages)
}

// SendMessage godoc
// @Summary      Post a chat message
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        projectId path string true "Project ID (UUID)"
// @Param        request body dto.SendMessageRequest true "Message"
// @Success      201 {object} response.SuccessResponse{data=dto.MessageResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{projectId}/chat [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "projectId", "project")
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	message, err := h.chatService.SendMessage(c.Request.Context(), user, projectID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, message)
}

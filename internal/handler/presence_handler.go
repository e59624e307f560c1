package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/metrics"
	"github.com/dadolfin1208/signalforge/internal/presence"
	"github.com/dadolfin1208/signalforge/internal/response"
	"github.com/dadolfin1208/signalforge/internal/service"
)

// PresenceStreamConfig holds the per-connection loop timings.
type PresenceStreamConfig struct {
	Heartbeat presence.HeartbeatConfig
	Poll      presence.PollerConfig
	// Events, when set, triggers an extra push whenever a project's
	// presence changes between polls.
	Events PresenceSubscriber
}

type PresenceHandler struct {
	presence       presence.Service
	projectService service.ProjectService
	cfg            PresenceStreamConfig
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

func NewPresenceHandler(
	presenceService presence.Service,
	projectService service.ProjectService,
	cfg PresenceStreamConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *PresenceHandler {
	return &PresenceHandler{
		presence:       presenceService,
		projectService: projectService,
		cfg:            cfg,
		metrics:        m,
		logger:         logger,
	}
}

// ReportPresence godoc
// @Summary      Send a presence heartbeat
// @Description  Marks the caller as active in an existing project. Accepted even when the heartbeat could not be stored; reported tells which.
// @Tags         presence
// @Accept       json
// @Produce      json
// @Param        projectId path string true "Project ID (UUID)"
// @Param        request body dto.ReportPresenceRequest false "Current view"
// @Success      202 {object} response.SuccessResponse{data=dto.ReportPresenceResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{projectId}/presence [post]
func (h *PresenceHandler) ReportPresence(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "projectId", "project")
	if !ok {
		return
	}
	if _, err := h.projectService.GetProject(c.Request.Context(), projectID); err != nil {
		handleServiceError(c, err)
		return
	}

	var req dto.ReportPresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.SendErrorWithDetails(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body", err.Error())
		return
	}

	reported := true
	if err := h.presence.ReportPresence(c.Request.Context(), projectID, user, req.View); err != nil {
		reported = false
		h.logger.Warn("presence report not stored",
			zap.String("project_id", projectID.String()),
			zap.String("user_email", user.Email),
			zap.Error(err),
		)
	}
	response.SendSuccess(c, http.StatusAccepted, dto.ReportPresenceResponse{Reported: reported})
}

// ListPresence godoc
// @Summary      List who is in a project
// @Description  Newest first. Status is active, idle or away by the age of the last heartbeat.
// @Tags         presence
// @Produce      json
// @Param        projectId path string true "Project ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.PresenceResponse}
// @Security     BearerAuth
// @Router       /projects/{projectId}/presence [get]
func (h *PresenceHandler) ListPresence(c *gin.Context) {
	projectID, ok := uuidParam(c, "projectId", "project")
	if !ok {
		return
	}
	snap, err := h.presence.ListPresence(c.Request.Context(), projectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, dto.ToPresenceResponse(snap))
}

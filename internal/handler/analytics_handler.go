package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/response"
	"github.com/dadolfin1208/signalforge/internal/service"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// RecordEvent godoc
// @Summary      Record a usage event
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        request body dto.RecordUsageRequest true "Event"
// @Success      201 {object} response.SuccessResponse{data=map[string]string}
// @Failure      400 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /analytics/events [post]
func (h *AnalyticsHandler) RecordEvent(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.RecordUsageRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.analyticsService.RecordEvent(c.Request.Context(), user, &req); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, map[string]string{"message": "Event recorded"})
}

// GetSummary godoc
// @Summary      Summarize my usage
// @Tags         analytics
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=dto.UsageSummaryResponse}
// @Security     BearerAuth
// @Router       /analytics/summary [get]
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	summary, err := h.analyticsService.Summary(c.Request.Context(), user)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, summary)
}

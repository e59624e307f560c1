package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/response"
	"github.com/dadolfin1208/signalforge/internal/service"
)

const defaultAnalysesLimit = 20

type AnalysisHandler struct {
	analysisService service.AnalysisService
}

func NewAnalysisHandler(analysisService service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// SubmitMixing godoc
// @Summary      Run a mixing analysis
// @Description  Invokes the analyzeMixing job and returns its result
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        projectId path string true "Project ID (UUID)"
// @Param        request body dto.MixingAnalysisRequest true "Track to analyze"
// @Success      200 {object} response.SuccessResponse{data=dto.JobResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse "Project not found"
// @Failure      502 {object} response.ErrorResponse "Analysis backend failed"
// @Security     BearerAuth
// @Router       /projects/{projectId}/analysis/mixing [post]
func (h *AnalysisHandler) SubmitMixing(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "projectId", "project")
	if !ok {
		return
	}
	var req dto.MixingAnalysisRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.analysisService.SubmitMixing(c.Request.Context(), user, projectID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}

// SubmitMastering godoc
// @Summary      Run a mastering analysis
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        projectId path string true "Project ID (UUID)"
// @Param        request body dto.MasteringAnalysisRequest true "Track and preset"
// @Success      200 {object} response.SuccessResponse{data=dto.JobResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid request or unknown preset"
// @Failure      502 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{projectId}/analysis/mastering [post]
func (h *AnalysisHandler) SubmitMastering(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "projectId", "project")
	if !ok {
		return
	}
	var req dto.MasteringAnalysisRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.analysisService.SubmitMastering(c.Request.Context(), user, projectID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}

// SubmitSeparation godoc
// @Summary      Separate stems
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        projectId path string true "Project ID (UUID)"
// @Param        request body dto.StemSeparationRequest true "Source file"
// @Success      200 {object} response.SuccessResponse{data=dto.JobResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      502 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{projectId}/analysis/separation [post]
func (h *AnalysisHandler) SubmitSeparation(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	projectID, ok := uuidParam(c, "projectId", "project")
	if !ok {
		return
	}
	var req dto.StemSeparationRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.analysisService.SubmitSeparation(c.Request.Context(), user, projectID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, result)
}

// ListAnalyses godoc
// @Summary      List a project's analyses
// @Tags         analysis
// @Produce      json
// @Param        projectId path string true "Project ID (UUID)"
// @Param        limit query int false "Maximum per kind" default(20)
// @Success      200 {object} response.SuccessResponse{data=dto.ProjectAnalysesResponse}
// @Security     BearerAuth
// @Router       /projects/{projectId}/analyses [get]
func (h *AnalysisHandler) ListAnalyses(c *gin.Context) {
	projectID, ok := uuidParam(c, "projectId", "project")
	if !ok {
		return
	}

	analyses, err := h.analysisService.ListAnalyses(c.Request.Context(), projectID, queryInt(c, "limit", defaultAnalysesLimit))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, analyses)
}

// ApplyMixing godoc
// @Summary      Mark a mixing analysis as applied
// @Tags         analysis
// @Produce      json
// @Param        analysisId path string true "Mixing analysis ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.AnalysisResponse}
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /analyses/mixing/{analysisId}/apply [post]
func (h *AnalysisHandler) ApplyMixing(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	analysisID, ok := uuidParam(c, "analysisId", "analysis")
	if !ok {
		return
	}

	analysis, err := h.analysisService.MarkMixingApplied(c.Request.Context(), user, analysisID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, analysis)
}

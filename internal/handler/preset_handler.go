package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/response"
	"github.com/dadolfin1208/signalforge/internal/service"
)

type PresetHandler struct {
	presetService service.PresetService
}

func NewPresetHandler(presetService service.PresetService) *PresetHandler {
	return &PresetHandler{presetService: presetService}
}

// ListPresets godoc
// @Summary      List my mastering presets
// @Tags         presets
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.PresetResponse}
// @Security     BearerAuth
// @Router       /presets [get]
func (h *PresetHandler) ListPresets(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	presets, err := h.presetService.ListPresets(c.Request.Context(), user)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, presets)
}

// CreatePreset godoc
// @Summary      Save a mastering preset
// @Tags         presets
// @Accept       json
// @Produce      json
// @Param        request body dto.CreatePresetRequest true "Preset"
// @Success      201 {object} response.SuccessResponse{data=dto.PresetResponse}
// @Failure      400 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /presets [post]
func (h *PresetHandler) CreatePreset(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreatePresetRequest
	if !bindJSON(c, &req) {
		return
	}
	preset, err := h.presetService.CreatePreset(c.Request.Context(), user, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, preset)
}

// DeletePreset godoc
// @Summary      Delete a mastering preset
// @Tags         presets
// @Produce      json
// @Param        presetId path string true "Preset ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=map[string]string}
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /presets/{presetId} [delete]
func (h *PresetHandler) DeletePreset(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	presetID, ok := uuidParam(c, "presetId", "preset")
	if !ok {
		return
	}
	if err := h.presetService.DeletePreset(c.Request.Context(), user, presetID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, map[string]string{"message": "Preset deleted successfully"})
}

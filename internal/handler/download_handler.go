package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/response"
	"github.com/dadolfin1208/signalforge/internal/service"
)

type DownloadHandler struct {
	downloadService service.DownloadService
}

func NewDownloadHandler(downloadService service.DownloadService) *DownloadHandler {
	return &DownloadHandler{downloadService: downloadService}
}

// ListDownloads godoc
// @Summary      List available installers
// @Description  Requires an active subscription
// @Tags         downloads
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.DownloadResponse}
// @Failure      402 {object} response.ErrorResponse "Subscription required"
// @Security     BearerAuth
// @Router       /downloads [get]
func (h *DownloadHandler) ListDownloads(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	files, err := h.downloadService.ListAvailable(c.Request.Context(), user)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, files)
}

// RecordDownload godoc
// @Summary      Record a download
// @Description  Counts the download and returns the installer with its file URL
// @Tags         downloads
// @Produce      json
// @Param        downloadId path string true "Download ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.DownloadResponse}
// @Failure      402 {object} response.ErrorResponse "Subscription required"
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /downloads/{downloadId} [post]
func (h *DownloadHandler) RecordDownload(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "downloadId", "download")
	if !ok {
		return
	}
	file, err := h.downloadService.RecordDownload(c.Request.Context(), user, id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, file)
}

// ListAllDownloads godoc
// @Summary      List every installer (admin)
// @Tags         admin
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.DownloadResponse}
// @Security     BearerAuth
// @Router       /admin/downloads [get]
func (h *DownloadHandler) ListAllDownloads(c *gin.Context) {
	files, err := h.downloadService.ListAll(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, files)
}

// PublishInstaller godoc
// @Summary      Publish an installer (admin)
// @Description  Uploads the installer and deactivates earlier versions for the same platform
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Param        platform formData string true "Platform" Enums(macOS, Windows, Linux)
// @Param        version formData string true "Version"
// @Param        requirements formData string false "System requirements"
// @Param        file formData file true "Installer"
// @Success      201 {object} response.SuccessResponse{data=dto.DownloadResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      502 {object} response.ErrorResponse "Upload failed"
// @Security     BearerAuth
// @Router       /admin/downloads [post]
func (h *DownloadHandler) PublishInstaller(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.PublishInstallerRequest
	if err := c.ShouldBind(&req); err != nil {
		response.SendErrorWithDetails(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid form", err.Error())
		return
	}
	file, closeFile, ok := formFile(c, "file")
	if !ok {
		return
	}
	defer closeFile()

	published, err := h.downloadService.Publish(c.Request.Context(), admin, &req, file)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, published)
}

// ToggleDownload godoc
// @Summary      Activate or deactivate an installer (admin)
// @Tags         admin
// @Produce      json
// @Param        downloadId path string true "Download ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.DownloadResponse}
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/downloads/{downloadId}/toggle [post]
func (h *DownloadHandler) ToggleDownload(c *gin.Context) {
	id, ok := uuidParam(c, "downloadId", "download")
	if !ok {
		return
	}
	file, err := h.downloadService.Toggle(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, file)
}

// DeleteDownload godoc
// @Summary      Delete an installer record (admin)
// @Tags         admin
// @Produce      json
// @Param        downloadId path string true "Download ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=map[string]string}
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/downloads/{downloadId} [delete]
func (h *DownloadHandler) DeleteDownload(c *gin.Context) {
	id, ok := uuidParam(c, "downloadId", "download")
	if !ok {
		return
	}
	if err := h.downloadService.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, map[string]string{"message": "Download deleted successfully"})
}

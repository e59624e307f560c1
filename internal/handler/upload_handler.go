package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/response"
	"github.com/dadolfin1208/signalforge/internal/service"
)

type UploadHandler struct {
	uploadService service.UploadService
}

func NewUploadHandler(uploadService service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// formFile opens a multipart file field. The returned func closes it.
func formFile(c *gin.Context, field string) (service.UploadedFile, func(), bool) {
	header, err := c.FormFile(field)
	if err != nil {
		response.SendErrorWithDetails(c, http.StatusBadRequest, response.ErrCodeValidation, "File is required", field)
		return service.UploadedFile{}, nil, false
	}
	f, err := header.Open()
	if err != nil {
		_ = c.Error(err)
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Could not read uploaded file")
		return service.UploadedFile{}, nil, false
	}
	return service.UploadedFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        f,
	}, func() { _ = f.Close() }, true
}

// UploadFile godoc
// @Summary      Upload an audio file
// @Description  Stores the file and records it as a temporary upload until it is confirmed
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Audio file"
// @Success      201 {object} response.SuccessResponse{data=dto.AudioFileResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      502 {object} response.ErrorResponse "Storage failed"
// @Security     BearerAuth
// @Router       /uploads [post]
func (h *UploadHandler) UploadFile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	file, closeFile, ok := formFile(c, "file")
	if !ok {
		return
	}
	defer closeFile()

	uploaded, err := h.uploadService.Upload(c.Request.Context(), user, file)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, uploaded)
}

// PresignUpload godoc
// @Summary      Get a direct upload URL
// @Description  Only available with S3 storage. PUT the file to uploadUrl, then confirm it.
// @Tags         uploads
// @Accept       json
// @Produce      json
// @Param        request body dto.PresignUploadRequest true "File metadata"
// @Success      201 {object} response.SuccessResponse{data=dto.PresignUploadResponse}
// @Failure      400 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /uploads/presign [post]
func (h *UploadHandler) PresignUpload(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.PresignUploadRequest
	if !bindJSON(c, &req) {
		return
	}
	presigned, err := h.uploadService.Presign(c.Request.Context(), user, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, presigned)
}

// ConfirmUpload godoc
// @Summary      Attach an upload to a project
// @Tags         uploads
// @Accept       json
// @Produce      json
// @Param        fileId path string true "File ID (UUID)"
// @Param        request body dto.ConfirmUploadRequest true "Project"
// @Success      200 {object} response.SuccessResponse{data=dto.AudioFileResponse}
// @Failure      400 {object} response.ErrorResponse "Expired upload"
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /uploads/{fileId}/confirm [post]
func (h *UploadHandler) ConfirmUpload(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	fileID, ok := uuidParam(c, "fileId", "file")
	if !ok {
		return
	}
	var req dto.ConfirmUploadRequest
	if !bindJSON(c, &req) {
		return
	}
	confirmed, err := h.uploadService.Confirm(c.Request.Context(), user, fileID, req.ProjectID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, confirmed)
}

// ListUploads godoc
// @Summary      List my uploads
// @Tags         uploads
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.AudioFileResponse}
// @Security     BearerAuth
// @Router       /uploads [get]
func (h *UploadHandler) ListUploads(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	files, err := h.uploadService.List(c.Request.Context(), user)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, files)
}

// DeleteUpload godoc
// @Summary      Delete an upload
// @Tags         uploads
// @Produce      json
// @Param        fileId path string true "File ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=map[string]string}
// @Failure      403 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /uploads/{fileId} [delete]
func (h *UploadHandler) DeleteUpload(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	fileID, ok := uuidParam(c, "fileId", "file")
	if !ok {
		return
	}
	if err := h.uploadService.Delete(c.Request.Context(), user, fileID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, map[string]string{"message": "File deleted successfully"})
}

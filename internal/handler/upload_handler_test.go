package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/response"
	"github.com/dadolfin1208/signalforge/internal/service"
)

func multipartBody(t *testing.T, field, name, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+name+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadHandler_UploadFile(t *testing.T) {
	var received service.UploadedFile
	var content []byte
	mockService := &MockUploadService{
		UploadFunc: func(ctx context.Context, user domain.User, file service.UploadedFile) (*dto.AudioFileResponse, error) {
			received = file
			var err error
			content, err = io.ReadAll(file.Body)
			require.NoError(t, err)
			return &dto.AudioFileResponse{ID: uuid.New(), FileName: file.Name, Status: "TEMP", UploadedBy: user.Email}, nil
		},
	}
	router := newTestRouter(&testUser)
	router.POST("/uploads", NewUploadHandler(mockService).UploadFile)

	body, contentType := multipartBody(t, "file", "take1.wav", "audio/wav", []byte("RIFFdata"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "take1.wav", received.Name)
	assert.Equal(t, "audio/wav", received.ContentType)
	assert.Equal(t, int64(8), received.Size)
	assert.Equal(t, []byte("RIFFdata"), content)

	var resp dto.AudioFileResponse
	decodeData(t, w.Body.Bytes(), &resp)
	assert.Equal(t, "TEMP", resp.Status)
	assert.Equal(t, testUser.Email, resp.UploadedBy)
}

func TestUploadHandler_UploadFileMissing(t *testing.T) {
	called := false
	mockService := &MockUploadService{
		UploadFunc: func(ctx context.Context, user domain.User, file service.UploadedFile) (*dto.AudioFileResponse, error) {
			called = true
			return nil, nil
		},
	}
	router := newTestRouter(&testUser)
	router.POST("/uploads", NewUploadHandler(mockService).UploadFile)

	body, contentType := multipartBody(t, "", "", "", nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrCodeValidation, decodeError(t, w.Body.Bytes()).Code)
	assert.False(t, called)
}

func TestUploadHandler_ConfirmUpload(t *testing.T) {
	fileID := uuid.New()
	projectID := uuid.New()

	tests := []struct {
		name           string
		path           string
		body           string
		confirmErr     error
		expectedStatus int
	}{
		{"confirmed", "/uploads/" + fileID.String() + "/confirm", `{"projectId":"` + projectID.String() + `"}`, nil, http.StatusOK},
		{"bad file id", "/uploads/nope/confirm", `{"projectId":"` + projectID.String() + `"}`, nil, http.StatusBadRequest},
		{"missing project", "/uploads/" + fileID.String() + "/confirm", `{}`, nil, http.StatusBadRequest},
		{"expired", "/uploads/" + fileID.String() + "/confirm", `{"projectId":"` + projectID.String() + `"}`,
			response.NewValidationError("Upload has expired", ""), http.StatusBadRequest},
		{"not the uploader", "/uploads/" + fileID.String() + "/confirm", `{"projectId":"` + projectID.String() + `"}`,
			response.NewForbiddenError("Not your upload", ""), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockUploadService{
				ConfirmFunc: func(ctx context.Context, user domain.User, fID, pID uuid.UUID) (*dto.AudioFileResponse, error) {
					if tt.confirmErr != nil {
						return nil, tt.confirmErr
					}
					assert.Equal(t, fileID, fID)
					assert.Equal(t, projectID, pID)
					return &dto.AudioFileResponse{ID: fID, ProjectID: &pID, Status: "CONFIRMED"}, nil
				},
			}
			router := newTestRouter(&testUser)
			router.POST("/uploads/:fileId/confirm", NewUploadHandler(mockService).ConfirmUpload)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

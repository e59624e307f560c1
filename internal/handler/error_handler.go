package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dadolfin1208/signalforge/internal/repository"
	"github.com/dadolfin1208/signalforge/internal/response"
)

// handleServiceError maps service layer errors to appropriate HTTP responses.
// The error is attached to the gin context so the request logger records it.
func handleServiceError(c *gin.Context, err error) {
	_ = c.Error(err)

	var appErr *response.AppError
	if errors.As(err, &appErr) {
		status := mapErrorCodeToHTTPStatus(appErr.Code)
		details := appErr.Details
		if status >= http.StatusInternalServerError {
			// upstream and internal details stay in the logs
			details = ""
		}
		response.SendErrorWithDetails(c, status, appErr.Code, appErr.Message, details)
		return
	}

	if errors.Is(err, repository.ErrNotFound) {
		response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Resource not found")
		return
	}

	response.SendError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Internal server error")
}

// mapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func mapErrorCodeToHTTPStatus(code string) int {
	switch code {
	case response.ErrCodeNotFound:
		return http.StatusNotFound
	case response.ErrCodeAlreadyExists:
		return http.StatusConflict
	case response.ErrCodeValidation:
		return http.StatusBadRequest
	case response.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case response.ErrCodeForbidden:
		return http.StatusForbidden
	case response.ErrCodeSubscriptionRequired:
		return http.StatusPaymentRequired
	case response.ErrCodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

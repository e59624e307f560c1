package service

import (
	"errors"

	"github.com/dadolfin1208/signalforge/internal/client"
	"github.com/dadolfin1208/signalforge/internal/repository"
	"github.com/dadolfin1208/signalforge/internal/response"
)

// storeError converts a repository error into an AppError. what names the
// record kind in the message.
func storeError(err error, what string) *response.AppError {
	var perr *client.PlatformError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return response.NewNotFoundError(what+" not found", "")
	case errors.As(err, &perr):
		return response.WrapAppError(response.ErrCodeUpstream, "Platform request failed", err)
	default:
		return response.WrapAppError(response.ErrCodeInternal, "Failed to access "+what, err)
	}
}

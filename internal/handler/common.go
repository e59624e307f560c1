package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/middleware"
	"github.com/dadolfin1208/signalforge/internal/response"
)

// currentUser returns the authenticated user or writes a 401
func currentUser(c *gin.Context) (domain.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "User not found in context")
		return domain.User{}, false
	}
	return user, true
}

// uuidParam parses a UUID path parameter or writes a 400
func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the request body or writes a 400 with the binding error
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.SendErrorWithDetails(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request body", err.Error())
		return false
	}
	return true
}

// queryInt reads a positive integer query parameter, or fallback
func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

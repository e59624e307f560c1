package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dadolfin1208/signalforge/internal/middleware"
	"github.com/dadolfin1208/signalforge/internal/response"
	"github.com/dadolfin1208/signalforge/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Me godoc
// @Summary      Get the signed-in user
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=dto.UserResponse}
// @Failure      401 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	response.SendSuccess(c, http.StatusOK, h.authService.Me(user))
}

// Login godoc
// @Summary      Redirect to the platform login page
// @Tags         auth
// @Param        next query string false "Where to return after signing in"
// @Success      302
// @Failure      400 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse "Interactive login not configured"
// @Router       /auth/login [get]
func (h *AuthHandler) Login(c *gin.Context) {
	target, err := h.authService.LoginURL(c.Query("next"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// Logout godoc
// @Summary      End the platform session
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=map[string]string}
// @Failure      502 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), user, middleware.CurrentToken(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, map[string]string{"message": "Logged out"})
}

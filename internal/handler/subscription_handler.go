package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/response"
	"github.com/dadolfin1208/signalforge/internal/service"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// GetMySubscription godoc
// @Summary      Get my subscription
// @Description  Returns the caller's active subscription and the days it has left
// @Tags         subscriptions
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=dto.MySubscriptionResponse}
// @Security     BearerAuth
// @Router       /subscriptions/me [get]
func (h *SubscriptionHandler) GetMySubscription(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	mine, err := h.subscriptionService.GetMine(c.Request.Context(), user)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, mine)
}

// ListSubscriptions godoc
// @Summary      List all subscriptions (admin)
// @Tags         admin
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=[]dto.SubscriptionResponse}
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/subscriptions [get]
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	subs, err := h.subscriptionService.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, subs)
}

// CreateSubscription godoc
// @Summary      Grant a subscription (admin)
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateSubscriptionRequest true "Subscription"
// @Success      201 {object} response.SuccessResponse{data=dto.SubscriptionResponse}
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/subscriptions [post]
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.subscriptionService.Create(c.Request.Context(), admin, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, sub)
}

// ToggleSubscription godoc
// @Summary      Switch a subscription between active and cancelled (admin)
// @Tags         admin
// @Produce      json
// @Param        subscriptionId path string true "Subscription ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.SubscriptionResponse}
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/subscriptions/{subscriptionId}/toggle [post]
func (h *SubscriptionHandler) ToggleSubscription(c *gin.Context) {
	id, ok := uuidParam(c, "subscriptionId", "subscription")
	if !ok {
		return
	}
	sub, err := h.subscriptionService.Toggle(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, sub)
}

// DeleteSubscription godoc
// @Summary      Delete a subscription (admin)
// @Tags         admin
// @Produce      json
// @Param        subscriptionId path string true "Subscription ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=map[string]string}
// @Failure      404 {object} response.ErrorResponse
// @Security     BearerAuth
// @Router       /admin/subscriptions/{subscriptionId} [delete]
func (h *SubscriptionHandler) DeleteSubscription(c *gin.Context) {
	id, ok := uuidParam(c, "subscriptionId", "subscription")
	if !ok {
		return
	}
	if err := h.subscriptionService.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, map[string]string{"message": "Subscription deleted successfully"})
}

package handler

import (
	"net/http"

	"spurt/internal/delivery/api/response"
	"spurt/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SubscriberHandler serves newsletter subscriptions
type SubscriberHandler struct {
	subscriberUC usecase.SubscriberUsecase
}

// NewSubscriberHandler is the constructor for SubscriberHandler
func NewSubscriberHandler(subscriberUC usecase.SubscriberUsecase) *SubscriberHandler {
	return &SubscriberHandler{subscriberUC: subscriberUC}
}

// SubscribeRequest represents the request body for subscribing
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Subscribe handles a newsletter subscription
func (h *SubscriberHandler) Subscribe(c echo.Context) error {
	var req SubscribeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid subscription input")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	subscriber, err := h.subscriberUC.Subscribe(c.Request().Context(), req.Email)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, subscriber)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbayefall/palmares-api/internal/models"
	appErrors "github.com/mbayefall/palmares-api/pkg/errors"
	"github.com/mbayefall/palmares-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	auth authService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(auth authService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login issues an access token for valid credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

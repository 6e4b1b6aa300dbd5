// Package handlers holds the top-level HTTP handlers not owned by a module.
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ervall/mediavault/internal/auth"
	apperrors "github.com/ervall/mediavault/internal/errors"
)

// AuthHandler serves PIN login.
type AuthHandler struct {
	service *auth.Service
}

// NewAuthHandler creates the login handler.
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

type loginRequest struct {
	PIN string `json:"pin"`
}

// Login exchanges a PIN for a bearer token carrying the role claim.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.NewValidationError("PIN is required", "pin").ToGinResponse(c)
		return
	}

	result, err := h.service.Login(req.PIN)
	if err != nil {
		var ve *apperrors.VaultError
		if errors.As(err, &ve) {
			ve.ToGinResponse(c)
			return
		}
		apperrors.NewInternalError("login failed", err).ToGinResponse(c)
		return
	}

	c.JSON(200, result)
}

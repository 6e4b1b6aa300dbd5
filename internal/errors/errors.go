// Package errors defines the structured error type shared by the HTTP
// handlers and the vault gateway. Every failure surface carries a stable code
// so callers branch on taxonomy, not on message text.
package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ervall/mediavault/internal/logger"
)

// Error codes. These mirror the user-visible failure classes: validation
// problems surface inline, auth failures end the session, network failures
// surface as a generic notice with no automatic retry.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeAuth       = "AUTH_ERROR"
	CodeForbidden  = "FORBIDDEN"
	CodeNotFound   = "NOT_FOUND"
	CodeNetwork    = "NETWORK_ERROR"
	CodeDatabase   = "DATABASE_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

// VaultError is a structured error with HTTP context.
type VaultError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func (e *VaultError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *VaultError) Unwrap() error {
	return e.Cause
}

// ToGinResponse sends the error as a standardized JSON response.
func (e *VaultError) ToGinResponse(c *gin.Context) {
	statusCode := e.HTTPStatus
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}

	response := gin.H{
		"error": e.Message,
		"code":  e.Code,
	}
	if len(e.Context) > 0 {
		response["details"] = e.Context
	}

	logger.Error("HTTP error response",
		[]logger.Field{
			logger.Int("status", statusCode),
			logger.String("code", e.Code),
			logger.String("message", e.Message),
			logger.String("path", c.Request.URL.Path),
			logger.String("method", c.Request.Method),
		})

	c.JSON(statusCode, response)
}

func NewValidationError(message string, field string) *VaultError {
	return &VaultError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Context:    map[string]interface{}{"field": field},
	}
}

func NewAuthError(message string) *VaultError {
	return &VaultError{
		Code:       CodeAuth,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string) *VaultError {
	return &VaultError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

func NewNotFoundError(resource string, id string) *VaultError {
	return &VaultError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
		Context:    map[string]interface{}{"resource": resource, "id": id},
	}
}

func NewNetworkError(message string, cause error) *VaultError {
	return &VaultError{
		Code:       CodeNetwork,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

func NewDatabaseError(operation string, cause error) *VaultError {
	return &VaultError{
		Code:       CodeDatabase,
		Message:    "Database operation failed",
		HTTPStatus: http.StatusInternalServerError,
		Context:    map[string]interface{}{"operation": operation},
		Cause:      cause,
	}
}

func NewInternalError(message string, cause error) *VaultError {
	return &VaultError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func codeOf(err error) string {
	var ve *VaultError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}

func IsValidation(err error) bool { return codeOf(err) == CodeValidation }
func IsAuth(err error) bool       { return codeOf(err) == CodeAuth }
func IsForbidden(err error) bool  { return codeOf(err) == CodeForbidden }
func IsNotFound(err error) bool   { return codeOf(err) == CodeNotFound }
func IsNetwork(err error) bool    { return codeOf(err) == CodeNetwork }

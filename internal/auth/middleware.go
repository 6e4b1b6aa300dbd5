package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ervall/mediavault/internal/errors"
)

// Context keys set by the middleware.
const (
	ContextRole    = "auth.role"
	ContextSubject = "auth.subject"
)

// RequireAuth validates the bearer token and stores role and subject on the
// request context.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			errors.NewAuthError("missing bearer token").ToGinResponse(c)
			c.Abort()
			return
		}

		claims, err := ParseToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			errors.NewAuthError("could not validate credentials").ToGinResponse(c)
			c.Abort()
			return
		}

		c.Set(ContextRole, claims.Role)
		c.Set(ContextSubject, claims.Subject)
		c.Next()
	}
}

// RequireAdmin rejects non-admin sessions. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != RoleAdmin {
			errors.NewForbiddenError("Not authorized").ToGinResponse(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

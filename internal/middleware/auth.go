package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lalith-99/beans/internal/service"
)

// Context keys for the authenticated caller.
//
// Why string constants instead of inline strings?
//   - A typo in c.Get("usr_id") compiles and silently returns nil. With
//     constants the compiler catches it.
//   - Handlers and tests import the same keys.
const (
	ContextKeyUserID    = "user_id"
	ContextKeySessionID = "session_id"
)

// TokenResolver turns a bearer token into the caller behind it.
// *service.AuthService satisfies it.
type TokenResolver interface {
	ResolveToken(token string) (service.Identity, error)
}

// AuthMiddleware rejects requests without a valid "Bearer <token>" header.
//
// Checking the signature alone is not enough here: logout deletes the session
// row, so the resolver also confirms the session still exists. That turns a
// logged-out token into a 401 even before it expires.
func AuthMiddleware(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid authorization format, expected: Bearer <token>")
			return
		}

		id, err := resolver.ResolveToken(parts[1])
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid or expired token")
			return
		}

		c.Set(ContextKeyUserID, id.UserID)
		c.Set(ContextKeySessionID, id.SessionID)
		c.Next()
	}
}

// GetUserID returns 0 when the middleware did not run; no user has ID 0.
func GetUserID(c *gin.Context) int64 {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0
	}
	id, ok := val.(int64)
	if !ok {
		return 0
	}
	return id
}

func GetSessionID(c *gin.Context) uuid.UUID {
	val, exists := c.Get(ContextKeySessionID)
	if !exists {
		return uuid.Nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

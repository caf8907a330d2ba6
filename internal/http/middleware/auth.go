package middleware

import (
	"context"
	"net/http"
	"strings"

	"studentbus/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

// Authenticator resolves a bearer token to the calling user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.RequestContext, error)
}

// Auth rejects requests without a valid bearer token and stores the caller
// as userID/userRole in the gin context. Browsers cannot set headers on a
// WebSocket handshake, so upgrades may pass the token as ?token=.
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" && websocket.IsWebSocketUpgrade(c.Request) {
			token = strings.TrimSpace(c.Query("token"))
		}
		if token == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		rc, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			if domain.IsUnauthorized(err) {
				abortUnauthorized(c, err.Error())
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":      "authentication failed",
				"code":       "internal_error",
				"request_id": GetRequestID(c),
			})
			return
		}

		c.Set(userIDKey, rc.UserID)
		c.Set(userRoleKey, string(rc.Role))
		c.Next()
	}
}

// Caller returns the authenticated user set by Auth.
func Caller(c *gin.Context) domain.RequestContext {
	return domain.RequestContext{
		UserID: c.GetString(userIDKey),
		Role:   domain.Role(c.GetString(userRoleKey)),
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      msg,
		"code":       "unauthorized",
		"message":    msg,
		"request_id": GetRequestID(c),
	})
}

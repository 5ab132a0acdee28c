package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/accel-dashboard-go/internal/session"
	"github.com/jengzang/accel-dashboard-go/pkg/response"
)

// Context keys set by the auth middleware
const (
	TokenKey    = "upstream_token"
	UsernameKey = "user"
)

// RequireSession redirects to the login page when the request has no valid session
func RequireSession(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := sessions.Current(c)
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(TokenKey, claims.Token)
		c.Set(UsernameKey, claims.Username)
		c.Next()
	}
}

// RequireToken takes the upstream token from an Authorization bearer header,
// falling back to the session cookie
func RequireToken(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c.GetHeader("Authorization")); token != "" {
			c.Set(TokenKey, token)
			c.Next()
			return
		}

		if claims, ok := sessions.Current(c); ok {
			c.Set(TokenKey, claims.Token)
			c.Set(UsernameKey, claims.Username)
			c.Next()
			return
		}

		response.Unauthorized(c, "Authentication required")
		c.Abort()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

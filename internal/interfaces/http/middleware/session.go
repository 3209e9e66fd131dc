// internal/interfaces/http/middleware/session.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/session"
)

const sessionContextKey = "session_state"

// Session resolves the session cookie into the per-session state and
// stores it in the request context. Requests without a valid session are
// rejected.
func Session(manager *session.Manager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cfg.Session.CookieName)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Sign in required",
			})
			c.Abort()
			return
		}

		state, err := manager.Resume(c.Request.Context(), token)
		if err != nil {
			// Expired cookie or a session the store no longer knows
			c.SetCookie(cfg.Session.CookieName, "", -1, "/", cfg.Session.CookieDomain, cfg.Session.CookieSecure, true)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Session expired, please sign in again",
			})
			c.Abort()
			return
		}

		c.Set(sessionContextKey, state)
		c.Next()
	}
}

// GetSessionFromContext extracts the session state from gin context
func GetSessionFromContext(c *gin.Context) (*session.State, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return nil, false
	}
	state, ok := value.(*session.State)
	return state, ok
}

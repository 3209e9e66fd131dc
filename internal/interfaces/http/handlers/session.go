// internal/interfaces/http/handlers/session.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-gateway/internal/session"
)

// SessionHandler handles sign-in, sign-out and session introspection
type SessionHandler struct {
	manager *session.Manager
	config  *config.Config
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(manager *session.Manager, cfg *config.Config) *SessionHandler {
	return &SessionHandler{
		manager: manager,
		config:  cfg,
	}
}

// LoginRequest represents the sign-in form
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /session/login
func (h *SessionHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	state, token, err := h.manager.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie(
		h.config.Session.CookieName,
		token,
		int(h.config.Session.TTL.Seconds()),
		"/",
		h.config.Session.CookieDomain,
		h.config.Session.CookieSecure,
		true,
	)

	c.JSON(http.StatusOK, gin.H{
		"message": "Signed in successfully",
		"data":    state.User,
	})
}

// Logout handles POST /session/logout
func (h *SessionHandler) Logout(c *gin.Context) {
	state, ok := middleware.GetSessionFromContext(c)
	if ok {
		h.manager.Dispose(c.Request.Context(), state.ID)
	}

	c.SetCookie(h.config.Session.CookieName, "", -1, "/", h.config.Session.CookieDomain, h.config.Session.CookieSecure, true)

	c.JSON(http.StatusOK, gin.H{
		"message": "Signed out successfully",
	})
}

// Me handles GET /session/me
func (h *SessionHandler) Me(c *gin.Context) {
	state, ok := middleware.GetSessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Sign in required",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": state.User,
	})
}

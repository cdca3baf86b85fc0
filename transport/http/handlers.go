// Package http wires the service layer to its HTTP surface: gin handlers
// for the login handshake and the quest API, session middleware, metrics
// and health endpoints.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/questline/questline/core"
	"github.com/questline/questline/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints.
type AuthHandlers struct {
	authService *service.AuthService
	metrics     *Metrics
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(authService *service.AuthService, metrics *Metrics) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		metrics:     metrics,
	}
}

// BeginLogin handles the first half of the handshake: it answers with a
// fresh challenge and the user's public salt.
func (h *AuthHandlers) BeginLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	challenge, err := h.authService.BeginLogin(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, core.ErrNoUser) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin login"})
		return
	}

	h.metrics.noncesIssued.Inc()
	c.JSON(http.StatusOK, gin.H{
		"nonce_id":      challenge.NonceID,
		"server_nonce":  challenge.ServerNonce,
		"password_salt": challenge.PasswordSalt,
	})
}

// CompleteLogin handles the second half: it verifies the submitted proof
// and answers with a session token.
func (h *AuthHandlers) CompleteLogin(c *gin.Context) {
	var req struct {
		Username    string `json:"username" binding:"required"`
		Proof       string `json:"proof" binding:"required"`
		NonceID     string `json:"nonce_id" binding:"required"`
		ClientNonce uint64 `json:"client_nonce"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	token, err := h.authService.CompleteLogin(c.Request.Context(), req.Username, req.Proof, req.NonceID, req.ClientNonce)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNoUser):
			h.metrics.loginOutcomes.WithLabelValues(outcomeNoUser).Inc()
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown user"})
		case errors.Is(err, core.ErrNonceExpired):
			h.metrics.loginOutcomes.WithLabelValues(outcomeNonceExpired).Inc()
			c.JSON(http.StatusGone, gin.H{"error": "Challenge expired"})
		case errors.Is(err, core.ErrAuthFailed):
			h.metrics.loginOutcomes.WithLabelValues(outcomeRejected).Inc()
			c.JSON(http.StatusForbidden, gin.H{"error": "Authentication failed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete login"})
		}
		return
	}

	h.metrics.loginOutcomes.WithLabelValues(outcomeAccepted).Inc()
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Logout handles session logout. Unknown and already-dead sessions answer
// the same way as live ones; only an unreachable store is an error.
func (h *AuthHandlers) Logout(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Token    string `json:"token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.Username, req.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Logged out"})
}

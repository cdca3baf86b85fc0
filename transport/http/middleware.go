package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/questline/questline/internal/logutil"
	"github.com/questline/questline/service"
)

const userContextKey = "username"

// AuthRequired gates a route group on a live session named by the
// X-Auth-Username header and a bearer token. Every pass through also slides
// the session window, so authorized traffic doubles as a heartbeat.
func AuthRequired(authService *service.AuthService, metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetHeader("X-Auth-Username")
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if username == "" || !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		valid, err := authService.ValidateAndRefresh(c.Request.Context(), username, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate session"})
			return
		}
		if !valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		metrics.tokenRefreshes.Inc()
		c.Set(userContextKey, username)
		c.Next()
	}
}

// sessionUser returns the username the middleware authenticated.
func sessionUser(c *gin.Context) string {
	return c.GetString(userContextKey)
}

// RequestLogger writes one log line per request and plants the logger in
// the request context so service-level warnings inherit it.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(logutil.WithLogger(c.Request.Context(), logger))
		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

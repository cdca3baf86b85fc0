package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/questline/questline/service"
)

// HealthCheck reports downstream health; nil means everything the service
// depends on is reachable.
type HealthCheck func(ctx context.Context) error

// SetupRouter sets up the Gin router.
func SetupRouter(
	authService *service.AuthService,
	questService *service.QuestService,
	metrics *Metrics,
	logger zerolog.Logger,
	health HealthCheck,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger), metrics.ObserveRequests())

	authHandlers := NewAuthHandlers(authService, metrics)
	questHandlers := NewQuestHandlers(questService)

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.POST("/login/begin", authHandlers.BeginLogin)
		auth.POST("/login/complete", authHandlers.CompleteLogin)
		auth.POST("/logout", authHandlers.Logout)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthRequired(authService, metrics))
	{
		api.POST("/quests", questHandlers.Create)
		api.GET("/quests", questHandlers.List)
		api.GET("/quests/:id", questHandlers.Get)
		api.PATCH("/quests/:id", questHandlers.Update)
		api.DELETE("/quests/:id", questHandlers.Delete)
		api.POST("/quests/:id/objectives", questHandlers.AddObjective)
		api.POST("/quests/:id/objectives/:objectiveID/complete", questHandlers.CompleteObjective)
		api.DELETE("/quests/:id/objectives/:objectiveID", questHandlers.RemoveObjective)
	}

	router.GET("/healthz", healthHandler(health))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return router
}

func healthHandler(health HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		if health != nil {
			if err := health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

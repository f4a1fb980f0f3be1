package router

import (
	"net/http"

	"github.com/TGalioAutomation/chrome-profiles-undetect-bot/internal/api/handler"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "chrome-profiles-bot",
		})
	})

	generationHandler := handler.NewGenerationHandler(deps)
	sessionHandler := handler.NewSessionHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		generations := v1.Group("/generations")
		{
			// POST /api/v1/generations - Start a batch generation
			generations.POST("", generationHandler.StartGeneration)

			// GET /api/v1/generations/stats - Aggregate generation stats
			generations.GET("/stats", generationHandler.GetStats)

			// GET /api/v1/generations/:batch_id/progress - Poll batch progress
			generations.GET("/:batch_id/progress", generationHandler.GetProgress)

			// POST /api/v1/generations/:batch_id/stop - Stop a batch
			generations.POST("/:batch_id/stop", generationHandler.StopGeneration)
		}

		sessions := v1.Group("/sessions")
		{
			// POST /api/v1/sessions - Start a browser session for a profile
			sessions.POST("", sessionHandler.StartSession)

			// GET /api/v1/sessions - List live sessions
			sessions.GET("", sessionHandler.ListSessions)

			// DELETE /api/v1/sessions/:profile_name - Stop a session
			sessions.DELETE("/:profile_name", sessionHandler.StopSession)
		}

		// GET /api/v1/prompt-files - List loadable prompt files
		v1.GET("/prompt-files", generationHandler.ListPromptFiles)
	}

	return r
}

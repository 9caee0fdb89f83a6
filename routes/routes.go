package routes

import (
	"net/http"
	"time"

	"meetpoint/handlers"
	"meetpoint/middleware"
	"meetpoint/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterMeetingRoutes registers the negotiation endpoints.
func RegisterMeetingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		// All negotiation endpoints require authentication.
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/posts/:postId/meet", hb.CreateRequestHandler)
		api.GET("/requests/inbox", hb.InboxHandler)
		api.GET("/requests/outbox", hb.OutboxHandler)
		api.GET("/requests/:id", hb.GetRequestHandler)
		api.POST("/requests/:id/respond", hb.RespondHandler)
		api.DELETE("/requests/:id", hb.CancelRequestHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"services": utils.GetHealthStatus(),
		})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterHealthRoute(r)
	RegisterMeetingRoutes(r, hb)
}

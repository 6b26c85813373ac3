package routes

import (
	"net/http"
	"os"

	"github.com/followuphq/followup-golang/internal/handlers"
	"github.com/followuphq/followup-golang/internal/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CORSMiddleware allows the web frontend to call this API. The allowed
// origin comes from CORS_ORIGIN (defaults to the local Vite dev server).
func CORSMiddleware() gin.HandlerFunc {
	origin := os.Getenv("CORS_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight requests get an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// SetupRouter wires every endpoint. authLimiter may be nil (throttling off).
func SetupRouter(h *handlers.Handlers, logger *zap.Logger, authLimiter *middleware.RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(CORSMiddleware())

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public, throttled) ---
		authGroup := v1.Group("/auth")
		authGroup.Use(authLimiter.Handler())
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
		}

		// --- Protected Routes (Login Required) ---
		authed := v1.Group("/")
		authed.Use(middleware.AuthMiddleware())
		{
			// --- Client Routes ---
			authed.GET("/clients", h.GetMyClients)
			authed.POST("/clients", h.CreateClient)
			authed.PUT("/clients/:id", h.UpdateClient)
			authed.DELETE("/clients/:id", h.DeleteClient)

			// --- Follow-up Routes ---
			authed.GET("/followups", h.GetMyFollowups)
			authed.POST("/followups", h.CreateFollowup)
			authed.PUT("/followups/:id", h.EditFollowup)
			authed.PUT("/followups/:id/complete", h.MarkComplete)
			authed.DELETE("/followups/:id", h.DeleteFollowup)

			// --- Dashboard Routes ---
			authed.GET("/dashboard", h.GetDashboard)
			authed.GET("/dashboard/calendar-counts", h.GetCalendarCounts)

			// --- Profile Routes ---
			authed.GET("/profile/me", h.GetMyProfile)
			authed.PATCH("/profile/plan", h.UpdateMyPlan)
			authed.DELETE("/profile", h.DeleteMyAccount)
		}
	}

	return router
}

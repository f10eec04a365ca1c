package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/schoolwrapped/recap-backend/internal/handlers"
)

type RouterConfig struct {
	AuthHandler  *handlers.AuthHandler
	JobHandler   *handlers.JobHandler
	RecapHandler *handlers.RecapHandler
	SSEHandler   *handlers.SSEHandler

	AllowedOrigins string
	MediaDir       string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if cfg.AllowedOrigins != "" {
		origins = origins[:0]
		for _, o := range strings.Split(cfg.AllowedOrigins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	// OAuth dance
	router.GET("/auth/start", cfg.AuthHandler.StartAuth)
	router.GET("/auth/callback", cfg.AuthHandler.Callback)

	// Recap API
	api := router.Group("/api")
	{
		api.GET("/job/:id", cfg.JobHandler.GetJob)
		api.GET("/recap/:id", cfg.RecapHandler.GetRecap)
		api.POST("/recap/:id/images", cfg.RecapHandler.RegenerateImages)
	}

	// Live job progress
	router.GET("/events/:job_id", cfg.SSEHandler.StreamJob)

	// Rendered share images
	if cfg.MediaDir != "" {
		router.Static("/media", cfg.MediaDir)
	}

	return router
}

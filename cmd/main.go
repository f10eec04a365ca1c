package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/schoolwrapped/recap-backend/internal/db"
	"github.com/schoolwrapped/recap-backend/internal/handlers"
	"github.com/schoolwrapped/recap-backend/internal/logger"
	"github.com/schoolwrapped/recap-backend/internal/render"
	"github.com/schoolwrapped/recap-backend/internal/repos"
	"github.com/schoolwrapped/recap-backend/internal/schoology"
	"github.com/schoolwrapped/recap-backend/internal/server"
	"github.com/schoolwrapped/recap-backend/internal/services"
	"github.com/schoolwrapped/recap-backend/internal/sse"
	"github.com/schoolwrapped/recap-backend/internal/utils"
	"github.com/schoolwrapped/recap-backend/internal/worker"
)

func main() {
	// Local dev convenience; production supplies real env vars.
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	appBaseURL := utils.GetEnv("APP_BASE_URL", "http://localhost:8080", log)
	frontendURL := utils.GetEnv("FRONTEND_URL", "http://localhost:3000", log)
	corsOrigins := utils.GetEnv("CORS_ORIGINS", "", log)
	schoologyCfg := schoology.ConfigFromEnv(log)

	// Database
	dbService, err := db.New(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err = dbService.AutoMigrateAll(); err != nil {
		log.Warn("Auto migration failed", "error", err)
	}
	theDB := dbService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	jobRepo := repos.NewJobRepo(theDB, log)
	recapRepo := repos.NewRecapRepo(theDB, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewSSEHub(log)

	// Services
	log.Info("Setting up Services from main...")
	notifier := services.NewJobNotifier(sseHub, log)
	renderer, err := render.New(log)
	if err != nil {
		log.Warn("Renderer init failed; recaps will have no share images", "error", err)
		renderer = nil
	}
	builder := services.NewRecapBuilder(schoologyCfg, recapRepo, renderer, log)

	// Worker
	jobWorker := worker.NewWorker(jobRepo, builder, notifier, log)
	jobWorker.Start(context.Background())

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(schoologyCfg, appBaseURL+"/auth/callback", frontendURL, jobRepo, log)
	jobHandler := handlers.NewJobHandler(jobRepo, recapRepo)
	recapHandler := handlers.NewRecapHandler(recapRepo, renderer, log)
	sseHandler := handlers.NewSSEHandler(sseHub)

	mediaDir := ""
	if renderer != nil {
		mediaDir = renderer.MediaDir()
	}

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		JobHandler:     jobHandler,
		RecapHandler:   recapHandler,
		SSEHandler:     sseHandler,
		AllowedOrigins: corsOrigins,
		MediaDir:       mediaDir,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/nadavbr/lessonforge-backend/internal/db"
	"github.com/nadavbr/lessonforge-backend/internal/handlers"
	"github.com/nadavbr/lessonforge-backend/internal/logger"
	"github.com/nadavbr/lessonforge-backend/internal/middleware"
	"github.com/nadavbr/lessonforge-backend/internal/repos"
	"github.com/nadavbr/lessonforge-backend/internal/server"
	"github.com/nadavbr/lessonforge-backend/internal/services"
	"github.com/nadavbr/lessonforge-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = os.Getenv("APP_ENV")
	}
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.SeedCatalog(); err != nil {
		log.Warn("Catalog seed failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	catalogRepo := repos.NewCatalogRepo(thePG, log)
	lessonRepo := repos.NewLessonRepo(thePG, log)

	// Services
	log.Info("Setting up services from main...")
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}
	userService := services.NewUserService(thePG, log, userRepo)
	catalogService := services.NewCatalogService(thePG, log, catalogRepo)
	lessonService := services.NewLessonService(thePG, log, lessonRepo, catalogRepo, userRepo, openaiClient)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService, lessonService)
	lessonHandler := handlers.NewLessonHandler(lessonService)
	categoryHandler := handlers.NewCategoryHandler(catalogService)

	// Middleware
	lessonLimiter := middleware.NewRateLimiter(log, 5, 60*time.Second)

	// Router
	log.Info("Setting up router from main...")
	corsOrigin := utils.GetEnv("CORS_ORIGIN", "http://localhost:3000", log)
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:     authHandler,
		UserHandler:     userHandler,
		LessonHandler:   lessonHandler,
		CategoryHandler: categoryHandler,
		LessonLimiter:   lessonLimiter,
		CORSOrigin:      corsOrigin,
	})

	port := utils.GetEnv("PORT", "4000", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

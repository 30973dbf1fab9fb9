package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nadavbr/lessonforge-backend/internal/handlers"
	"github.com/nadavbr/lessonforge-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler     *handlers.AuthHandler
	UserHandler     *handlers.UserHandler
	LessonHandler   *handlers.LessonHandler
	CategoryHandler *handlers.CategoryHandler
	LessonLimiter   *middleware.RateLimiter
	CORSOrigin      string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Server is up. Try /api/health")
	})

	api := router.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/check", cfg.AuthHandler.Check)
			auth.POST("/register", cfg.AuthHandler.Register)
		}

		api.GET("/categories", cfg.CategoryHandler.List)

		lessons := api.Group("/lessons")
		{
			lessons.POST("", cfg.LessonLimiter.Limit(), cfg.LessonHandler.Create)
			lessons.GET("", cfg.LessonHandler.List)
			lessons.GET("/:id", cfg.LessonHandler.Get)
		}

		users := api.Group("/users")
		{
			users.POST("", cfg.UserHandler.Create)
			users.GET("", cfg.UserHandler.List)
			users.GET("/:id", cfg.UserHandler.Get)
			users.PATCH("/:id", cfg.UserHandler.Update)
			users.DELETE("/:id", cfg.UserHandler.Delete)
			users.GET("/:id/lessons", cfg.UserHandler.Lessons)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "Not found"})
	})

	return router
}

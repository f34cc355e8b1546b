package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/internal/middleware"
)

// Handlers - набор обработчиков API
type Handlers struct {
	Auth *AuthHandler
	User *UserHandler
	Quiz *QuizHandler
}

// RegisterRoutes подключает маршруты /api к роутеру
func RegisterRoutes(
	router *gin.Engine,
	h Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	authLimit middleware.RateLimitConfig,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/plans", h.Auth.ListPlans)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", rateLimiter.Limit(authLimit), h.Auth.Register)
			authGroup.POST("/login", rateLimiter.Limit(authLimit), h.Auth.Login)
			authGroup.POST("/logout", authMiddleware.RequireAuth(), h.Auth.Logout)
		}

		authed := api.Group("")
		authed.Use(authMiddleware.RequireAuth())
		{
			authed.GET("/users/me", h.User.GetMe)
			authed.GET("/dashboard", h.User.GetDashboard)

			quizzes := authed.Group("/quizzes")
			{
				quizzes.POST("", h.Quiz.CreateQuiz)
				quizzes.GET("", h.Quiz.ListQuizzes)

				quizWithID := quizzes.Group("/:id")
				quizWithID.Use(middleware.ExtractUUIDParam("id", QuizIDContextKey))
				{
					quizWithID.GET("", h.Quiz.GetQuiz)
					quizWithID.PATCH("", h.Quiz.UpdateQuiz)
					quizWithID.DELETE("", h.Quiz.DeleteQuiz)
					quizWithID.POST("/questions", h.Quiz.AddQuestion)
					quizWithID.POST("/publish", h.Quiz.TogglePublish)
					quizWithID.GET("/export", h.Quiz.ExportQuiz)
				}
			}
		}
	}
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/handler/dto"
	"github.com/yourusername/quizmaster-api/internal/middleware"
	"github.com/yourusername/quizmaster-api/internal/service"
)

// UserHandler обрабатывает запросы текущего пользователя
type UserHandler struct {
	authService *service.AuthService
	quizService *service.QuizService
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(authService *service.AuthService, quizService *service.QuizService) *UserHandler {
	return &UserHandler{
		authService: authService,
		quizService: quizService,
	}
}

// GetMe возвращает профиль текущего пользователя
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		handleError(c, "UserHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// GetDashboard возвращает сводку по викторинам и тарифу пользователя
func (h *UserHandler) GetDashboard(c *gin.Context) {
	plan := entity.PlanType(c.GetString(middleware.ContextPlan))

	summary, err := h.quizService.Dashboard(c.Request.Context(), middleware.UserIDFromContext(c), plan)
	if err != nil {
		handleError(c, "UserHandler", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

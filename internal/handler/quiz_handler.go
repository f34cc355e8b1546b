package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	"github.com/yourusername/quizmaster-api/internal/handler/dto"
	"github.com/yourusername/quizmaster-api/internal/handler/helper"
	"github.com/yourusername/quizmaster-api/internal/middleware"
	"github.com/yourusername/quizmaster-api/internal/service"
)

// QuizIDContextKey - ключ контекста, под которым ExtractUUIDParam сохраняет ID викторины
const QuizIDContextKey = "quizID"

// QuizHandler обрабатывает запросы, связанные с викторинами автора
type QuizHandler struct {
	quizService   *service.QuizService
	exportService *service.ExportService
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(quizService *service.QuizService, exportService *service.ExportService) *QuizHandler {
	return &QuizHandler{
		quizService:   quizService,
		exportService: exportService,
	}
}

// CreateQuizRequest представляет запрос на создание викторины
type CreateQuizRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateQuizRequest - частичное обновление: отсутствующие поля не меняются
type UpdateQuizRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Published   *bool   `json:"published"`
}

// AddQuestionRequest представляет запрос на добавление вопроса
type AddQuestionRequest struct {
	Text string `json:"text"`
}

// CreateQuiz создает черновик викторины
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	quiz, err := h.quizService.CreateQuiz(c.Request.Context(), middleware.UserIDFromContext(c), req.Title, req.Description)
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuizResponse(quiz))
}

// ListQuizzes возвращает страницу викторин автора
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	filters := repository.QuizFilters{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	page := helper.QueryInt(c, "page", 1)
	pageSize := helper.QueryInt(c, "page_size", service.DefaultPageSize)

	result, err := h.quizService.ListQuizzes(c.Request.Context(), middleware.UserIDFromContext(c), filters, page, pageSize)
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizListResponse(result))
}

// GetQuiz возвращает викторину с вопросами и вариантами
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID := c.GetString(QuizIDContextKey)

	quiz, err := h.quizService.GetQuiz(c.Request.Context(), middleware.UserIDFromContext(c), quizID)
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz))
}

// UpdateQuiz обновляет переданные поля викторины
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	var req UpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	quiz, err := h.quizService.UpdateQuiz(c.Request.Context(), middleware.UserIDFromContext(c), c.GetString(QuizIDContextKey), service.QuizPatch{
		Title:       req.Title,
		Description: req.Description,
		Published:   req.Published,
	})
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz))
}

// DeleteQuiz удаляет викторину вместе с вопросами
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	if err := h.quizService.DeleteQuiz(c.Request.Context(), middleware.UserIDFromContext(c), c.GetString(QuizIDContextKey)); err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddQuestion добавляет вопрос с двумя вариантами по умолчанию
func (h *QuizHandler) AddQuestion(c *gin.Context) {
	var req AddQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	question, err := h.quizService.AddQuestion(c.Request.Context(), middleware.UserIDFromContext(c), c.GetString(QuizIDContextKey), req.Text)
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuestionResponse(question))
}

// TogglePublish переключает викторину между черновиком и публикацией
func (h *QuizHandler) TogglePublish(c *gin.Context) {
	quiz, err := h.quizService.TogglePublish(c.Request.Context(), middleware.UserIDFromContext(c), c.GetString(QuizIDContextKey))
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz))
}

// ExportQuiz отдает вопросы викторины файлом CSV или XLSX
func (h *QuizHandler) ExportQuiz(c *gin.Context) {
	format := c.DefaultQuery("format", service.ExportFormatCSV)
	if !service.IsValidExportFormat(format) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unsupported export format %q", format), "error_type": "bad_request"})
		return
	}

	file, err := h.exportService.ExportQuiz(c.Request.Context(), middleware.UserIDFromContext(c), c.GetString(QuizIDContextKey), format)
	if err != nil {
		handleError(c, "QuizHandler", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

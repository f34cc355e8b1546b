package dto

import (
	"time"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/handler/helper"
	"github.com/yourusername/quizmaster-api/internal/service"
)

// QuestionResponse представляет вопрос в формате для ответа клиенту
type QuestionResponse struct {
	ID        string                `json:"id"`
	QuizID    string                `json:"quiz_id"`
	Text      string                `json:"text"`
	Choices   []helper.ChoiceOption `json:"choices"`
	CreatedAt time.Time             `json:"created_at"`
}

// QuizResponse представляет викторину в формате для ответа клиенту
type QuizResponse struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Published     bool               `json:"published"`
	Status        string             `json:"status"`
	QuestionCount int64              `json:"question_count"`
	Questions     []QuestionResponse `json:"questions,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// QuizListResponse представляет страницу викторин автора
type QuizListResponse struct {
	Items    []QuizResponse `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// NewQuestionResponse создает DTO для вопроса
func NewQuestionResponse(question *entity.Question) QuestionResponse {
	return QuestionResponse{
		ID:        question.ID,
		QuizID:    question.QuizID,
		Text:      question.Text,
		Choices:   helper.ConvertChoicesToOptions(question.Choices),
		CreatedAt: question.CreatedAt,
	}
}

// NewQuizResponse создает DTO для викторины. Вопросы включаются, если они загружены.
func NewQuizResponse(quiz *entity.Quiz) QuizResponse {
	resp := QuizResponse{
		ID:            quiz.ID,
		Title:         quiz.Title,
		Description:   quiz.Description,
		Published:     quiz.Published,
		Status:        quiz.Status(),
		QuestionCount: quiz.QuestionCount,
		CreatedAt:     quiz.CreatedAt,
		UpdatedAt:     quiz.UpdatedAt,
	}
	if len(quiz.Questions) > 0 {
		resp.Questions = make([]QuestionResponse, len(quiz.Questions))
		for i := range quiz.Questions {
			resp.Questions[i] = NewQuestionResponse(&quiz.Questions[i])
		}
		resp.QuestionCount = int64(len(quiz.Questions))
	}
	return resp
}

// NewQuizListResponse создает DTO для страницы списка
func NewQuizListResponse(page *service.QuizPage) QuizListResponse {
	items := make([]QuizResponse, len(page.Items))
	for i := range page.Items {
		items[i] = NewQuizResponse(&page.Items[i])
	}
	return QuizListResponse{Items: items, Total: page.Total, Page: page.Page, PageSize: page.PageSize}
}

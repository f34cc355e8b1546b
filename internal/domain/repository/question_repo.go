package repository

import (
	"context"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами
type QuestionRepository interface {
	// CreateWithChoices в одной транзакции проверяет, что quizID принадлежит authorID,
	// вставляет вопрос и все его варианты (question.Choices). Любая ошибка откатывает всё.
	CreateWithChoices(ctx context.Context, authorID string, question *entity.Question) error
}

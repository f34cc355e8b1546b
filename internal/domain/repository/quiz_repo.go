package repository

import (
	"context"
	"time"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// QuizFilters определяет фильтры для списка викторин автора
type QuizFilters struct {
	Status string // "" (все), entity.QuizStatusDraft или entity.QuizStatusLive
	Search string // Поиск по названию/описанию
}

// IsZero сообщает, что фильтры не заданы
func (f QuizFilters) IsZero() bool {
	return f.Status == "" && f.Search == ""
}

// QuizPatch - частичное обновление викторины. nil означает "поле не передано".
type QuizPatch struct {
	Title       *string
	Description *string
	Published   *bool
}

// AuthorStats - агрегаты по викторинам автора для дашборда
type AuthorStats struct {
	TotalQuizzes     int64
	PublishedQuizzes int64
	TotalQuestions   int64
}

// QuizRepository определяет методы для работы с викторинами.
// Каждая операция, кроме Create, ограничена парой (quizID, authorID) в том же запросе,
// который читает или изменяет строку. Отсутствующая и чужая викторина неразличимы:
// обе дают apperrors.ErrNotFoundOrForbidden.
type QuizRepository interface {
	Create(ctx context.Context, quiz *entity.Quiz) error
	GetOwned(ctx context.Context, quizID, authorID string) (*entity.Quiz, error)
	// GetOwnedWithQuestions загружает викторину с вопросами и вариантами в порядке вставки
	GetOwnedWithQuestions(ctx context.Context, quizID, authorID string) (*entity.Quiz, error)
	// ListByAuthor возвращает страницу викторин автора (новые первыми) с question_count и total count
	ListByAuthor(ctx context.Context, authorID string, filters QuizFilters, limit, offset int) ([]entity.Quiz, int64, error)
	// UpdateOwned применяет только переданные поля и updated_at = now; возвращает состояние после обновления
	UpdateOwned(ctx context.Context, quizID, authorID string, patch QuizPatch, now time.Time) (*entity.Quiz, error)
	// DeleteOwned удаляет викторину; вопросы и варианты удаляются каскадом внешних ключей
	DeleteOwned(ctx context.Context, quizID, authorID string) error
	// TogglePublishOwned атомарно выполняет published = NOT published
	TogglePublishOwned(ctx context.Context, quizID, authorID string, now time.Time) (*entity.Quiz, error)
	StatsByAuthor(ctx context.Context, authorID string) (*AuthorStats, error)
}

package repository

import (
	"context"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	// Create возвращает apperrors.ErrConflict, если email уже занят
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// Store - набор репозиториев одного бэкенда хранения.
// Адаптеры (gormrepo, pgxrepo) взаимозаменяемы за этим интерфейсом.
type Store interface {
	Users() UserRepository
	Quizzes() QuizRepository
	Questions() QuestionRepository
	Close() error
}

package gormrepo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

var _ repository.QuizRepository = (*QuizRepo)(nil)

// questionCountSelect добавляет к строке викторины число её вопросов
const questionCountSelect = "quizzes.*, (SELECT COUNT(*) FROM questions WHERE questions.quiz_id = quizzes.id) AS question_count"

// QuizRepo реализует repository.QuizRepository
type QuizRepo struct {
	db *gorm.DB
}

// NewQuizRepo создает новый репозиторий викторин
func NewQuizRepo(db *gorm.DB) *QuizRepo {
	return &QuizRepo{db: db}
}

// ownedBy ограничивает запрос викториной конкретного автора
func ownedBy(quizID, authorID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("quizzes.id = ? AND quizzes.author_id = ?", quizID, authorID)
	}
}

// Create создает новую викторину
func (r *QuizRepo) Create(ctx context.Context, quiz *entity.Quiz) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(quiz).Error
	return mapError("create quiz", err, apperrors.ErrNotFoundOrForbidden)
}

// GetOwned возвращает викторину автора
func (r *QuizRepo) GetOwned(ctx context.Context, quizID, authorID string) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.WithContext(ctx).
		Select(questionCountSelect).
		Scopes(ownedBy(quizID, authorID)).
		First(&quiz).Error
	if err != nil {
		return nil, mapError("get quiz", err, apperrors.ErrNotFoundOrForbidden)
	}
	return &quiz, nil
}

// GetOwnedWithQuestions возвращает викторину вместе с вопросами и вариантами ответов
func (r *QuizRepo) GetOwnedWithQuestions(ctx context.Context, quizID, authorID string) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.WithContext(ctx).
		Select(questionCountSelect).
		Scopes(ownedBy(quizID, authorID)).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.created_at ASC")
		}).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("choices.position ASC")
		}).
		First(&quiz).Error
	if err != nil {
		return nil, mapError("get quiz with questions", err, apperrors.ErrNotFoundOrForbidden)
	}
	return &quiz, nil
}

// ListByAuthor возвращает страницу викторин автора, новые первыми
func (r *QuizRepo) ListByAuthor(ctx context.Context, authorID string, filters repository.QuizFilters, limit, offset int) ([]entity.Quiz, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("quizzes.author_id = ?", authorID)
		switch filters.Status {
		case entity.QuizStatusDraft:
			db = db.Where("quizzes.published = ?", false)
		case entity.QuizStatusLive:
			db = db.Where("quizzes.published = ?", true)
		}
		if search := strings.TrimSpace(filters.Search); search != "" {
			pattern := "%" + strings.ToLower(search) + "%"
			db = db.Where("(LOWER(quizzes.title) LIKE ? OR LOWER(quizzes.description) LIKE ?)", pattern, pattern)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&entity.Quiz{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, mapError("count quizzes", err, apperrors.ErrNotFound)
	}

	quizzes := make([]entity.Quiz, 0)
	if total == 0 {
		return quizzes, 0, nil
	}

	err := r.db.WithContext(ctx).
		Select(questionCountSelect).
		Scopes(scope).
		Order("quizzes.created_at DESC").
		Order("quizzes.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&quizzes).Error
	if err != nil {
		return nil, 0, mapError("list quizzes", err, apperrors.ErrNotFound)
	}
	return quizzes, total, nil
}

// UpdateOwned точечно обновляет переданные поля. Условие на author_id входит в сам UPDATE,
// поэтому чужая викторина не может быть изменена даже при гонке.
func (r *QuizRepo) UpdateOwned(ctx context.Context, quizID, authorID string, patch repository.QuizPatch, now time.Time) (*entity.Quiz, error) {
	updates := map[string]interface{}{
		"updated_at": now,
	}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Published != nil {
		updates["published"] = *patch.Published
	}

	return r.mutateOwned(ctx, "update quiz", quizID, authorID, updates)
}

// TogglePublishOwned атомарно инвертирует published одним UPDATE
func (r *QuizRepo) TogglePublishOwned(ctx context.Context, quizID, authorID string, now time.Time) (*entity.Quiz, error) {
	updates := map[string]interface{}{
		"published":  gorm.Expr("NOT published"),
		"updated_at": now,
	}
	return r.mutateOwned(ctx, "toggle publish", quizID, authorID, updates)
}

// mutateOwned выполняет UPDATE ... WHERE id AND author_id и читает результат в той же транзакции.
// RowsAffected == 0 означает, что викторины нет или она чужая.
func (r *QuizRepo) mutateOwned(ctx context.Context, op, quizID, authorID string, updates map[string]interface{}) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Quiz{}).
			Where("id = ? AND author_id = ?", quizID, authorID).
			UpdateColumns(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFoundOrForbidden
		}
		return tx.Select(questionCountSelect).
			Where("quizzes.id = ?", quizID).
			First(&quiz).Error
	})
	if err != nil {
		return nil, mapError(op, err, apperrors.ErrNotFoundOrForbidden)
	}
	return &quiz, nil
}

// DeleteOwned удаляет викторину автора. Вопросы и варианты удаляются каскадом (ON DELETE CASCADE).
func (r *QuizRepo) DeleteOwned(ctx context.Context, quizID, authorID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", quizID, authorID).
		Delete(&entity.Quiz{})
	if result.Error != nil {
		return mapError("delete quiz", result.Error, apperrors.ErrNotFoundOrForbidden)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFoundOrForbidden
	}
	return nil
}

// StatsByAuthor считает викторины и вопросы автора для дашборда
func (r *QuizRepo) StatsByAuthor(ctx context.Context, authorID string) (*repository.AuthorStats, error) {
	var stats repository.AuthorStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&entity.Quiz{}).Where("author_id = ?", authorID).Count(&stats.TotalQuizzes).Error; err != nil {
		return nil, mapError("count quizzes", err, apperrors.ErrNotFound)
	}
	if err := db.Model(&entity.Quiz{}).Where("author_id = ? AND published = ?", authorID, true).Count(&stats.PublishedQuizzes).Error; err != nil {
		return nil, mapError("count published quizzes", err, apperrors.ErrNotFound)
	}
	err := db.Model(&entity.Question{}).
		Joins("JOIN quizzes ON quizzes.id = questions.quiz_id").
		Where("quizzes.author_id = ?", authorID).
		Count(&stats.TotalQuestions).Error
	if err != nil {
		return nil, mapError("count questions", err, apperrors.ErrNotFound)
	}
	return &stats, nil
}

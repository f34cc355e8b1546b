package gormrepo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

var _ repository.QuestionRepository = (*QuestionRepo)(nil)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// CreateWithChoices создает вопрос и его варианты в одной транзакции.
// Викторина проверяется на принадлежность автору внутри той же транзакции;
// на PostgreSQL строка викторины блокируется (SELECT ... FOR UPDATE) до коммита.
func (r *QuestionRepo) CreateWithChoices(ctx context.Context, authorID string, question *entity.Question) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lookup := tx.Select("id").Where("id = ? AND author_id = ?", question.QuizID, authorID)
		if tx.Dialector.Name() == "postgres" {
			lookup = lookup.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var quiz entity.Quiz
		if err := lookup.First(&quiz).Error; err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(question).Error; err != nil {
			return err
		}

		if len(question.Choices) > 0 {
			for i := range question.Choices {
				question.Choices[i].QuestionID = question.ID
			}
			if err := tx.Create(&question.Choices).Error; err != nil {
				return err
			}
		}

		// Добавление вопроса считается изменением викторины
		return tx.Model(&entity.Quiz{}).
			Where("id = ?", quiz.ID).
			UpdateColumn("updated_at", question.CreatedAt).Error
	})
	return mapError("create question", err, apperrors.ErrNotFoundOrForbidden)
}

package pgxrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

var _ repository.QuestionRepository = (*QuestionRepo)(nil)

// QuestionRepo реализует repository.QuestionRepository на pgx
type QuestionRepo struct {
	db *pgxpool.Pool
}

func NewQuestionRepo(db *pgxpool.Pool) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// CreateWithChoices вставляет вопрос и варианты в одной транзакции.
// Строка викторины блокируется FOR UPDATE, пока транзакция не завершится;
// варианты отправляются одним batch-запросом.
func (r *QuestionRepo) CreateWithChoices(ctx context.Context, authorID string, question *entity.Question) error {
	if question.ID == "" {
		question.ID = uuid.NewString()
	}
	if question.CreatedAt.IsZero() {
		question.CreatedAt = time.Now().UTC()
	}

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var quizID string
		err := tx.QueryRow(ctx,
			`SELECT id FROM quizzes WHERE id = $1 AND author_id = $2 FOR UPDATE`,
			question.QuizID, authorID,
		).Scan(&quizID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO questions (id, quiz_id, text, created_at) VALUES ($1, $2, $3, $4)`,
			question.ID, question.QuizID, question.Text, question.CreatedAt,
		)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for i := range question.Choices {
			choice := &question.Choices[i]
			if choice.ID == "" {
				choice.ID = uuid.NewString()
			}
			choice.QuestionID = question.ID
			batch.Queue(
				`INSERT INTO choices (id, question_id, text, is_correct, position) VALUES ($1, $2, $3, $4, $5)`,
				choice.ID, choice.QuestionID, choice.Text, choice.IsCorrect, choice.Position,
			)
		}
		if batch.Len() > 0 {
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx, `UPDATE quizzes SET updated_at = $2 WHERE id = $1`, quizID, question.CreatedAt)
		return err
	})
	return mapError("create question", err, apperrors.ErrNotFoundOrForbidden)
}

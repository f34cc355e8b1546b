package pgxrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

var _ repository.QuizRepository = (*QuizRepo)(nil)

const (
	quizColumns        = `q.id, q.title, q.description, q.published, q.author_id, q.created_at, q.updated_at`
	quizCountColumn    = `(SELECT COUNT(*) FROM questions qs WHERE qs.quiz_id = q.id) AS question_count`
	// quizFromUpdated дочитывает строку из CTE updated вместе с числом вопросов
	quizFromUpdated = `SELECT q.id, q.title, q.description, q.published, q.author_id, q.created_at, q.updated_at,
		(SELECT COUNT(*) FROM questions qs WHERE qs.quiz_id = q.id) AS question_count
		FROM updated q`
)

// QuizRepo реализует repository.QuizRepository на pgx
type QuizRepo struct {
	db *pgxpool.Pool
}

func NewQuizRepo(db *pgxpool.Pool) *QuizRepo {
	return &QuizRepo{db: db}
}

// scanQuiz читает quizColumns и question_count
func scanQuiz(row pgx.Row) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := row.Scan(
		&quiz.ID, &quiz.Title, &quiz.Description, &quiz.Published, &quiz.AuthorID, &quiz.CreatedAt, &quiz.UpdatedAt,
		&quiz.QuestionCount,
	)
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// Create вставляет новую викторину
func (r *QuizRepo) Create(ctx context.Context, quiz *entity.Quiz) error {
	if quiz.ID == "" {
		quiz.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = now
	}
	if quiz.UpdatedAt.IsZero() {
		quiz.UpdatedAt = quiz.CreatedAt
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO quizzes (id, title, description, published, author_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		quiz.ID, quiz.Title, quiz.Description, quiz.Published, quiz.AuthorID, quiz.CreatedAt, quiz.UpdatedAt,
	)
	return mapError("create quiz", err, apperrors.ErrNotFoundOrForbidden)
}

// GetOwned возвращает викторину автора
func (r *QuizRepo) GetOwned(ctx context.Context, quizID, authorID string) (*entity.Quiz, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+quizColumns+`, `+quizCountColumn+` FROM quizzes q WHERE q.id = $1 AND q.author_id = $2`,
		quizID, authorID,
	)
	quiz, err := scanQuiz(row)
	if err != nil {
		return nil, mapError("get quiz", err, apperrors.ErrNotFoundOrForbidden)
	}
	return quiz, nil
}

// GetOwnedWithQuestions читает викторину, вопросы и варианты в одной read-only транзакции,
// чтобы все три запроса видели один снимок данных
func (r *QuizRepo) GetOwnedWithQuestions(ctx context.Context, quizID, authorID string) (*entity.Quiz, error) {
	var quiz *entity.Quiz
	err := pgx.BeginTxFunc(ctx, r.db, pgx.TxOptions{AccessMode: pgx.ReadOnly, IsoLevel: pgx.RepeatableRead}, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`SELECT `+quizColumns+`, `+quizCountColumn+` FROM quizzes q WHERE q.id = $1 AND q.author_id = $2`,
			quizID, authorID,
		)
		var err error
		if quiz, err = scanQuiz(row); err != nil {
			return err
		}

		questions, err := loadQuestions(ctx, tx, quiz.ID)
		if err != nil {
			return err
		}
		quiz.Questions = questions
		return nil
	})
	if err != nil {
		return nil, mapError("get quiz with questions", err, apperrors.ErrNotFoundOrForbidden)
	}
	return quiz, nil
}

// loadQuestions загружает вопросы викторины (в порядке создания) и их варианты (по позиции)
func loadQuestions(ctx context.Context, q querier, quizID string) ([]entity.Question, error) {
	rows, err := q.Query(ctx,
		`SELECT id, quiz_id, text, created_at FROM questions WHERE quiz_id = $1 ORDER BY created_at ASC, id ASC`,
		quizID,
	)
	if err != nil {
		return nil, err
	}
	questions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Question, error) {
		var question entity.Question
		err := row.Scan(&question.ID, &question.QuizID, &question.Text, &question.CreatedAt)
		return question, err
	})
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return questions, nil
	}

	index := make(map[string]int, len(questions))
	for i := range questions {
		index[questions[i].ID] = i
	}

	rows, err = q.Query(ctx,
		`SELECT c.id, c.question_id, c.text, c.is_correct, c.position
		 FROM choices c JOIN questions qs ON qs.id = c.question_id
		 WHERE qs.quiz_id = $1
		 ORDER BY c.position ASC`,
		quizID,
	)
	if err != nil {
		return nil, err
	}
	choices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Choice, error) {
		var choice entity.Choice
		err := row.Scan(&choice.ID, &choice.QuestionID, &choice.Text, &choice.IsCorrect, &choice.Position)
		return choice, err
	})
	if err != nil {
		return nil, err
	}
	for _, choice := range choices {
		if i, ok := index[choice.QuestionID]; ok {
			questions[i].Choices = append(questions[i].Choices, choice)
		}
	}
	return questions, nil
}

// ListByAuthor возвращает страницу викторин автора, новые первыми
func (r *QuizRepo) ListByAuthor(ctx context.Context, authorID string, filters repository.QuizFilters, limit, offset int) ([]entity.Quiz, int64, error) {
	where := []string{"q.author_id = $1"}
	args := []any{authorID}

	switch filters.Status {
	case entity.QuizStatusDraft:
		where = append(where, "q.published = FALSE")
	case entity.QuizStatusLive:
		where = append(where, "q.published = TRUE")
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(LOWER(q.title) LIKE $%d OR LOWER(q.description) LIKE $%d)", n, n))
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quizzes q WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, mapError("count quizzes", err, apperrors.ErrNotFound)
	}
	if total == 0 {
		return []entity.Quiz{}, 0, nil
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT %s, %s FROM quizzes q WHERE %s ORDER BY q.created_at DESC, q.id DESC LIMIT $%d OFFSET $%d`,
		quizColumns, quizCountColumn, cond, len(args)-1, len(args),
	)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list quizzes", err, apperrors.ErrNotFound)
	}
	quizzes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Quiz, error) {
		quiz, err := scanQuiz(row)
		if err != nil {
			return entity.Quiz{}, err
		}
		return *quiz, nil
	})
	if err != nil {
		return nil, 0, mapError("list quizzes", err, apperrors.ErrNotFound)
	}
	return quizzes, total, nil
}

// UpdateOwned обновляет только переданные поля; COALESCE оставляет прежнее значение для NULL
func (r *QuizRepo) UpdateOwned(ctx context.Context, quizID, authorID string, patch repository.QuizPatch, now time.Time) (*entity.Quiz, error) {
	row := r.db.QueryRow(ctx,
		`WITH updated AS (
			UPDATE quizzes SET
				title = COALESCE($3, title),
				description = COALESCE($4, description),
				published = COALESCE($5, published),
				updated_at = $6
			WHERE id = $1 AND author_id = $2
			RETURNING *
		) `+quizFromUpdated,
		quizID, authorID, patch.Title, patch.Description, patch.Published, now,
	)
	quiz, err := scanQuiz(row)
	if err != nil {
		return nil, mapError("update quiz", err, apperrors.ErrNotFoundOrForbidden)
	}
	return quiz, nil
}

// TogglePublishOwned атомарно инвертирует published и возвращает новое состояние
func (r *QuizRepo) TogglePublishOwned(ctx context.Context, quizID, authorID string, now time.Time) (*entity.Quiz, error) {
	row := r.db.QueryRow(ctx,
		`WITH updated AS (
			UPDATE quizzes SET published = NOT published, updated_at = $3
			WHERE id = $1 AND author_id = $2
			RETURNING *
		) `+quizFromUpdated,
		quizID, authorID, now,
	)
	quiz, err := scanQuiz(row)
	if err != nil {
		return nil, mapError("toggle publish", err, apperrors.ErrNotFoundOrForbidden)
	}
	return quiz, nil
}

// DeleteOwned удаляет викторину автора; вопросы и варианты удаляются каскадом
func (r *QuizRepo) DeleteOwned(ctx context.Context, quizID, authorID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM quizzes WHERE id = $1 AND author_id = $2`, quizID, authorID)
	if err != nil {
		return mapError("delete quiz", err, apperrors.ErrNotFoundOrForbidden)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFoundOrForbidden
	}
	return nil
}

// StatsByAuthor считает викторины и вопросы автора одним запросом
func (r *QuizRepo) StatsByAuthor(ctx context.Context, authorID string) (*repository.AuthorStats, error) {
	var stats repository.AuthorStats
	err := r.db.QueryRow(ctx,
		`SELECT
			COUNT(DISTINCT q.id),
			COUNT(DISTINCT q.id) FILTER (WHERE q.published),
			COUNT(qs.id)
		 FROM quizzes q LEFT JOIN questions qs ON qs.quiz_id = q.id
		 WHERE q.author_id = $1`,
		authorID,
	).Scan(&stats.TotalQuizzes, &stats.PublishedQuizzes, &stats.TotalQuestions)
	if err != nil {
		return nil, mapError("quiz stats", err, apperrors.ErrNotFound)
	}
	return &stats, nil
}

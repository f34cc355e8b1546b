package gormrepo_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
	"github.com/yourusername/quizmaster-api/internal/repository/gormrepo"
)

// newPostgresMock открывает GORM с диалектом PostgreSQL поверх sqlmock
func newPostgresMock(t *testing.T) (*gormrepo.Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gormrepo.NewStore(db), mock
}

func quizRows(id, authorID string, published bool, now time.Time, questions int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "published", "author_id", "created_at", "updated_at", "question_count"}).
		AddRow(id, "Geo101", "", published, authorID, now, now, questions)
}

func TestQuizRepo_TogglePublishOwned_SingleNegationStatement(t *testing.T) {
	// Arrange
	store, mock := newPostgresMock(t)
	quizID, authorID := "7b0c9a52-3f0e-4f55-9c1e-3b9b2d0f6a11", "0d6f0e4c-8a7b-4e39-b0b2-4c3c8f1b9e22"
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "quizzes" SET "published"=NOT published,"updated_at"=$1 WHERE id = $2 AND author_id = $3`)).
		WithArgs(sqlmock.AnyArg(), quizID, authorID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT quizzes.*, (SELECT COUNT(*) FROM questions WHERE questions.quiz_id = quizzes.id) AS question_count FROM "quizzes" WHERE quizzes.id = $1`)).
		WillReturnRows(quizRows(quizID, authorID, true, now, 2))
	mock.ExpectCommit()

	// Act
	quiz, err := store.Quizzes().TogglePublishOwned(context.Background(), quizID, authorID, now)

	// Assert
	require.NoError(t, err)
	assert.True(t, quiz.Published)
	assert.Equal(t, int64(2), quiz.QuestionCount, "Ответ на переключение несет реальное число вопросов")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRepo_TogglePublishOwned_ForeignQuizRollsBack(t *testing.T) {
	store, mock := newPostgresMock(t)
	quizID, strangerID := "7b0c9a52-3f0e-4f55-9c1e-3b9b2d0f6a11", "5a1d2c3b-4e5f-4a6b-8c7d-9e0f1a2b3c44"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "quizzes" SET "published"=NOT published`)).
		WithArgs(sqlmock.AnyArg(), quizID, strangerID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := store.Quizzes().TogglePublishOwned(context.Background(), quizID, strangerID, time.Now())

	assert.ErrorIs(t, err, apperrors.ErrNotFoundOrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRepo_DeleteOwned_ScopedByAuthor(t *testing.T) {
	store, mock := newPostgresMock(t)
	quizID, authorID := "7b0c9a52-3f0e-4f55-9c1e-3b9b2d0f6a11", "0d6f0e4c-8a7b-4e39-b0b2-4c3c8f1b9e22"

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "quizzes" WHERE id = $1 AND author_id = $2`)).
		WithArgs(quizID, authorID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Quizzes().DeleteOwned(context.Background(), quizID, authorID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepo_CreateWithChoices_LocksQuizRow(t *testing.T) {
	store, mock := newPostgresMock(t)
	quizID, strangerID := "7b0c9a52-3f0e-4f55-9c1e-3b9b2d0f6a11", "5a1d2c3b-4e5f-4a6b-8c7d-9e0f1a2b3c44"

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "quizzes" WHERE id = \$1 AND author_id = \$2 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := store.Questions().CreateWithChoices(context.Background(), strangerID, entity.NewQuestionWithDefaults(quizID, "Q?", time.Now()))

	assert.ErrorIs(t, err, apperrors.ErrNotFoundOrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet(), "Ни одного INSERT не должно быть выполнено")
}

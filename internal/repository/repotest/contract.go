// Package repotest содержит общий набор проверок для адаптеров repository.Store.
// Каждый адаптер (gormrepo на SQLite/PostgreSQL, pgxrepo) прогоняет один и тот же набор.
package repotest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// StoreFactory возвращает пустое хранилище для одного подтеста
type StoreFactory func(t *testing.T) repository.Store

// RunStoreContract прогоняет все проверки порта хранения на свежих хранилищах
func RunStoreContract(t *testing.T, newStore StoreFactory) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("quiz isolation", func(t *testing.T) { testQuizIsolation(t, newStore(t)) })
	t.Run("update", func(t *testing.T) { testUpdate(t, newStore(t)) })
	t.Run("toggle publish", func(t *testing.T) { testTogglePublish(t, newStore(t)) })
	t.Run("concurrent toggles", func(t *testing.T) { testConcurrentToggles(t, newStore(t)) })
	t.Run("add question", func(t *testing.T) { testAddQuestion(t, newStore(t)) })
	t.Run("mutations report question count", func(t *testing.T) { testMutationsReportQuestionCount(t, newStore(t)) })
	t.Run("list", func(t *testing.T) { testList(t, newStore(t)) })
	t.Run("delete", func(t *testing.T) { testDelete(t, newStore(t)) })
}

// Now возвращает текущее время с точностью, которую сохраняют все бэкенды
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// CreateUser создает пользователя с уникальным email
func CreateUser(t *testing.T, store repository.Store, name string) *entity.User {
	t.Helper()
	user := &entity.User{
		Name:     name,
		Email:    name + "-" + uuid.NewString()[:8] + "@example.com",
		Password: "password123",
	}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

// CreateQuiz создает черновик викторины автора
func CreateQuiz(t *testing.T, store repository.Store, authorID, title string, createdAt time.Time) *entity.Quiz {
	t.Helper()
	quiz := &entity.Quiz{
		Title:     title,
		AuthorID:  authorID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, store.Quizzes().Create(context.Background(), quiz))
	return quiz
}

func testUsers(t *testing.T, store repository.Store) {
	ctx := context.Background()
	user := CreateUser(t, store, "alice")

	_, err := uuid.Parse(user.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PlanFree, user.Plan)
	assert.True(t, entity.IsPasswordHash(user.Password), "Пароль должен храниться в виде хеша")

	byEmail, err := store.Users().GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.True(t, byEmail.CheckPassword("password123"))

	byID, err := store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	duplicate := &entity.User{Name: "other", Email: user.Email, Password: "password123"}
	err = store.Users().Create(ctx, duplicate)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = store.Users().GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func testQuizIsolation(t *testing.T, store repository.Store) {
	ctx := context.Background()
	alice := CreateUser(t, store, "alice")
	bob := CreateUser(t, store, "bob")
	quiz := CreateQuiz(t, store, alice.ID, "Geo101", Now())

	got, err := store.Quizzes().GetOwned(ctx, quiz.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Geo101", got.Title)
	assert.False(t, got.Published, "Новая викторина всегда черновик")
	assert.Equal(t, alice.ID, got.AuthorID)

	_, err = store.Quizzes().GetOwned(ctx, quiz.ID, bob.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFoundOrForbidden)

	_, err = store.Quizzes().GetOwned(ctx, uuid.NewString(), alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFoundOrForbidden, "Отсутствующая и чужая викторина неразличимы")

	title := "Hijacked"
	_, err = store.Quizzes().UpdateOwned(ctx, quiz.ID, bob.ID, repository.QuizPatch{Title: &title}, Now())
	assert.ErrorIs(t, err, apperrors.ErrNotFoundOrForbidden)

	_, err = store.Quizzes().TogglePublishOwned(ctx, quiz.ID, bob.ID, Now())
	assert.ErrorIs(t, err, apperrors.ErrNotFoundOrForbidden)

	err = store.Quizzes().DeleteOwned(ctx, quiz.ID, bob.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFoundOrForbidden)

	err = store.Questions().CreateWithChoices(ctx, bob.ID, entity.NewQuestionWithDefaults(quiz.ID, "Q?", Now()))
	assert.ErrorIs(t, err, apperrors.ErrNotFoundOrForbidden)

	after, err := store.Quizzes().GetOwnedWithQuestions(ctx, quiz.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Geo101", after.Title, "Чужие попытки не должны менять викторину")
	assert.False(t, after.Published)
	assert.Empty(t, after.Questions)
}

func testUpdate(t *testing.T, store repository.Store) {
	ctx := context.Background()
	alice := CreateUser(t, store, "alice")
	created := Now().Add(-time.Hour)
	quiz := CreateQuiz(t, store, alice.ID, "Original", created)

	// Пустой патч меняет только updated_at
	now := Now()
	updated, err := store.Quizzes().UpdateOwned(ctx, quiz.ID, alice.ID, repository.QuizPatch{}, now)
	require.NoError(t, err)
	assert.Equal(t, "Original", updated.Title)
	assert.Equal(t, "", updated.Description)
	assert.False(t, updated.Published)
	assert.WithinDuration(t, now, updated.UpdatedAt, time.Millisecond)
	assert.WithinDuration(t, created, updated.CreatedAt, time.Millisecond)

	title, description, published := "Renamed", "About capitals", true
	later := now.Add(time.Minute)
	updated, err = store.Quizzes().UpdateOwned(ctx, quiz.ID, alice.ID, repository.QuizPatch{
		Title:       &title,
		Description: &description,
		Published:   &published,
	}, later)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "About capitals", updated.Description)
	assert.True(t, updated.Published)
	assert.Equal(t, alice.ID, updated.AuthorID, "Автор не меняется")
	assert.WithinDuration(t, later, updated.UpdatedAt, time.Millisecond)

	// Частичный патч не трогает остальные поля
	onlyDescription := ""
	updated, err = store.Quizzes().UpdateOwned(ctx, quiz.ID, alice.ID, repository.QuizPatch{Description: &onlyDescription}, later)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "", updated.Description)
	assert.True(t, updated.Published)

	_, err = store.Quizzes().UpdateOwned(ctx, uuid.NewString(), alice.ID, repository.QuizPatch{Title: &title}, later)
	assert.ErrorIs(t, err, apperrors.ErrNotFoundOrForbidden)
}

func testTogglePublish(t *testing.T, store repository.Store) {
	ctx := context.Background()
	alice := CreateUser(t, store, "alice")
	quiz := CreateQuiz(t, store, alice.ID, "Toggle", Now())

	first, err := store.Quizzes().TogglePublishOwned(ctx, quiz.ID, alice.ID, Now())
	require.NoError(t, err)
	assert.True(t, first.Published)

	second, err := store.Quizzes().TogglePublishOwned(ctx, quiz.ID, alice.ID, Now())
	require.NoError(t, err)
	assert.False(t, second.Published, "Двойное переключение возвращает исходное состояние")

	_, err = store.Quizzes().TogglePublishOwned(ctx, uuid.NewString(), alice.ID, Now())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func testConcurrentToggles(t *testing.T, store repository.Store) {
	ctx := context.Background()
	alice := CreateUser(t, store, "alice")
	quiz := CreateQuiz(t, store, alice.ID, "Race", Now())

	const toggles = 7
	var wg sync.WaitGroup
	errs := make(chan error, toggles)
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Quizzes().TogglePublishOwned(ctx, quiz.ID, alice.ID, Now())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := store.Quizzes().GetOwned(ctx, quiz.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, toggles%2 == 1, got.Published, "Итог = исходное XOR (N mod 2)")
}

func testAddQuestion(t *testing.T, store repository.Store) {
	ctx := context.Background()
	alice := CreateUser(t, store, "alice")
	created := Now().Add(-time.Hour)
	quiz := CreateQuiz(t, store, alice.ID, "Geo101", created)

	first := entity.NewQuestionWithDefaults(quiz.ID, "Capital of France?", Now())
	require.NoError(t, store.Questions().CreateWithChoices(ctx, alice.ID, first))
	second := entity.NewQuestionWithDefaults(quiz.ID, "Capital of Spain?", Now().Add(time.Second))
	require.NoError(t, store.Questions().CreateWithChoices(ctx, alice.ID, second))

	got, err := store.Quizzes().GetOwnedWithQuestions(ctx, quiz.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, got.Questions, 2)
	assert.Equal(t, int64(2), got.QuestionCount)
	assert.Equal(t, "Capital of France?", got.Questions[0].Text, "Вопросы идут в порядке добавления")
	assert.Equal(t, "Capital of Spain?", got.Questions[1].Text)
	assert.True(t, got.UpdatedAt.After(created), "Добавление вопроса обновляет updated_at викторины")

	for _, q := range got.Questions {
		require.Len(t, q.Choices, 2)
		assert.Equal(t, entity.DefaultCorrectChoiceText, q.Choices[0].Text)
		assert.True(t, q.Choices[0].IsCorrect)
		assert.Equal(t, entity.DefaultIncorrectChoiceText, q.Choices[1].Text)
		assert.False(t, q.Choices[1].IsCorrect)
		assert.Equal(t, q.ID, q.Choices[0].QuestionID)
	}

	err = store.Questions().CreateWithChoices(ctx, alice.ID, entity.NewQuestionWithDefaults(uuid.NewString(), "Orphan?", Now()))
	assert.ErrorIs(t, err, apperrors.ErrNotFoundOrForbidden)
}

func testMutationsReportQuestionCount(t *testing.T, store repository.Store) {
	ctx := context.Background()
	alice := CreateUser(t, store, "alice")
	quiz := CreateQuiz(t, store, alice.ID, "Geo101", Now().Add(-time.Hour))
	question := entity.NewQuestionWithDefaults(quiz.ID, "Capital of France?", Now())
	require.NoError(t, store.Questions().CreateWithChoices(ctx, alice.ID, question))

	fetched, err := store.Quizzes().GetOwned(ctx, quiz.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), fetched.QuestionCount)

	title := "Geo 102"
	updated, err := store.Quizzes().UpdateOwned(ctx, quiz.ID, alice.ID, repository.QuizPatch{Title: &title}, Now())
	require.NoError(t, err)
	assert.Equal(t, "Geo 102", updated.Title)
	assert.Equal(t, fetched.QuestionCount, updated.QuestionCount, "UpdateOwned возвращает то же число вопросов, что и GetOwned")

	toggled, err := store.Quizzes().TogglePublishOwned(ctx, quiz.ID, alice.ID, Now())
	require.NoError(t, err)
	assert.True(t, toggled.Published)
	assert.Equal(t, fetched.QuestionCount, toggled.QuestionCount, "TogglePublishOwned возвращает то же число вопросов, что и GetOwned")
}

func testList(t *testing.T, store repository.Store) {
	ctx := context.Background()
	alice := CreateUser(t, store, "alice")
	bob := CreateUser(t, store, "bob")
	base := Now().Add(-time.Hour)

	oldest := CreateQuiz(t, store, alice.ID, "History basics", base)
	middle := CreateQuiz(t, store, alice.ID, "Geography", base.Add(time.Minute))
	newest := CreateQuiz(t, store, alice.ID, "Advanced history", base.Add(2*time.Minute))
	CreateQuiz(t, store, bob.ID, "Bob's history", base.Add(3*time.Minute))

	require.NoError(t, store.Questions().CreateWithChoices(ctx, alice.ID, entity.NewQuestionWithDefaults(middle.ID, "Q1", Now())))
	_, err := store.Quizzes().TogglePublishOwned(ctx, middle.ID, alice.ID, Now())
	require.NoError(t, err)

	items, total, err := store.Quizzes().ListByAuthor(ctx, alice.ID, repository.QuizFilters{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total, "Чужие викторины не попадают в список")
	require.Len(t, items, 3)
	assert.Equal(t, []string{newest.ID, middle.ID, oldest.ID}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, int64(1), items[1].QuestionCount)
	assert.Equal(t, int64(0), items[0].QuestionCount)

	page, total, err := store.Quizzes().ListByAuthor(ctx, alice.ID, repository.QuizFilters{}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, oldest.ID, page[0].ID)

	live, total, err := store.Quizzes().ListByAuthor(ctx, alice.ID, repository.QuizFilters{Status: entity.QuizStatusLive}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, live, 1)
	assert.Equal(t, middle.ID, live[0].ID)

	drafts, total, err := store.Quizzes().ListByAuthor(ctx, alice.ID, repository.QuizFilters{Status: entity.QuizStatusDraft, Search: "HISTORY"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, drafts, 2)
	assert.Equal(t, newest.ID, drafts[0].ID)

	none, total, err := store.Quizzes().ListByAuthor(ctx, alice.ID, repository.QuizFilters{Search: "chemistry"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, none)

	stats, err := store.Quizzes().StatsByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalQuizzes)
	assert.Equal(t, int64(1), stats.PublishedQuizzes)
	assert.Equal(t, int64(1), stats.TotalQuestions)
}

func testDelete(t *testing.T, store repository.Store) {
	ctx := context.Background()
	alice := CreateUser(t, store, "alice")
	quiz := CreateQuiz(t, store, alice.ID, "Doomed", Now())
	require.NoError(t, store.Questions().CreateWithChoices(ctx, alice.ID, entity.NewQuestionWithDefaults(quiz.ID, "Q1", Now())))

	require.NoError(t, store.Quizzes().DeleteOwned(ctx, quiz.ID, alice.ID))

	_, err := store.Quizzes().GetOwned(ctx, quiz.ID, alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFoundOrForbidden)

	err = store.Quizzes().DeleteOwned(ctx, quiz.ID, alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFoundOrForbidden, "Повторное удаление сообщает о ненайденной викторине")

	stats, err := store.Quizzes().StatsByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalQuizzes)
	assert.Equal(t, int64(0), stats.TotalQuestions)
}

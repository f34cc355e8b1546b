package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// Параметры пагинации списка викторин
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// QuizPatch - частичное обновление викторины от автора
type QuizPatch struct {
	Title       *string
	Description *string
	Published   *bool
}

// QuizPage - страница списка викторин автора
type QuizPage struct {
	Items    []entity.Quiz `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// DashboardSummary - сводка для главной страницы автора
type DashboardSummary struct {
	TotalQuizzes     int64       `json:"total_quizzes"`
	PublishedQuizzes int64       `json:"published_quizzes"`
	DraftQuizzes     int64       `json:"draft_quizzes"`
	TotalQuestions   int64       `json:"total_questions"`
	Plan             entity.Plan `json:"plan"`
	// RemainingQuizzes - сколько викторин ещё позволяет тариф (только для отображения, не ограничение)
	RemainingQuizzes int64 `json:"remaining_quizzes"`
}

// QuizService предоставляет методы для работы с викторинами автора.
// Каждая операция проверяет личность вызывающего до обращения к хранилищу,
// а владение проверяется самим хранилищем в том же запросе, что и изменение.
type QuizService struct {
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	views        *ViewCache
	now          func() time.Time
}

// NewQuizService создает новый сервис викторин. views может быть nil.
func NewQuizService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	views *ViewCache,
) *QuizService {
	return &QuizService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		views:        views,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// requireUser возвращает ErrUnauthorized, если личность вызывающего не установлена
func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.ErrUnauthorized
	}
	return nil
}

// requireQuizID отсекает заведомо несуществующие идентификаторы до обращения к хранилищу
func requireQuizID(quizID string) error {
	if _, err := uuid.Parse(quizID); err != nil {
		return apperrors.ErrNotFoundOrForbidden
	}
	return nil
}

// CreateQuiz создает черновик викторины от имени автора
func (s *QuizService) CreateQuiz(ctx context.Context, userID, title, description string) (*entity.Quiz, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	title, ok := entity.NormalizeQuizTitle(title)
	if !ok {
		return nil, fmt.Errorf("%w: title is required and must be at most %d characters", apperrors.ErrValidation, entity.MaxQuizTitleLength)
	}

	now := s.now()
	quiz := &entity.Quiz{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(description),
		Published:   false,
		AuthorID:    userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	log.Printf("[QuizService] Викторина %s создана автором %s", quiz.ID, userID)
	s.views.InvalidateAuthor(ctx, userID)
	return quiz, nil
}

// UpdateQuiz обновляет только переданные поля викторины автора
func (s *QuizService) UpdateQuiz(ctx context.Context, userID, quizID string, patch QuizPatch) (*entity.Quiz, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	update := repository.QuizPatch{Published: patch.Published}
	if patch.Title != nil {
		title, ok := entity.NormalizeQuizTitle(*patch.Title)
		if !ok {
			return nil, fmt.Errorf("%w: title must not be empty and must be at most %d characters", apperrors.ErrValidation, entity.MaxQuizTitleLength)
		}
		update.Title = &title
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		update.Description = &description
	}

	if err := requireQuizID(quizID); err != nil {
		return nil, err
	}

	quiz, err := s.quizRepo.UpdateOwned(ctx, quizID, userID, update, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to update quiz %s: %w", quizID, err)
	}

	s.views.InvalidateAuthor(ctx, userID)
	return quiz, nil
}

// DeleteQuiz удаляет викторину автора вместе с вопросами и вариантами
func (s *QuizService) DeleteQuiz(ctx context.Context, userID, quizID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := requireQuizID(quizID); err != nil {
		return err
	}

	if err := s.quizRepo.DeleteOwned(ctx, quizID, userID); err != nil {
		return fmt.Errorf("failed to delete quiz %s: %w", quizID, err)
	}

	log.Printf("[QuizService] Викторина %s удалена автором %s", quizID, userID)
	s.views.InvalidateAuthor(ctx, userID)
	return nil
}

// AddQuestion добавляет вопрос с двумя вариантами-заглушками ("Option 1" верный, "Option 2" нет).
// Вопрос и оба варианта сохраняются одной транзакцией.
func (s *QuizService) AddQuestion(ctx context.Context, userID, quizID, text string) (*entity.Question, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: question text is required", apperrors.ErrValidation)
	}
	if err := requireQuizID(quizID); err != nil {
		return nil, err
	}

	question := entity.NewQuestionWithDefaults(quizID, text, s.now())
	if err := s.questionRepo.CreateWithChoices(ctx, userID, question); err != nil {
		return nil, fmt.Errorf("failed to add question to quiz %s: %w", quizID, err)
	}

	s.views.InvalidateAuthor(ctx, userID)
	return question, nil
}

// TogglePublish атомарно переключает публикацию викторины (черновик <-> опубликована)
func (s *QuizService) TogglePublish(ctx context.Context, userID, quizID string) (*entity.Quiz, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := requireQuizID(quizID); err != nil {
		return nil, err
	}

	quiz, err := s.quizRepo.TogglePublishOwned(ctx, quizID, userID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to toggle publish for quiz %s: %w", quizID, err)
	}

	log.Printf("[QuizService] Викторина %s переведена в статус %s", quiz.ID, quiz.Status())
	s.views.InvalidateAuthor(ctx, userID)
	return quiz, nil
}

// GetQuiz возвращает викторину автора с вопросами и вариантами
func (s *QuizService) GetQuiz(ctx context.Context, userID, quizID string) (*entity.Quiz, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := requireQuizID(quizID); err != nil {
		return nil, err
	}

	quiz, err := s.quizRepo.GetOwnedWithQuestions(ctx, quizID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz %s: %w", quizID, err)
	}
	return quiz, nil
}

// ListQuizzes возвращает страницу викторин автора, новые первыми.
// Первая страница без фильтров отдается из кеша представлений, если он есть.
func (s *QuizService) ListQuizzes(ctx context.Context, userID string, filters repository.QuizFilters, page, pageSize int) (*QuizPage, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	switch filters.Status {
	case "", "all":
		filters.Status = ""
	case entity.QuizStatusDraft, entity.QuizStatusLive:
	default:
		return nil, fmt.Errorf("%w: unknown status filter %q", apperrors.ErrValidation, filters.Status)
	}
	filters.Search = strings.TrimSpace(filters.Search)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	cacheable := filters.IsZero() && page == 1 && pageSize == DefaultPageSize
	var stamp ViewStamp
	if cacheable {
		cached, current, ok := s.views.GetQuizList(ctx, userID)
		if ok {
			return cached, nil
		}
		stamp = current
	}

	items, total, err := s.quizRepo.ListByAuthor(ctx, userID, filters, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	result := &QuizPage{Items: items, Total: total, Page: page, PageSize: pageSize}
	if cacheable {
		s.views.SetQuizList(ctx, userID, stamp, result)
	}
	return result, nil
}

// Dashboard собирает сводку по викторинам автора и его тарифу
func (s *QuizService) Dashboard(ctx context.Context, userID string, plan entity.PlanType) (*DashboardSummary, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	cached, stamp, ok := s.views.GetDashboard(ctx, userID)
	if ok {
		return cached, nil
	}

	stats, err := s.quizRepo.StatsByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}

	if !plan.IsValid() {
		log.Printf("[QuizService] Неизвестный тариф %q у пользователя %s, используется %s", plan, userID, entity.PlanFree)
		plan = entity.PlanFree
	}
	descriptor := entity.PlanFor(plan)
	remaining := int64(descriptor.Limits.MaxQuizzes) - stats.TotalQuizzes
	if remaining < 0 {
		remaining = 0
	}

	summary := &DashboardSummary{
		TotalQuizzes:     stats.TotalQuizzes,
		PublishedQuizzes: stats.PublishedQuizzes,
		DraftQuizzes:     stats.TotalQuizzes - stats.PublishedQuizzes,
		TotalQuestions:   stats.TotalQuestions,
		Plan:             descriptor,
		RemainingQuizzes: remaining,
	}
	s.views.SetDashboard(ctx, userID, stamp, summary)
	return summary, nil
}

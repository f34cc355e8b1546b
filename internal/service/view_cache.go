package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// ViewCache кеширует готовые представления автора (первая страница списка викторин и дашборд).
// Кеш необязателен: при nil-репозитории все методы становятся no-op, а ошибки Redis
// только логируются и никогда не ломают запрос.
//
// Каждое представление хранится вместе с версией автора (view:version:<id>), прочитанной
// до похода в хранилище. Мутация записывает новую версию, поэтому страница, собранная
// по старым данным и записанная уже после инвалидации, при чтении не совпадет по версии.
type ViewCache struct {
	cache        repository.CacheRepository
	quizListTTL  time.Duration
	dashboardTTL time.Duration
	versionTTL   time.Duration
}

// NewViewCache создает кеш представлений. cache может быть nil.
func NewViewCache(cache repository.CacheRepository, quizListTTL, dashboardTTL time.Duration) *ViewCache {
	if quizListTTL <= 0 {
		quizListTTL = 5 * time.Minute
	}
	if dashboardTTL <= 0 {
		dashboardTTL = 5 * time.Minute
	}
	// Версия живет дольше любого представления
	return &ViewCache{
		cache:        cache,
		quizListTTL:  quizListTTL,
		dashboardTTL: dashboardTTL,
		versionTTL:   2 * max(quizListTTL, dashboardTTL),
	}
}

func quizListKey(userID string) string  { return fmt.Sprintf("view:quizzes:%s", userID) }
func dashboardKey(userID string) string { return fmt.Sprintf("view:dashboard:%s", userID) }
func versionKey(userID string) string   { return fmt.Sprintf("view:version:%s", userID) }

// ViewStamp - версия представлений автора на момент чтения.
// Нулевое значение означает, что кеш недоступен и записывать в него нельзя.
type ViewStamp struct {
	version string
	valid   bool
}

type quizListEntry struct {
	Version string    `json:"version"`
	Page    *QuizPage `json:"page"`
}

type dashboardEntry struct {
	Version string            `json:"version"`
	Summary *DashboardSummary `json:"summary"`
}

// GetQuizList возвращает закешированную первую страницу списка викторин и версию для последующей записи
func (v *ViewCache) GetQuizList(ctx context.Context, userID string) (*QuizPage, ViewStamp, bool) {
	stamp := v.stamp(ctx, userID)
	if !stamp.valid {
		return nil, stamp, false
	}
	var entry quizListEntry
	if !v.get(ctx, quizListKey(userID), &entry) || entry.Page == nil || entry.Version != stamp.version {
		return nil, stamp, false
	}
	return entry.Page, stamp, true
}

// SetQuizList сохраняет первую страницу списка викторин с версией, прочитанной до загрузки
func (v *ViewCache) SetQuizList(ctx context.Context, userID string, stamp ViewStamp, page *QuizPage) {
	if v == nil || !stamp.valid {
		return
	}
	v.set(ctx, quizListKey(userID), quizListEntry{Version: stamp.version, Page: page}, v.quizListTTL)
}

// GetDashboard возвращает закешированную сводку дашборда и версию для последующей записи
func (v *ViewCache) GetDashboard(ctx context.Context, userID string) (*DashboardSummary, ViewStamp, bool) {
	stamp := v.stamp(ctx, userID)
	if !stamp.valid {
		return nil, stamp, false
	}
	var entry dashboardEntry
	if !v.get(ctx, dashboardKey(userID), &entry) || entry.Summary == nil || entry.Version != stamp.version {
		return nil, stamp, false
	}
	return entry.Summary, stamp, true
}

// SetDashboard сохраняет сводку дашборда с версией, прочитанной до загрузки
func (v *ViewCache) SetDashboard(ctx context.Context, userID string, stamp ViewStamp, summary *DashboardSummary) {
	if v == nil || !stamp.valid {
		return
	}
	v.set(ctx, dashboardKey(userID), dashboardEntry{Version: stamp.version, Summary: summary}, v.dashboardTTL)
}

// InvalidateAuthor сбрасывает все представления автора после изменения его данных
func (v *ViewCache) InvalidateAuthor(ctx context.Context, userID string) {
	if v == nil || v.cache == nil {
		return
	}
	if err := v.cache.SetJSON(ctx, versionKey(userID), uuid.NewString(), v.versionTTL); err != nil {
		log.Printf("[ViewCache] Не удалось обновить версию автора %s: %v", userID, err)
	}
	if err := v.cache.Delete(ctx, quizListKey(userID), dashboardKey(userID)); err != nil {
		log.Printf("[ViewCache] Не удалось сбросить кеш автора %s: %v", userID, err)
	}
}

// stamp читает текущую версию автора. Отсутствие ключа - это пустая версия, а не ошибка.
func (v *ViewCache) stamp(ctx context.Context, userID string) ViewStamp {
	if v == nil || v.cache == nil {
		return ViewStamp{}
	}
	var version string
	err := v.cache.GetJSON(ctx, versionKey(userID), &version)
	switch {
	case err == nil:
		return ViewStamp{version: version, valid: true}
	case errors.Is(err, apperrors.ErrNotFound):
		return ViewStamp{valid: true}
	default:
		log.Printf("[ViewCache] Ошибка чтения версии автора %s: %v", userID, err)
		return ViewStamp{}
	}
}

func (v *ViewCache) get(ctx context.Context, key string, dest interface{}) bool {
	if v == nil || v.cache == nil {
		return false
	}
	err := v.cache.GetJSON(ctx, key, dest)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[ViewCache] Ошибка чтения ключа %s: %v", key, err)
		}
		return false
	}
	return true
}

func (v *ViewCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if v == nil || v.cache == nil {
		return
	}
	if err := v.cache.SetJSON(ctx, key, value, ttl); err != nil {
		log.Printf("[ViewCache] Ошибка записи ключа %s: %v", key, err)
	}
}

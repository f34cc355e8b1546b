package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// memoryCache - repository.CacheRepository в памяти, хранит значения в JSON как Redis
type memoryCache struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]byte)}
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memoryCache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = data
	return nil
}

func (m *memoryCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	data, ok := m.values[key]
	m.mu.Unlock()
	if !ok {
		return apperrors.ErrNotFound
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok, nil
}

func (m *memoryCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	m.values[key] = data
	return true, nil
}

func TestViewCache_NilReceiverIsNoop(t *testing.T) {
	var views *ViewCache
	ctx := context.Background()

	assert.NotPanics(t, func() {
		_, stamp, ok := views.GetQuizList(ctx, "user-1")
		assert.False(t, ok)
		views.SetQuizList(ctx, "user-1", stamp, &QuizPage{})

		_, stamp, ok = views.GetDashboard(ctx, "user-1")
		assert.False(t, ok)
		views.SetDashboard(ctx, "user-1", stamp, &DashboardSummary{})

		views.InvalidateAuthor(ctx, "user-1")
	})
}

func TestViewCache_RoundTrip(t *testing.T) {
	// Arrange
	views := NewViewCache(newMemoryCache(), time.Minute, time.Minute)
	ctx := context.Background()

	// Act
	_, stamp, ok := views.GetDashboard(ctx, "user-1")
	require.False(t, ok)
	views.SetDashboard(ctx, "user-1", stamp, &DashboardSummary{TotalQuizzes: 3})
	cached, _, ok := views.GetDashboard(ctx, "user-1")

	// Assert
	require.True(t, ok)
	assert.Equal(t, int64(3), cached.TotalQuizzes)
}

func TestViewCache_WriteAfterInvalidationIsIgnored(t *testing.T) {
	// Arrange
	views := NewViewCache(newMemoryCache(), time.Minute, time.Minute)
	ctx := context.Background()
	_, listStamp, _ := views.GetQuizList(ctx, "user-1")
	_, dashStamp, _ := views.GetDashboard(ctx, "user-1")

	// Act: мутация проходит между чтением версии и записью результата
	views.InvalidateAuthor(ctx, "user-1")
	views.SetQuizList(ctx, "user-1", listStamp, &QuizPage{Total: 1})
	views.SetDashboard(ctx, "user-1", dashStamp, &DashboardSummary{TotalQuizzes: 1})

	// Assert
	_, _, listHit := views.GetQuizList(ctx, "user-1")
	_, _, dashHit := views.GetDashboard(ctx, "user-1")
	assert.False(t, listHit)
	assert.False(t, dashHit)
}

func TestViewCache_InvalidateIsolatesAuthors(t *testing.T) {
	// Arrange
	views := NewViewCache(newMemoryCache(), time.Minute, time.Minute)
	ctx := context.Background()
	_, stamp, _ := views.GetQuizList(ctx, "user-2")
	views.SetQuizList(ctx, "user-2", stamp, &QuizPage{Total: 2})

	// Act
	views.InvalidateAuthor(ctx, "user-1")

	// Assert
	cached, _, ok := views.GetQuizList(ctx, "user-2")
	require.True(t, ok)
	assert.Equal(t, int64(2), cached.Total)
}

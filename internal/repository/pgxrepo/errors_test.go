package pgxrepo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError("op", nil, apperrors.ErrNotFound))
	assert.ErrorIs(t, mapError("op", pgx.ErrNoRows, apperrors.ErrNotFoundOrForbidden), apperrors.ErrNotFoundOrForbidden)
	assert.ErrorIs(t, mapError("op", fmt.Errorf("scan: %w", pgx.ErrNoRows), apperrors.ErrNotFound), apperrors.ErrNotFound)
	assert.ErrorIs(t, mapError("op", &pgconn.PgError{Code: "23505"}, apperrors.ErrNotFound), apperrors.ErrConflict)

	driverErr := errors.New("connection reset")
	got := mapError("op", driverErr, apperrors.ErrNotFound)
	assert.ErrorIs(t, got, apperrors.ErrDependency)
	assert.ErrorIs(t, got, driverErr)
}

func TestNewStore(t *testing.T) {
	store := NewStore(nil)

	assert.NotNil(t, store.Users())
	assert.NotNil(t, store.Quizzes())
	assert.NotNil(t, store.Questions())
	assert.NoError(t, store.Close())
}

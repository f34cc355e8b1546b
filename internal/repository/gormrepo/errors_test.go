package gormrepo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

func TestMapError(t *testing.T) {
	driverErr := errors.New("connection refused")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "record not found", err: gorm.ErrRecordNotFound, want: apperrors.ErrNotFoundOrForbidden},
		{name: "already mapped", err: apperrors.ErrNotFoundOrForbidden, want: apperrors.ErrNotFoundOrForbidden},
		{name: "pgx unique", err: &pgconn.PgError{Code: "23505"}, want: apperrors.ErrConflict},
		{name: "pq unique", err: fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), want: apperrors.ErrConflict},
		{name: "sqlite unique", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, want: apperrors.ErrConflict},
		{name: "gorm duplicated key", err: gorm.ErrDuplicatedKey, want: apperrors.ErrConflict},
		{name: "other pg error", err: &pgconn.PgError{Code: "23503"}, want: apperrors.ErrDependency},
		{name: "driver failure", err: driverErr, want: apperrors.ErrDependency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError("op", tt.err, apperrors.ErrNotFoundOrForbidden)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}

	assert.ErrorIs(t, mapError("op", driverErr, apperrors.ErrNotFound), driverErr, "Ошибка драйвера сохраняется в цепочке")
}

package gormrepo

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// isUniqueViolation распознаёт нарушение уникальности для всех поддерживаемых драйверов:
// pgx (pgconn.PgError), lib/pq (pq.Error) и sqlite3.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return false
}

// mapError переводит ошибку GORM/драйвера в ошибку приложения.
// notFound - сентинел, который возвращается при gorm.ErrRecordNotFound.
func mapError(op string, err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, apperrors.ErrNotFound):
		return err
	case isUniqueViolation(err):
		return apperrors.ErrConflict
	default:
		return apperrors.Dependency(op, err)
	}
}

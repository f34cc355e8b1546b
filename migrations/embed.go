// Package migrations содержит SQL-миграции схемы, встроенные в бинарник.
package migrations

import "embed"

// Postgres - миграции для PostgreSQL (gorm postgres и pgx)
//
//go:embed postgres/*.sql
var Postgres embed.FS

// SQLite - те же таблицы в диалекте SQLite (локальная разработка и тесты)
//
//go:embed sqlite/*.sql
var SQLite embed.FS

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log"

	migrateV4 "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratePostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migrateSQLite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq" // драйвер database/sql "postgres" для миграций pgx-бэкенда
	"gorm.io/gorm"

	"github.com/yourusername/quizmaster-api/migrations"
)

// MigrateDB применяет встроенные SQL-миграции к базе, открытой через GORM.
// Набор миграций выбирается по диалекту (postgres или sqlite).
func MigrateDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("не удалось получить *sql.DB из *gorm.DB: %w", err)
	}

	m, err := NewMigrator(sqlDB, db.Dialector.Name())
	if err != nil {
		return err
	}
	return applyUp(m)
}

// MigrateURL применяет миграции PostgreSQL по строке подключения (используется pgx-бэкендом).
// Открывает отдельное соединение через lib/pq и закрывает его по завершении.
func MigrateURL(dsn string) error {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("не удалось открыть соединение для миграций: %w", err)
	}
	defer sqlDB.Close()

	m, err := NewMigrator(sqlDB, "postgres")
	if err != nil {
		return err
	}
	if err := applyUp(m); err != nil {
		return err
	}
	if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
		log.Printf("[Migrate] Ошибка при закрытии migrate: source=%v, database=%v", srcErr, dbErr)
	}
	return nil
}

// NewMigrator создает экземпляр migrate для встроенных миграций нужного диалекта.
// Close у экземпляра закрывает и переданный *sql.DB, поэтому для GORM-подключений он не вызывается.
func NewMigrator(sqlDB *sql.DB, dialect string) (*migrateV4.Migrate, error) {
	// Убедимся, что подключение к БД активно
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("не удалось проверить подключение к БД перед миграцией: %w", err)
	}

	var (
		driver database.Driver
		files  fs.FS
		dir    string
		err    error
	)
	switch dialect {
	case "postgres":
		driver, err = migratePostgres.WithInstance(sqlDB, &migratePostgres.Config{})
		files, dir = migrations.Postgres, "postgres"
	case "sqlite", "sqlite3":
		driver, err = migrateSQLite.WithInstance(sqlDB, &migrateSQLite.Config{})
		files, dir = migrations.SQLite, "sqlite"
	default:
		return nil, fmt.Errorf("миграции для диалекта %q не поддерживаются", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось создать драйвер %s для migrate: %w", dialect, err)
	}

	source, err := iofs.New(files, dir)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть встроенные миграции: %w", err)
	}

	m, err := migrateV4.NewWithInstance("iofs", source, dialect, driver)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать экземпляр migrate: %w", err)
	}
	return m, nil
}

// applyUp применяет миграции "вверх"; отсутствие изменений не считается ошибкой
func applyUp(m *migrateV4.Migrate) error {
	log.Println("[Migrate] Применяем миграции 'up'...")
	err := m.Up()
	switch {
	case errors.Is(err, migrateV4.ErrNoChange):
		log.Println("[Migrate] Изменений в миграциях не найдено, база данных уже актуальна.")
		return nil
	case err != nil:
		return fmt.Errorf("ошибка применения миграций 'up': %w", err)
	}
	log.Println("[Migrate] Миграции успешно применены.")
	return nil
}

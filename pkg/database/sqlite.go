package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MemorySQLite - DSN базы SQLite в памяти (тесты, локальный запуск)
const MemorySQLite = "file::memory:"

// NewSQLiteDB открывает базу SQLite через GORM с включенными внешними ключами.
// SQLite допускает одного писателя, поэтому пул ограничен одним соединением;
// для базы в памяти это ещё и условие того, что все запросы видят одни и те же таблицы.
func NewSQLiteDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(sqliteDSN(path)), newGormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %q: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return db, nil
}

// sqliteDSN добавляет к пути параметры, без которых не работают каскадные удаления
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

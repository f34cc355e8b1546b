package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	migrateV4 "github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/yourusername/quizmaster-api/internal/config"
	"github.com/yourusername/quizmaster-api/pkg/database"
)

const usage = `usage: migrate [-config path] <command> [arg]

commands:
  up            применить все миграции
  down          откатить последнюю миграцию
  force <N>     записать версию N и снять флаг dirty
  version       показать текущую версию`

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "путь к файлу конфигурации")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	sqlDB, dialect, err := openDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqlDB.Close()

	m, err := database.NewMigrator(sqlDB, dialect)
	if err != nil {
		log.Fatalf("Failed to create migrator: %v", err)
	}

	if err := run(m, flag.Args()); err != nil {
		log.Fatalf("[Migrate] %v", err)
	}
}

// openDB открывает *sql.DB для миграций выбранного бэкенда
func openDB(cfg config.DatabaseConfig) (*sql.DB, string, error) {
	if cfg.Driver == config.DriverSQLite {
		db, err := database.NewSQLiteDB(cfg.SQLitePath)
		if err != nil {
			return nil, "", err
		}
		sqlDB, err := database.GetSQLDB(db)
		return sqlDB, "sqlite", err
	}

	sqlDB, err := sql.Open("postgres", cfg.PostgresURL())
	return sqlDB, "postgres", err
}

func run(m *migrateV4.Migrate, args []string) error {
	switch args[0] {
	case "up":
		err := m.Up()
		if errors.Is(err, migrateV4.ErrNoChange) {
			log.Println("[Migrate] База данных уже актуальна")
			return nil
		}
		return err
	case "down":
		return m.Steps(-1)
	case "force":
		if len(args) < 2 {
			return fmt.Errorf("force requires a version")
		}
		var version int
		if _, err := fmt.Sscanf(args[1], "%d", &version); err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		if err := m.Force(version); err != nil {
			return err
		}
		log.Printf("[Migrate] Версия установлена в %d, флаг dirty снят", version)
		return nil
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrateV4.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

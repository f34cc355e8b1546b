package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsInDebugMode(t *testing.T) {
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("DATABASE_USER", "quiz")
	t.Setenv("DATABASE_DBNAME", "quizmaster")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration())
	assert.Equal(t, 10, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window())
	assert.False(t, cfg.Redis.IsConfigured())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: "9000"
database:
  driver: sqlite
  sqlite_path: from-file.db
jwt:
  secret: file-secret
  expirationHrs: 2
redis:
  addr: localhost:6379
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("GIN_MODE", "release")
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("DATABASE_SQLITE_PATH", "from-env.db")
	t.Setenv("REDIS_PASSWORD", "secret")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Server.Port, "Переменная окружения важнее файла")
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "from-env.db", cfg.Database.SQLitePath)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiration())
	assert.True(t, cfg.Redis.IsConfigured())
}

func TestLoad_ReleaseModeRequiresSecrets(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("DATABASE_USER", "quiz")
	t.Setenv("DATABASE_DBNAME", "quizmaster")
	t.Setenv("DATABASE_PASSWORD", "pw")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_PASSWORD", "")

	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_PASSWORD")
}

func TestLoad_UnsupportedDriver(t *testing.T) {
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := Load("")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestDatabaseConfig_ConnectionStrings(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "quiz", SSLMode: "disable"}

	assert.Equal(t, "host=db port=5432 user=u password=p dbname=quiz sslmode=disable", d.PostgresConnectionString())
	assert.Equal(t, "postgres://u:p@db:5432/quiz?sslmode=disable", d.PostgresURL())
}

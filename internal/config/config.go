package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Поддерживаемые бэкенды хранения
const (
	DriverPostgres = "postgres" // GORM + PostgreSQL
	DriverSQLite   = "sqlite"   // GORM + SQLite
	DriverPgx      = "pgx"      // чистый SQL на pgxpool
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Cache     CacheConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string
	Mode           string   // debug | release | test (GIN_MODE)
	ReadTimeout    int      `mapstructure:"read_timeout"`  // секунды
	WriteTimeout   int      `mapstructure:"write_timeout"` // секунды
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig содержит настройки хранилища
type DatabaseConfig struct {
	Driver      string
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SQLitePath  string `mapstructure:"sqlite_path"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single'.
	// Используется, если Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // миллисекунды
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // миллисекунды
}

// JWTConfig содержит настройки JWT
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationHrs int    `mapstructure:"expirationHrs"`
	Issuer        string `mapstructure:"issuer"`
}

// RateLimitConfig ограничивает число запросов к /api/auth/login и /register с одного IP
type RateLimitConfig struct {
	Requests  int `mapstructure:"requests"`
	WindowSec int `mapstructure:"window_sec"`
}

// CacheConfig содержит TTL кешируемых представлений
type CacheConfig struct {
	QuizListTTLSec  int `mapstructure:"quiz_list_ttl_sec"`
	DashboardTTLSec int `mapstructure:"dashboard_ttl_sec"`
}

// IsConfigured сообщает, задан ли хотя бы один адрес Redis
func (r *RedisConfig) IsConfigured() bool {
	return len(r.Addrs) > 0 || r.Addr != ""
}

// PostgresConnectionString формирует строку подключения к PostgreSQL (формат key=value)
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PostgresURL формирует строку подключения в формате URL (pgx, golang-migrate)
func (d *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Expiration возвращает время жизни access-токена
func (j *JWTConfig) Expiration() time.Duration {
	return time.Duration(j.ExpirationHrs) * time.Hour
}

// Window возвращает окно ограничения частоты запросов
func (r *RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSec) * time.Second
}

// Load загружает конфигурацию из файла и переменных окружения.
// Переменные окружения имеют приоритет над файлом.
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния

	// 1. Значения по умолчанию
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.mode", "release")
	vip.SetDefault("server.read_timeout", 10)
	vip.SetDefault("server.write_timeout", 10)
	vip.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	vip.SetDefault("database.driver", DriverPostgres)
	vip.SetDefault("database.host", "localhost")
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.sqlite_path", "quizmaster.db")
	vip.SetDefault("database.auto_migrate", true)
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("jwt.expirationHrs", 24)
	vip.SetDefault("jwt.issuer", "quizmaster-api")
	vip.SetDefault("rate_limit.requests", 10)
	vip.SetDefault("rate_limit.window_sec", 60)
	vip.SetDefault("cache.quiz_list_ttl_sec", 300)
	vip.SetDefault("cache.dashboard_ttl_sec", 300)

	// 2. Привязываем переменные окружения ЯВНО
	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.mode", "GIN_MODE")
	vip.BindEnv("server.allowed_origins", "SERVER_ALLOWED_ORIGINS")

	vip.BindEnv("database.driver", "DATABASE_DRIVER")
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.sqlite_path", "DATABASE_SQLITE_PATH")
	vip.BindEnv("database.auto_migrate", "DATABASE_AUTO_MIGRATE")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS") // Для массива строк
	vip.BindEnv("redis.addr", "REDIS_ADDR")   // Для одиночной строки
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expirationHrs", "JWT_EXPIRATIONHRS")
	vip.BindEnv("jwt.issuer", "JWT_ISSUER")

	vip.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	vip.BindEnv("rate_limit.window_sec", "RATE_LIMIT_WINDOW_SEC")

	// 3. Файл конфигурации (не страшно, если его нет, т.к. есть BindEnv)
	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	// 4. Анмаршалим конфигурацию (Viper объединит значения из файла и привязанных env vars)
	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))

	if cfg.Server.Mode == "debug" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Driver: %s", cfg.Database.Driver)
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s, Addrs: %v, Mode: %s", cfg.Redis.Addr, cfg.Redis.Addrs, cfg.Redis.Mode)
		log.Printf("JWT Expiration Hours: %d", cfg.JWT.ExpirationHrs)
		log.Printf("JWT Secret Set: %t", cfg.JWT.Secret != "")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate проверяет обязательные параметры
func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverPgx:
		if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
			return fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required (check DATABASE_SQLITE_PATH env var)")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	if c.JWT.ExpirationHrs <= 0 {
		return fmt.Errorf("jwt expiration must be positive (check JWT_EXPIRATIONHRS env var)")
	}

	// Вне debug-режима секреты обязательны
	if c.Server.Mode != "debug" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("JWT secret is required in non-debug mode (check JWT_SECRET env var)")
		}
		if c.Database.Driver != DriverSQLite && c.Database.Password == "" {
			return fmt.Errorf("database password is required in non-debug mode (check DATABASE_PASSWORD env var)")
		}
		if c.Redis.IsConfigured() && c.Redis.Password == "" {
			log.Println("Warning: Redis is configured but REDIS_PASSWORD is not set in a non-debug environment.")
		}
	}
	return nil
}

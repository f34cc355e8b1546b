package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/yourusername/quizmaster-api/internal/config"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	"github.com/yourusername/quizmaster-api/internal/handler"
	"github.com/yourusername/quizmaster-api/internal/middleware"
	"github.com/yourusername/quizmaster-api/internal/repository/gormrepo"
	"github.com/yourusername/quizmaster-api/internal/repository/pgxrepo"
	redisRepo "github.com/yourusername/quizmaster-api/internal/repository/redis"
	"github.com/yourusername/quizmaster-api/internal/service"
	"github.com/yourusername/quizmaster-api/pkg/auth"
	"github.com/yourusername/quizmaster-api/pkg/database"
)

// devJWTSecret используется только в debug-режиме без JWT_SECRET
const devJWTSecret = "quizmaster-dev-secret"

func main() {
	// Локальный .env не обязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.Server.Mode)
	isProduction := gin.Mode() == gin.ReleaseMode

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализируем хранилище выбранного бэкенда
	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		log.Printf("Failed to initialize storage: %v", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
	}()
	log.Printf("Storage backend: %s", cfg.Database.Driver)

	// Redis необязателен: без него нет кеша представлений, отзыва токенов и rate limit
	var redisClient redis.UniversalClient
	var cacheRepo repository.CacheRepository
	if cfg.Redis.IsConfigured() {
		redisClient, err = database.NewUniversalRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		log.Println("Successfully connected to Redis")

		repo, err := redisRepo.NewCacheRepo(redisClient)
		if err != nil {
			log.Printf("Failed to initialize CacheRepo: %v", err)
			os.Exit(1)
		}
		cacheRepo = repo
	} else {
		log.Println("Warning: Redis is not configured, caching, token revocation and rate limiting are disabled")
	}

	// JWT
	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		log.Println("Warning: JWT_SECRET is not set, using development secret")
		jwtSecret = devJWTSecret
	}
	jwtService, err := auth.NewJWTService(jwtSecret, cfg.JWT.Expiration(), cfg.JWT.Issuer, cacheRepo)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Инициализируем сервисы
	authService, err := service.NewAuthService(store.Users(), jwtService)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}
	views := service.NewViewCache(
		cacheRepo,
		time.Duration(cfg.Cache.QuizListTTLSec)*time.Second,
		time.Duration(cfg.Cache.DashboardTTLSec)*time.Second,
	)
	quizService := service.NewQuizService(store.Quizzes(), store.Questions(), views)
	exportService := service.NewExportService(store.Quizzes())

	// Инициализируем роутер Gin
	router := gin.Default()

	// В production не доверяем прокси-заголовкам, в разработке доверяем localhost
	trustedProxies := []string{"127.0.0.1", "::1"}
	if isProduction {
		trustedProxies = nil
	}
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		log.Printf("Warning: failed to set trusted proxies: %v", err)
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handler.RegisterRoutes(router, handler.Handlers{
		Auth: handler.NewAuthHandler(authService, isProduction),
		User: handler.NewUserHandler(authService, quizService),
		Quiz: handler.NewQuizHandler(quizService, exportService),
	},
		middleware.NewAuthMiddleware(jwtService),
		middleware.NewRateLimiter(redisClient),
		middleware.AuthRateLimitConfig(cfg.RateLimit.Requests, cfg.RateLimit.Window()),
	)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}

// openStore подключается к выбранному бэкенду и при необходимости применяет миграции
func openStore(ctx context.Context, cfg config.DatabaseConfig) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverPgx:
		if cfg.AutoMigrate {
			if err := database.MigrateURL(cfg.PostgresURL()); err != nil {
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		pool, err := database.NewPgxPool(ctx, cfg.PostgresURL())
		if err != nil {
			return nil, err
		}
		return pgxrepo.NewStore(pool), nil

	case config.DriverSQLite, config.DriverPostgres:
		db, err := openGorm(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := database.MigrateDB(db); err != nil {
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		return gormrepo.NewStore(db), nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

func openGorm(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.Driver == config.DriverSQLite {
		return database.NewSQLiteDB(cfg.SQLitePath)
	}
	return database.NewPostgresDB(cfg.PostgresConnectionString())
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
	"github.com/yourusername/quizmaster-api/pkg/auth"
)

// MinPasswordLength - минимальная длина пароля при регистрации
const MinPasswordLength = 6

// TokenIssuer выпускает и отзывает токены доступа (реализуется auth.JWTService)
type TokenIssuer interface {
	GenerateToken(user *entity.User) (string, *auth.JWTCustomClaims, error)
	RevokeToken(ctx context.Context, claims *auth.JWTCustomClaims) error
}

// AuthService предоставляет методы регистрации, входа и выхода организаторов
type AuthService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
}

// RegisterInput содержит данные для регистрации
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginResult - результат успешного входа
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if tokens == nil {
		return nil, fmt.Errorf("TokenIssuer is required for AuthService")
	}
	return &AuthService{userRepo: userRepo, tokens: tokens}, nil
}

// Register регистрирует нового организатора на тарифе FREE
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)

	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", apperrors.ErrValidation)
	}
	if !isValidEmail(input.Email) {
		return nil, fmt.Errorf("%w: invalid email address", apperrors.ErrValidation)
	}
	if len([]rune(input.Password)) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidation, MinPasswordLength)
	}

	// Проверяем, существует ли пользователь с таким email
	_, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		return nil, fmt.Errorf("%w: user with this email already exists", apperrors.ErrConflict)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}

	user := &entity.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password, // хешируется при сохранении
		Plan:     entity.PlanFree,
	}

	// Уникальный индекс по email закрывает гонку между проверкой и вставкой
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: user with this email already exists", apperrors.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("[AuthService] Зарегистрирован пользователь ID=%s", user.ID)
	return user, nil
}

// Login проверяет учетные данные и выпускает токен доступа.
// Неизвестный email, пустой хеш и неверный пароль неразличимы для вызывающего.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.ErrUnauthorized
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.CheckPassword(password) {
		log.Printf("[AuthService] Неудачная попытка входа для пользователя ID=%s", user.ID)
		return nil, apperrors.ErrUnauthorized
	}

	token, claims, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

// Logout отзывает текущий токен
func (s *AuthService) Logout(ctx context.Context, claims *auth.JWTCustomClaims) error {
	if claims == nil || claims.UserID == "" {
		return apperrors.ErrUnauthorized
	}
	return s.tokens.RevokeToken(ctx, claims)
}

// Me возвращает профиль текущего пользователя
func (s *AuthService) Me(ctx context.Context, userID string) (*entity.User, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		// Токен пережил своего владельца
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// ListPlans возвращает каталог тарифов
func (s *AuthService) ListPlans() []entity.Plan {
	return entity.Plans()
}

// normalizeEmail приводит email к стандартному виду: trim пробелов + lowercase
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isValidEmail принимает только голый адрес без отображаемого имени
func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

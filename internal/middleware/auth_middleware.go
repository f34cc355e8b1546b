package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
	"github.com/yourusername/quizmaster-api/pkg/auth"
)

// Ключи контекста Gin, которые заполняет RequireAuth
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextPlan   = "plan"
	ContextClaims = "claims"
)

// AccessTokenCookie - имя cookie с токеном доступа
const AccessTokenCookie = "access_token"

// TokenParser проверяет токен доступа (реализуется auth.JWTService)
type TokenParser interface {
	ParseToken(ctx context.Context, tokenString string) (*auth.JWTCustomClaims, error)
}

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	tokens TokenParser
}

// NewAuthMiddleware создает новый middleware аутентификации
func NewAuthMiddleware(tokens TokenParser) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth проверяет, аутентифицирован ли пользователь.
// Токен берется из cookie access_token, иначе из заголовка Authorization: Bearer.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, errorType := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": errorType})
			return
		}

		claims, err := m.tokens.ParseToken(c.Request.Context(), token)
		if err != nil {
			// Недоступный черный список не должен пропускать отозванные токены
			if errors.Is(err, apperrors.ErrDependency) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Authentication temporarily unavailable", "error_type": "dependency_failure"})
				return
			}
			errorType := "token_invalid"
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				errorType = "token_expired"
			case errors.Is(err, auth.ErrTokenRevoked):
				errorType = "token_revoked"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": errorType})
			return
		}

		// Устанавливаем данные пользователя в контекст
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextPlan, claims.Plan)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

// extractToken возвращает токен и тип ошибки, если токена нет
func extractToken(c *gin.Context) (string, string) {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie, ""
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "token_missing"
	}
	// Проверяем формат заголовка Bearer {token}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", "token_format"
	}
	return parts[1], ""
}

// UserIDFromContext возвращает ID пользователя, установленный RequireAuth.
// Пустая строка означает, что личность не установлена.
func UserIDFromContext(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// ClaimsFromContext возвращает claims текущего токена
func ClaimsFromContext(c *gin.Context) *auth.JWTCustomClaims {
	value, ok := c.Get(ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := value.(*auth.JWTCustomClaims)
	return claims
}

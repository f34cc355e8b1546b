package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

// Ошибки проверки токена. Все они оборачивают apperrors.ErrUnauthorized.
var (
	ErrTokenMalformed = fmt.Errorf("%w: token is malformed", apperrors.ErrUnauthorized)
	ErrTokenExpired   = fmt.Errorf("%w: token is expired", apperrors.ErrUnauthorized)
	ErrTokenInvalid   = fmt.Errorf("%w: token is invalid", apperrors.ErrUnauthorized)
	ErrTokenRevoked   = fmt.Errorf("%w: token has been revoked", apperrors.ErrUnauthorized)
)

// revokedTokenPrefix - префикс ключей черного списка в Redis
const revokedTokenPrefix = "auth:revoked:"

// JWTCustomClaims содержит пользовательские поля для токена
type JWTCustomClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Plan   string `json:"plan"`
	jwt.RegisteredClaims
}

// JWTService выпускает и проверяет HS256-токены доступа.
// Отозванные токены (logout) хранятся в кеше по jti до истечения их срока.
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	denylist   repository.CacheRepository
	now        func() time.Time
}

// NewJWTService создает новый сервис JWT. denylist может быть nil: тогда logout
// не отзывает токен, а только удаляет cookie на клиенте.
func NewJWTService(secret string, expiration time.Duration, issuer string, denylist repository.CacheRepository) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required for JWTService")
	}
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	if issuer == "" {
		issuer = "quizmaster-api"
	}
	return &JWTService{
		secret:     []byte(secret),
		expiration: expiration,
		issuer:     issuer,
		denylist:   denylist,
		now:        time.Now,
	}, nil
}

// GenerateToken создает токен доступа для пользователя
func (s *JWTService) GenerateToken(user *entity.User) (string, *JWTCustomClaims, error) {
	if user == nil || user.ID == "" {
		return "", nil, errors.New("user with ID is required for token generation")
	}

	now := s.now()
	claims := &JWTCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Plan:   string(user.Plan),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		log.Printf("[JWT] Ошибка генерации токена для пользователя ID=%s: %v", user.ID, err)
		return "", nil, err
	}
	return tokenString, claims, nil
}

// ParseToken проверяет подпись, срок действия, издателя и отзыв токена
func (s *JWTService) ParseToken(ctx context.Context, tokenString string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) {
			switch {
			case ve.Errors&jwt.ValidationErrorMalformed != 0:
				return nil, ErrTokenMalformed
			case ve.Errors&jwt.ValidationErrorExpired != 0:
				return nil, ErrTokenExpired
			}
		}
		log.Printf("[JWT] Ошибка при разборе токена: %v", err)
		return nil, ErrTokenInvalid
	}
	if !token.Valid || claims.UserID == "" || !claims.VerifyIssuer(s.issuer, true) {
		return nil, ErrTokenInvalid
	}

	revoked, err := s.isRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperrors.Dependency("check token revocation", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// RevokeToken помещает jti токена в черный список до истечения срока его действия
func (s *JWTService) RevokeToken(ctx context.Context, claims *JWTCustomClaims) error {
	if claims == nil || claims.ID == "" {
		return ErrTokenInvalid
	}
	if s.denylist == nil {
		log.Printf("[JWT] Черный список не настроен, токен пользователя ID=%s не отозван", claims.UserID)
		return nil
	}

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Time.Sub(s.now()); remaining > 0 {
			ttl = remaining
		}
	}
	if _, err := s.denylist.SetNX(ctx, revokedTokenPrefix+claims.ID, claims.UserID, ttl); err != nil {
		return apperrors.Dependency("revoke token", err)
	}
	log.Printf("[JWT] Токен jti=%s пользователя ID=%s отозван", claims.ID, claims.UserID)
	return nil
}

// Expiration возвращает время жизни выпускаемых токенов
func (s *JWTService) Expiration() time.Duration {
	return s.expiration
}

func (s *JWTService) isRevoked(ctx context.Context, jti string) (bool, error) {
	if s.denylist == nil || jti == "" {
		return false, nil
	}
	return s.denylist.Exists(ctx, revokedTokenPrefix+jti)
}

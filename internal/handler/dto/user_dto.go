package dto

import (
	"time"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// UserResponse - публичный профиль организатора
type UserResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Plan      entity.PlanType `json:"plan"`
	CreatedAt time.Time       `json:"created_at"`
}

// LoginResponse - ответ на успешный вход
type LoginResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresAt   time.Time    `json:"expiresAt"`
}

// NewUserResponse создает DTO пользователя без чувствительных полей
func NewUserResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Plan:      user.Plan,
		CreatedAt: user.CreatedAt,
	}
}

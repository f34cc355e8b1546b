package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/internal/handler/dto"
	"github.com/yourusername/quizmaster-api/internal/middleware"
	"github.com/yourusername/quizmaster-api/internal/service"
)

// AuthHandler обрабатывает регистрацию, вход и выход организаторов
type AuthHandler struct {
	authService  *service.AuthService
	cookieSecure bool
}

// NewAuthHandler создает новый обработчик аутентификации.
// cookieSecure включает флаг Secure у cookie токена (production за HTTPS).
func NewAuthHandler(authService *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{authService: authService, cookieSecure: cookieSecure}
}

// RegisterRequest представляет запрос на регистрацию
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest представляет запрос на вход
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register обрабатывает запрос на регистрацию
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, "AuthHandler", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": dto.NewUserResponse(user)})
}

// Login обрабатывает запрос на вход и устанавливает cookie с токеном
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, "AuthHandler", err)
		return
	}

	h.setAccessTokenCookie(c, result.Token, time.Until(result.ExpiresAt))
	log.Printf("[AuthHandler] Пользователь ID=%s вошел в систему", result.User.ID)

	c.JSON(http.StatusOK, dto.LoginResponse{
		User:        dto.NewUserResponse(result.User),
		AccessToken: result.Token,
		TokenType:   "Bearer",
		ExpiresAt:   result.ExpiresAt,
	})
}

// Logout отзывает текущий токен и удаляет cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.ClaimsFromContext(c)); err != nil {
		handleError(c, "AuthHandler", err)
		return
	}

	h.setAccessTokenCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// ListPlans возвращает каталог тарифов
func (h *AuthHandler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"plans": h.authService.ListPlans()})
}

// setAccessTokenCookie устанавливает HttpOnly cookie с токеном; ttl < 0 удаляет cookie
func (h *AuthHandler) setAccessTokenCookie(c *gin.Context, token string, ttl time.Duration) {
	maxAge := int(ttl.Seconds())
	if ttl < 0 {
		maxAge = -1
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

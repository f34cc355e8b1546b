package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
	"github.com/yourusername/quizmaster-api/pkg/auth"
)

func createTestAuthService(t *testing.T, userRepo *MockUserRepository, tokens *MockTokenIssuer) *AuthService {
	t.Helper()
	svc, err := NewAuthService(userRepo, tokens)
	require.NoError(t, err)
	return svc
}

func hashedUser(t *testing.T, id, email, password string) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &entity.User{ID: id, Name: "Ada", Email: email, Password: string(hash), Plan: entity.PlanFree}
}

func TestNewAuthService_RequiresDependencies(t *testing.T) {
	_, err := NewAuthService(nil, new(MockTokenIssuer))
	assert.Error(t, err)

	_, err = NewAuthService(new(MockUserRepository), nil)
	assert.Error(t, err)
}

// ============================================================================
// Register
// ============================================================================

func TestAuthService_Register_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)
	authService := createTestAuthService(t, mockUserRepo, new(MockTokenIssuer))

	// Act
	user, err := authService.Register(context.Background(), RegisterInput{
		Name:     "  Ada ",
		Email:    "  Ada@Example.COM ",
		Password: "s3cretpw",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email, "Email должен быть нормализован")
	assert.Equal(t, entity.PlanFree, user.Plan)
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Register_Validation(t *testing.T) {
	testCases := []struct {
		name  string
		input RegisterInput
	}{
		{name: "missing name", input: RegisterInput{Email: "a@b.io", Password: "secret1"}},
		{name: "missing email", input: RegisterInput{Name: "Ada", Password: "secret1"}},
		{name: "missing password", input: RegisterInput{Name: "Ada", Email: "a@b.io"}},
		{name: "malformed email", input: RegisterInput{Name: "Ada", Email: "not-an-email", Password: "secret1"}},
		{name: "display name in email", input: RegisterInput{Name: "Ada", Email: "Ada <a@b.io>", Password: "secret1"}},
		{name: "short password", input: RegisterInput{Name: "Ada", Email: "a@b.io", Password: "12345"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockUserRepo := new(MockUserRepository)
			authService := createTestAuthService(t, mockUserRepo, new(MockTokenIssuer))

			// Act
			user, err := authService.Register(context.Background(), tc.input)

			// Assert
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Nil(t, user)
			mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", mock.Anything, "ada@example.com").Return(&entity.User{ID: "existing"}, nil)
	authService := createTestAuthService(t, mockUserRepo, new(MockTokenIssuer))

	// Act
	user, err := authService.Register(context.Background(), RegisterInput{Name: "Ada", Email: "ADA@example.com", Password: "secret1"})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Nil(t, user)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_RaceOnUniqueIndex(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", mock.Anything, "ada@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.Anything).Return(apperrors.ErrConflict)
	authService := createTestAuthService(t, mockUserRepo, new(MockTokenIssuer))

	// Act
	_, err := authService.Register(context.Background(), RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAuthService_Register_StorageDown(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", mock.Anything, mock.Anything).
		Return(nil, apperrors.Dependency("get user by email", errors.New("dial tcp: refused")))
	authService := createTestAuthService(t, mockUserRepo, new(MockTokenIssuer))

	// Act
	_, err := authService.Register(context.Background(), RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrDependency)
}

// ============================================================================
// Login / Logout / Me
// ============================================================================

func TestAuthService_Login_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockTokens := new(MockTokenIssuer)
	user := hashedUser(t, "user-1", "ada@example.com", "secret1")
	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)
	claims := &auth.JWTCustomClaims{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expiresAt)},
	}
	mockUserRepo.On("GetByEmail", mock.Anything, "ada@example.com").Return(user, nil)
	mockTokens.On("GenerateToken", user).Return("signed-token", claims, nil)
	authService := createTestAuthService(t, mockUserRepo, mockTokens)

	// Act
	result, err := authService.Login(context.Background(), " ADA@example.com", "secret1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "signed-token", result.Token)
	assert.True(t, expiresAt.Equal(result.ExpiresAt))
	assert.Equal(t, "user-1", result.User.ID)
	mockTokens.AssertExpectations(t)
}

func TestAuthService_Login_FailuresIndistinguishable(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockTokens := new(MockTokenIssuer)
	mockUserRepo.On("GetByEmail", mock.Anything, "ada@example.com").Return(hashedUser(t, "user-1", "ada@example.com", "secret1"), nil)
	mockUserRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("GetByEmail", mock.Anything, "oauth@example.com").Return(&entity.User{ID: "user-2", Email: "oauth@example.com"}, nil)
	authService := createTestAuthService(t, mockUserRepo, mockTokens)
	ctx := context.Background()

	// Act
	_, wrongPassword := authService.Login(ctx, "ada@example.com", "wrong-password")
	_, unknownEmail := authService.Login(ctx, "ghost@example.com", "secret1")
	_, noPassword := authService.Login(ctx, "oauth@example.com", "anything")
	_, empty := authService.Login(ctx, "", "")

	// Assert
	for _, err := range []error{wrongPassword, unknownEmail, noPassword, empty} {
		assert.Equal(t, apperrors.ErrUnauthorized, err)
	}
	mockTokens.AssertNotCalled(t, "GenerateToken", mock.Anything)
}

func TestAuthService_Logout(t *testing.T) {
	// Arrange
	mockTokens := new(MockTokenIssuer)
	claims := &auth.JWTCustomClaims{UserID: "user-1", RegisteredClaims: jwt.RegisteredClaims{ID: "jti-1"}}
	mockTokens.On("RevokeToken", mock.Anything, claims).Return(nil)
	authService := createTestAuthService(t, new(MockUserRepository), mockTokens)

	// Act
	err := authService.Logout(context.Background(), claims)
	nilErr := authService.Logout(context.Background(), nil)

	// Assert
	require.NoError(t, err)
	assert.ErrorIs(t, nilErr, apperrors.ErrUnauthorized)
	mockTokens.AssertExpectations(t)
}

func TestAuthService_Me(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByID", mock.Anything, "user-1").Return(&entity.User{ID: "user-1", Email: "ada@example.com"}, nil)
	mockUserRepo.On("GetByID", mock.Anything, "deleted").Return(nil, apperrors.ErrNotFound)
	authService := createTestAuthService(t, mockUserRepo, new(MockTokenIssuer))

	// Act
	user, err := authService.Me(context.Background(), "user-1")
	_, goneErr := authService.Me(context.Background(), "deleted")
	_, anonErr := authService.Me(context.Background(), "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.ErrorIs(t, goneErr, apperrors.ErrUnauthorized, "Токен удаленного пользователя недействителен")
	assert.ErrorIs(t, anonErr, apperrors.ErrUnauthorized)
}

func TestAuthService_ListPlans(t *testing.T) {
	authService := createTestAuthService(t, new(MockUserRepository), new(MockTokenIssuer))

	plans := authService.ListPlans()

	require.Len(t, plans, 3)
	assert.Equal(t, entity.PlanFree, plans[0].Type)
	assert.Equal(t, entity.PlanEnterprise, plans[2].Type)
}

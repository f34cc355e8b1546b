package entity

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// hashOf возвращает bcrypt-хеш пароля с минимальной стоимостью, чтобы тесты не тормозили
func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// withPrefix подменяет версию bcrypt-хеша ("$2a$" -> "$2b$" и т.п.)
func withPrefix(hash, prefix string) string {
	return prefix + strings.TrimPrefix(hash, "$2a$")
}

func TestUser_BeforeSave(t *testing.T) {
	existing := hashOf(t, "alreadyHashed")

	tests := []struct {
		name      string
		password  string
		wantSame  bool
		wantPlain string // пароль, который должен подходить к итоговому хешу
	}{
		{name: "открытый пароль хешируется", password: "mySecretPassword123", wantPlain: "mySecretPassword123"},
		{name: "хеш $2a$ не хешируется повторно", password: existing, wantSame: true, wantPlain: "alreadyHashed"},
		{name: "хеш $2b$ не хешируется повторно", password: withPrefix(existing, "$2b$"), wantSame: true},
		{name: "хеш $2y$ не хешируется повторно", password: withPrefix(existing, "$2y$"), wantSame: true},
		{name: "пустой пароль внешней аутентификации", password: "", wantSame: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{Email: "host@example.com", Password: tt.password}

			err := user.BeforeSave(nil)

			require.NoError(t, err)
			if tt.wantSame {
				assert.Equal(t, tt.password, user.Password)
			} else {
				assert.NotEqual(t, tt.password, user.Password)
				assert.True(t, IsPasswordHash(user.Password))
			}
			if tt.wantPlain != "" {
				assert.True(t, user.CheckPassword(tt.wantPlain))
			}
		})
	}
}

func TestUser_BeforeSave_Idempotent(t *testing.T) {
	user := &User{Email: "host@example.com", Password: "password123"}

	require.NoError(t, user.BeforeSave(nil))
	first := user.Password
	require.NoError(t, user.BeforeSave(nil))

	assert.Equal(t, first, user.Password, "Повторное сохранение не меняет хеш")
}

func TestUser_CheckPassword(t *testing.T) {
	stored := hashOf(t, "correctPassword123")

	tests := []struct {
		name     string
		hash     string
		password string
		want     bool
	}{
		{name: "верный пароль", hash: stored, password: "correctPassword123", want: true},
		{name: "неверный пароль", hash: stored, password: "wrongPassword456"},
		{name: "пустой пароль", hash: stored, password: ""},
		{name: "внешняя аутентификация и пустой пароль", hash: "", password: ""},
		{name: "внешняя аутентификация и любой пароль", hash: "", password: "anything"},
		{name: "открытый текст вместо хеша", hash: "correctPassword123", password: "correctPassword123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{Email: "host@example.com", Password: tt.hash}
			assert.Equal(t, tt.want, user.CheckPassword(tt.password))
		})
	}
}

func TestIsPasswordHash(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"$2a$10$abcdefghijklmnopqrstuv", true},
		{"$2b$10$abcdefghijklmnopqrstuv", true},
		{"$2y$10$abcdefghijklmnopqrstuv", true},
		{"$2x$10$abcdefghijklmnopqrstuv", false},
		{"$argon2id$v=19$m=65536", false},
		{"password123", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPasswordHash(tt.value))
		})
	}
}

func TestUser_BeforeCreate_AssignsIDAndPlan(t *testing.T) {
	user := &User{Email: "new@example.com"}

	require.NoError(t, user.BeforeCreate(nil))

	_, err := uuid.Parse(user.ID)
	assert.NoError(t, err, "ID должен быть валидным UUID")
	assert.Equal(t, PlanFree, user.Plan, "Тариф по умолчанию - FREE")
}

func TestUser_BeforeCreate_KeepsExplicitValues(t *testing.T) {
	user := &User{ID: "11111111-1111-1111-1111-111111111111", Plan: PlanPro}

	require.NoError(t, user.BeforeCreate(nil))

	assert.Equal(t, "11111111-1111-1111-1111-111111111111", user.ID)
	assert.Equal(t, PlanPro, user.Plan)
}

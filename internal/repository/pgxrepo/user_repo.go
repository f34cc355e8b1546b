package pgxrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
	"github.com/yourusername/quizmaster-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizmaster-api/internal/pkg/errors"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, name, email, password, plan, created_at, updated_at`

// UserRepo реализует repository.UserRepository на pgx
type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{db: db}
}

// Create вставляет пользователя. Хуки GORM здесь не работают,
// поэтому ID, тариф, временные метки и хеш пароля заполняются явно.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Plan == "" {
		user.Plan = entity.PlanFree
	}
	if user.Password != "" && !entity.IsPasswordHash(user.Password) {
		hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user.Password = string(hash)
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	query := `INSERT INTO users (` + userColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.Password, string(user.Plan), user.CreatedAt, user.UpdatedAt,
	)
	return mapError("create user", err, apperrors.ErrNotFound)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, "get user by id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, "get user by email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepo) getOne(ctx context.Context, op, query string, arg string) (*entity.User, error) {
	var (
		user entity.User
		plan string
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &plan, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(op, err, apperrors.ErrNotFound)
	}
	user.Plan = entity.PlanType(plan)
	return &user, nil
}

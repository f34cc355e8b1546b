package pgxrepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yourusername/quizmaster-api/internal/domain/repository"
)

// querier - общее подмножество pgxpool.Pool и pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ querier          = (*pgxpool.Pool)(nil)
	_ querier          = (pgx.Tx)(nil)
	_ repository.Store = (*Store)(nil)
)

// Store собирает репозитории на чистом SQL поверх pgxpool
type Store struct {
	pool      *pgxpool.Pool
	users     *UserRepo
	quizzes   *QuizRepo
	questions *QuestionRepo
}

// NewStore создает набор репозиториев для пула
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:      pool,
		users:     NewUserRepo(pool),
		quizzes:   NewQuizRepo(pool),
		questions: NewQuestionRepo(pool),
	}
}

func (s *Store) Users() repository.UserRepository         { return s.users }
func (s *Store) Quizzes() repository.QuizRepository       { return s.quizzes }
func (s *Store) Questions() repository.QuestionRepository { return s.questions }

// Close закрывает пул соединений
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

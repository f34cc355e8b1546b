package gormrepo

import (
	"gorm.io/gorm"

	"github.com/yourusername/quizmaster-api/internal/domain/repository"
)

var _ repository.Store = (*Store)(nil)

// Store собирает GORM-репозитории поверх одного *gorm.DB.
// Один и тот же код обслуживает и PostgreSQL, и SQLite.
type Store struct {
	db        *gorm.DB
	users     *UserRepo
	quizzes   *QuizRepo
	questions *QuestionRepo
}

// NewStore создает набор репозиториев для переданного подключения
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		users:     NewUserRepo(db),
		quizzes:   NewQuizRepo(db),
		questions: NewQuestionRepo(db),
	}
}

func (s *Store) Users() repository.UserRepository         { return s.users }
func (s *Store) Quizzes() repository.QuizRepository       { return s.quizzes }
func (s *Store) Questions() repository.QuestionRepository { return s.questions }

// Close закрывает пул соединений, лежащий под *gorm.DB
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

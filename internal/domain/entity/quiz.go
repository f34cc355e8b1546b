package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxQuizTitleLength - максимальная длина названия викторины в рунах
const MaxQuizTitleLength = 200

// Статусы публикации викторины (для фильтров и DTO)
const (
	QuizStatusDraft = "draft"
	QuizStatusLive  = "live"
)

// Quiz представляет викторину, принадлежащую одному автору
type Quiz struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text;not null;default:''" json:"description"`
	Published   bool       `gorm:"not null;default:false" json:"published"`
	AuthorID    string     `gorm:"type:uuid;not null;index:idx_quizzes_author_created,priority:1" json:"author_id"`
	Questions   []Question `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt   time.Time  `gorm:"index:idx_quizzes_author_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// QuestionCount заполняется подзапросом COUNT при чтении, в таблице не хранится
	QuestionCount int64 `gorm:"->;-:migration" json:"question_count"`
}

// TableName определяет имя таблицы для GORM
func (Quiz) TableName() string {
	return "quizzes"
}

// BeforeCreate назначает UUID, если он не задан вызывающим
func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// Status возвращает статус публикации викторины
func (q *Quiz) Status() string {
	if q.Published {
		return QuizStatusLive
	}
	return QuizStatusDraft
}

// IsOwnedBy проверяет, является ли пользователь автором викторины
func (q *Quiz) IsOwnedBy(userID string) bool {
	return userID != "" && q.AuthorID == userID
}

// NormalizeQuizTitle обрезает пробелы и сообщает, допустимо ли название
func NormalizeQuizTitle(title string) (string, bool) {
	title = strings.TrimSpace(title)
	if title == "" || len([]rune(title)) > MaxQuizTitleLength {
		return title, false
	}
	return title, true
}

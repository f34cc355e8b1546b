package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Тексты вариантов-заглушек, которые получает каждый новый вопрос
const (
	DefaultCorrectChoiceText   = "Option 1"
	DefaultIncorrectChoiceText = "Option 2"
)

// Question представляет вопрос в викторине
type Question struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID    string    `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Choices   []Choice  `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"choices,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// BeforeCreate назначает UUID, если он не задан вызывающим
func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// Choice - вариант ответа на вопрос
type Choice struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID string `gorm:"type:uuid;not null;index" json:"question_id"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"not null;default:false" json:"is_correct"`
	Position   int    `gorm:"not null;default:0" json:"position"`
}

// TableName определяет имя таблицы для GORM
func (Choice) TableName() string {
	return "choices"
}

// BeforeCreate назначает UUID, если он не задан вызывающим
func (c *Choice) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// NewQuestionWithDefaults собирает новый вопрос с двумя вариантами-заглушками:
// первый правильный, второй нет. ID назначаются сразу, чтобы адаптеры без хуков GORM
// (pgx) вставляли те же строки.
func NewQuestionWithDefaults(quizID, text string, now time.Time) *Question {
	questionID := uuid.NewString()
	return &Question{
		ID:        questionID,
		QuizID:    quizID,
		Text:      strings.TrimSpace(text),
		CreatedAt: now,
		Choices: []Choice{
			{ID: uuid.NewString(), QuestionID: questionID, Text: DefaultCorrectChoiceText, IsCorrect: true, Position: 0},
			{ID: uuid.NewString(), QuestionID: questionID, Text: DefaultIncorrectChoiceText, IsCorrect: false, Position: 1},
		},
	}
}

package helper

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizmaster-api/internal/domain/entity"
)

// ChoiceOption представляет вариант ответа для фронтенда
type ChoiceOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
	Position  int    `json:"position"`
}

// ConvertChoicesToOptions преобразует варианты вопроса в объекты для ответа
func ConvertChoicesToOptions(choices []entity.Choice) []ChoiceOption {
	converted := make([]ChoiceOption, len(choices))
	for i, choice := range choices {
		converted[i] = ChoiceOption{
			ID:        choice.ID,
			Text:      choice.Text,
			IsCorrect: choice.IsCorrect,
			Position:  choice.Position,
		}
	}
	return converted
}

// QueryInt читает целочисленный query-параметр; нечисловое значение дает defaultValue
func QueryInt(c *gin.Context, key string, defaultValue int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}

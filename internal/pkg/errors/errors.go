package errors

import (
	"errors"
	"fmt"
)

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrNotFoundOrForbidden объединяет "нет такой записи" и "запись чужая",
	// чтобы не раскрывать существование викторин других пользователей.
	// errors.Is(ErrNotFoundOrForbidden, ErrNotFound) == true
	ErrNotFoundOrForbidden = fmt.Errorf("%w or not owned by caller", ErrNotFound)

	// ErrUnauthorized используется, когда личность вызывающего не установлена.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для нарушения уникальности (например, email уже занят).
	ErrConflict = errors.New("resource state conflict")

	// ErrDependency используется, когда хранилище или провайдер идентичности недоступны.
	// Повтор запроса - ответственность вызывающего.
	ErrDependency = errors.New("dependency failure")
)

// Dependency оборачивает ошибку драйвера в ErrDependency, сохраняя исходную ошибку в цепочке.
func Dependency(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrDependency, err)
}

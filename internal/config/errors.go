package config

import (
	"errors"
	"fmt"
)

// Ошибки конфигурации.
var (
	// ErrMissingDefault — в runtime нет записи __default__.
	ErrMissingDefault = errors.New("runtime has no __default__ entry")

	// ErrUnknownBot — для бота нет записи в pipeline.
	ErrUnknownBot = errors.New("bot is not configured")

	// ErrMissingSource — у бота не задана source-queue.
	ErrMissingSource = errors.New("source-queue is not set")

	// ErrMissingParam — обязательный параметр не задан.
	ErrMissingParam = errors.New("required parameter is not set")

	// ErrInvalidParam — параметр имеет неверный тип или значение.
	ErrInvalidParam = errors.New("invalid parameter")
)

// ValidationError — ошибка валидации конфигурации бота.
type ValidationError struct {
	BotID string
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.BotID == "" {
		return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config: bot %s: %s: %v", e.BotID, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

package bot

import (
	"errors"
	"fmt"
)

// Ошибки бота.
var (
	// ErrInvalidConfig — конфигурация бота некорректна.
	ErrInvalidConfig = errors.New("invalid bot configuration")

	// ErrMissingPipeline — не задан source или destination pipeline.
	ErrMissingPipeline = errors.New("pipeline is not set")

	// ErrNoProcessor — бот создан без Processor.
	ErrNoProcessor = errors.New("processor is not set")

	// ErrProcessingStopped — обработка остановлена по error_procedure=stop.
	ErrProcessingStopped = errors.New("processing stopped after error")

	// ErrNotReceived — Acknowledge без полученного сообщения.
	ErrNotReceived = errors.New("no message received")
)

// StartError — бот не смог стартовать или аварийно остановился.
//
// В отличие от ошибок обработки, которые логируются и не прерывают работу,
// StartError всегда возвращается из Start.
type StartError struct {
	BotID string
	Err   error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("bot %s: %v", e.BotID, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// PipelineError — ошибка транспорта при Receive/Send/Acknowledge.
type PipelineError struct {
	Op  string
	Err error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline %s: %v", e.Op, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

package pipeline

import (
	"context"
	"fmt"
)

// Role — роль, под которой pipeline регистрирует очереди.
type Role string

// Роли очередей.
const (
	RoleSource      Role = "source"
	RoleDestination Role = "destination"
)

// Суффиксы имён очередей.
const (
	SuffixInput    = "-input"
	SuffixInternal = "-internal"
	SuffixOutput   = "-output"
)

// Pipeline — транспорт бота.
//
// Один и тот же экземпляр может быть привязан и как source, и как
// destination (так устроены тесты: бот пишет туда же, откуда читает).
type Pipeline interface {
	// SetQueues регистрирует очереди под ролью. Содержимое не создаётся.
	SetQueues(ctx context.Context, role Role, names ...string) error

	// Send кладёт сообщение в хвост каждой destination-очереди.
	Send(ctx context.Context, msg []byte) error

	// Receive возвращает голову source-очереди.
	// Сообщение остаётся "в полёте" до Acknowledge.
	Receive(ctx context.Context) ([]byte, error)

	// Acknowledge подтверждает последнее полученное сообщение.
	Acknowledge(ctx context.Context) error

	// Clear очищает очередь.
	Clear(ctx context.Context, queue string) error

	// Count возвращает количество сообщений в очереди.
	Count(ctx context.Context, queue string) (int, error)

	// Close освобождает ресурсы pipeline.
	Close() error
}

// Names — конвенциональные имена очередей бота.
type Names struct {
	Input    string
	Internal string
	Output   string
}

// QueueNames выводит имена очередей из идентификатора бота.
func QueueNames(botID string) Names {
	input := botID + SuffixInput
	return Names{
		Input:    input,
		Internal: InternalQueue(input),
		Output:   botID + SuffixOutput,
	}
}

// List возвращает имена в фиксированном порядке: input, internal, output.
func (n Names) List() []string {
	return []string{n.Input, n.Internal, n.Output}
}

// InternalQueue возвращает имя очереди "в полёте" для source-очереди.
func InternalQueue(source string) string {
	return source + SuffixInternal
}

// ValidateQueues проверяет имена очередей для роли.
func ValidateQueues(role Role, names []string) error {
	switch role {
	case RoleSource:
		if len(names) != 1 {
			return fmt.Errorf("%w: got %d", ErrSingleSource, len(names))
		}
	case RoleDestination:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	for _, name := range names {
		if name == "" {
			return ErrEmptyQueueName
		}
	}

	return nil
}

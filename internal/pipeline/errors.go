package pipeline

import "errors"

// Ошибки pipeline.
var (
	// ErrEmptyQueue — в очереди нет сообщений.
	// Для one-shot запуска это штатный сигнал завершения, а не ошибка.
	ErrEmptyQueue = errors.New("queue is empty")

	// ErrSourceNotSet — Receive/Acknowledge без зарегистрированной source-очереди.
	ErrSourceNotSet = errors.New("source queue is not set")

	// ErrNoDestinations — Send без зарегистрированных destination-очередей.
	ErrNoDestinations = errors.New("no destination queues")

	// ErrSingleSource — у бота ровно одна source-очередь.
	ErrSingleSource = errors.New("exactly one source queue is required")

	// ErrUnknownRole — роль не source и не destination.
	ErrUnknownRole = errors.New("unknown queue role")

	// ErrEmptyQueueName — пустое имя очереди.
	ErrEmptyQueueName = errors.New("empty queue name")
)

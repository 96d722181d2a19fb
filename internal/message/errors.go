package message

import "errors"

// Ошибки сообщений.
var (
	// ErrKeyExists — ключ уже есть в сообщении.
	ErrKeyExists = errors.New("key already exists")

	// ErrMissingType — в сериализованном сообщении нет __type.
	ErrMissingType = errors.New("message has no __type")

	// ErrUnknownType — __type не Report и не Event.
	ErrUnknownType = errors.New("unknown message type")

	// ErrNoRaw — в сообщении нет поля raw.
	ErrNoRaw = errors.New("message has no raw data")
)

package mq

import "errors"

// Ошибки mq.
var (
	// ErrNoChannel — канал не открыт (соединение закрыто или переподключается).
	ErrNoChannel = errors.New("no channel available")

	// ErrClosed — pipeline или соединение закрыты.
	ErrClosed = errors.New("pipeline is closed")
)

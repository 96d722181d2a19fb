// Package pipeline описывает транспорт между ботами.
//
// Боты общаются только через именованные очереди. Pipeline — контракт,
// через который бот читает из своей source-очереди и пишет в
// destination-очереди. Реализации:
//   - Memory — in-memory очереди для тестов и dry-run (этот пакет)
//   - mq.Pipeline — очереди RabbitMQ для production
//
// # Имена очередей
//
// Для бота с идентификатором X имена фиксированы:
//
//	X-input           — входная очередь (source)
//	X-input-internal  — сообщение, полученное, но ещё не подтверждённое
//	X-output          — выходная очередь (destination)
//
// Суффиксы нельзя менять: по ним тесты находят очереди.
//
// # Receive / Acknowledge
//
// Receive забирает голову source-очереди и держит её "в полёте" до
// Acknowledge. Повторный Receive без Acknowledge возвращает то же сообщение
// (так бот повторяет обработку после ошибки).
//
// Пустая source-очередь в Memory — это ErrEmptyQueue, а не ожидание.
package pipeline

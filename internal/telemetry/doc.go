// Package telemetry обеспечивает наблюдаемость ботов.
//
// Включает:
//   - logging.go — настройка slog для бинарников (LOG_LEVEL, LOG_FORMAT)
//   - handler.go — построчный формат логов бота
//   - parse.go   — разбор строк лога обратно в поля
//
// Логгер бота — явный экземпляр, привязанный к идентификатору бота.
// Глобального реестра логгеров по имени нет: тесты создают свой логгер
// на каждый запуск и не делят вывод между собой.
package telemetry

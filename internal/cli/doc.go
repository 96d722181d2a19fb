// Package cli реализует команды botline.
//
// # Команды
//
//   - run BOT_ID — один проход бота на in-memory pipeline: вход берётся из
//     файла, результат (destination-очереди) печатается в stdout.
//   - serve BOT_ID — долгоживущий бот на RabbitMQ с /metrics и /healthz.
//   - modules — встроенные модули ботов.
//
// # Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, логи ботов и сообщения — в stderr.
// Это позволяет использовать pipe: botline run parser --json | jq .
package cli

// Package bot — фреймворк ботов, обрабатывающих сообщения из очередей.
//
// # Обзор
//
// Бот — процесс с одной source-очередью и одной или несколькими
// destination-очередями. Бизнес-логика (коллектор, парсер, эксперт,
// output) реализует Processor; фреймворк отвечает за:
//
//   - Валидацию конфигурации (runtime с __default__, pipeline бота)
//   - Привязку очередей к pipeline
//   - Цикл Receive → Process → Send → Acknowledge
//   - Повторы при ошибках (error_max_retries, error_retry_delay)
//   - Логи и метрики
//
// # Запуск
//
//	b, err := bot.New("imap-collector", bot.Config{
//	    Runtime:  runtime,
//	    Pipeline: queues,
//	    Logger:   logger,
//	}, processor)
//	if err != nil {
//	    return err
//	}
//
//	err = b.Start(ctx, bot.StartOptions{
//	    SourcePipeline:      pipe,
//	    DestinationPipeline: pipe,
//	    OneShot:             true,
//	})
//
// Первая строка лога любого запуска — "Bot is starting" на уровне INFO.
//
// # OneShot
//
// В OneShot режиме бот обрабатывает source-очередь, пока она не опустеет
// (pipeline.ErrEmptyQueue), и останавливается. Так работают тесты и
// dry-run. Вне OneShot пустая очередь означает паузу retry_delay.
//
// # Ошибки
//
// Пакет различает три вида ошибок Processor:
//   - pipeline.ErrEmptyQueue — входа больше нет, штатное завершение
//   - *PipelineError — сбой транспорта; при ErrorOnPipeline=true бот
//     останавливается с ошибкой, иначе пишет ERROR "Pipeline failed."
//   - остальные — ошибки обработки; логируются как ERROR
//     "Bot has found a problem." и повторяются до error_max_retries
//
// *StartError из Start означает, что бот не стартовал или упал:
// ошибка конфигурации, Init, error_procedure=stop.
package bot

// Package harness запускает одного бота на in-memory pipeline для тестов.
//
// Driver собирает конфигурацию, создаёт pipeline, кладёт входные сообщения
// в source-очередь, выполняет ровно один OneShot проход бота и фиксирует
// выходную очередь и лог. Проверки (AssertLogLine, AssertMessageSubset и
// т.д.) читают только зафиксированное состояние.
//
//	func TestTextCollector(t *testing.T) {
//	    d := harness.NewDriver(t, harness.Suite{
//	        BotID:     "imap-collector",
//	        New:       func() bot.Processor { return text.New() },
//	        Sysconfig: config.Params{"name": "IMAP Feed"},
//	        Input:     harness.Raw("bar text"),
//	    })
//	    d.Reset()
//	    d.MustRun()
//	    d.AssertMessageSubset(0, map[string]any{"feed.name": "IMAP Feed"})
//	}
//
// Каждый Reset создаёт новый pipeline, новый логгер и новый буфер лога:
// состояние между запусками не переносится.
package harness

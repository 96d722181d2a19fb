package harness

import "testing"

// RunStandardTests выполняет проверки, которые должен проходить любой бот:
// старт, первая строка лога, отсутствие ERROR и CRITICAL, имена очередей.
func RunStandardTests(t *testing.T, s Suite) {
	t.Helper()

	t.Run("bot_start", func(t *testing.T) {
		d := NewDriver(t, s)
		d.Reset()
		d.MustRun()
	})

	t.Run("log_starting", func(t *testing.T) {
		d := NewDriver(t, s)
		d.Reset()
		d.MustRun()
		d.AssertLogLine(0, "Bot is starting", "INFO")
	})

	t.Run("log_not_error", func(t *testing.T) {
		d := NewDriver(t, s)
		d.Reset()
		d.MustRun()
		d.AssertLogNotMatches("ERROR")
	})

	t.Run("log_not_critical", func(t *testing.T) {
		d := NewDriver(t, s)
		d.Reset()
		d.MustRun()
		d.AssertLogNotMatches("CRITICAL")
	})

	t.Run("pipe_names", func(t *testing.T) {
		d := NewDriver(t, s)
		d.Reset()
		d.MustRun()
		d.AssertQueueNames()
	})
}

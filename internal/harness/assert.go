package harness

import (
	"encoding/json"
	"regexp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/botline/internal/message"
	"github.com/shaiso/botline/internal/telemetry"
)

// AssertLogLine проверяет строку лога с номером lineNo (с нуля):
// имя логгера — BotID, уровень и текст сообщения совпадают точно.
func (d *Driver) AssertLogLine(lineNo int, msg, levelname string) {
	d.t.Helper()
	d.requireRan()

	require.GreaterOrEqual(d.t, lineNo, 0, "negative log line number")
	require.Less(d.t, lineNo, len(d.logLines), "log has only %d lines:\n%s", len(d.logLines), d.logBuffer)

	fields, err := telemetry.ParseLogLine(d.logLines[lineNo])
	require.NoError(d.t, err)

	assert.Equal(d.t, d.suite.BotID, fields.Name, "bot id %s didn't match %s", d.suite.BotID, fields.Name)
	assert.Equal(d.t, levelname, fields.LevelName)
	assert.Equal(d.t, msg, fields.Message)
}

// AssertLogMatches проверяет, что pattern находится в логе.
func (d *Driver) AssertLogMatches(pattern string) {
	d.t.Helper()
	d.requireRan()

	assert.Regexp(d.t, regexp.MustCompile(pattern), d.logBuffer)
}

// AssertLogNotMatches проверяет, что pattern не встречается в логе.
func (d *Driver) AssertLogNotMatches(pattern string) {
	d.t.Helper()
	d.requireRan()

	assert.NotRegexp(d.t, regexp.MustCompile(pattern), d.logBuffer)
}

// AssertQueueNames проверяет, что pipeline знает ровно три очереди бота
// в порядке input, input-internal, output.
func (d *Driver) AssertQueueNames() {
	d.t.Helper()

	assert.Equal(d.t, d.names.List(), d.pipe.Names())
}

// AssertQueueEmpty проверяет, что очередь пуста.
func (d *Driver) AssertQueueEmpty(queue string) {
	d.t.Helper()

	assert.Empty(d.t, d.pipe.Queue(queue), "queue %s is not empty", queue)
}

// AssertOutputLen проверяет количество сообщений в выходной очереди.
func (d *Driver) AssertOutputLen(n int) {
	d.t.Helper()

	assert.Len(d.t, d.OutputQueue(), n)
}

// AssertMessageSubset проверяет, что сообщение на позиции pos выходной
// очереди содержит все пары ключ/значение из expected.
// Лишние поля в сообщении допустимы, отсутствующие — нет.
func (d *Driver) AssertMessageSubset(pos int, expected map[string]any) {
	d.t.Helper()

	actual := d.outputMessage(pos)
	want := d.normalize(expected)

	for key, value := range want {
		got, ok := actual[key]
		if !assert.True(d.t, ok, "output message %d has no key %q", pos, key) {
			continue
		}
		assert.Equal(d.t, value, got, "output message %d, key %q", pos, key)
	}
}

// AssertMessageEqual проверяет точное совпадение сообщения на позиции pos.
func (d *Driver) AssertMessageEqual(pos int, expected map[string]any) {
	d.t.Helper()

	assert.Equal(d.t, d.normalize(expected), map[string]any(d.outputMessage(pos)))
}

// outputMessage декодирует сообщение выходной очереди.
func (d *Driver) outputMessage(pos int) message.Message {
	d.t.Helper()

	out := d.OutputQueue()
	require.Less(d.t, pos, len(out), "output queue has only %d messages", len(out))

	msg, err := message.Unserialize(out[pos])
	require.NoError(d.t, err, "output message %d: %s", pos, out[pos])
	return msg
}

// normalize приводит ожидаемые значения к виду после JSON (int → float64 и т.д.).
func (d *Driver) normalize(expected map[string]any) map[string]any {
	d.t.Helper()

	data, err := json.Marshal(expected)
	require.NoError(d.t, err)

	var out map[string]any
	require.NoError(d.t, json.Unmarshal(data, &out))
	return out
}

func (d *Driver) requireRan() {
	d.t.Helper()
	require.True(d.t, d.ran, "Run was not called")
}

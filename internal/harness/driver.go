package harness

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/botline/internal/bot"
	"github.com/shaiso/botline/internal/config"
	"github.com/shaiso/botline/internal/message"
	"github.com/shaiso/botline/internal/metrics"
	"github.com/shaiso/botline/internal/pipeline"
	"github.com/shaiso/botline/internal/telemetry"
)

// ErrNotReset — Run вызван до Reset.
var ErrNotReset = errors.New("harness: Reset was not called")

// Suite описывает тестируемого бота.
type Suite struct {
	// BotID — идентификатор бота; из него выводятся имена очередей.
	BotID string

	// New создаёт Processor. Вызывается на каждый Reset.
	New func() bot.Processor

	// Sysconfig — параметры бота поверх __default__.
	Sysconfig config.Params

	// Input — входные сообщения по умолчанию.
	Input [][]byte
}

// Driver выполняет один проход бота и хранит результат.
type Driver struct {
	t     testing.TB
	suite Suite
	names pipeline.Names

	bot      *bot.Bot
	buildErr error
	pipe     *pipeline.Memory
	registry *prometheus.Registry
	input    [][]byte

	logSink   *bytes.Buffer
	logBuffer string
	logLines  []string
	ran       bool
}

// NewDriver создаёт Driver. Reset нужно вызвать перед каждым Run.
func NewDriver(t testing.TB, s Suite) *Driver {
	t.Helper()

	require.NotEmpty(t, s.BotID, "Suite.BotID is required")
	require.NotNil(t, s.New, "Suite.New is required")

	return &Driver{
		t:     t,
		suite: s,
		names: pipeline.QueueNames(s.BotID),
	}
}

// Config возвращает конфигурацию, которую получит бот.
func (d *Driver) Config() config.Settings {
	params := maps.Clone(d.suite.Sysconfig)
	if params == nil {
		params = config.Params{}
	}

	return config.Settings{
		System: config.System{
			LoggingLevel: telemetry.LevelNameDebug,
		},
		Runtime: config.Runtime{
			d.suite.BotID:     params,
			config.DefaultKey: config.DefaultParams(),
		},
		Pipeline: config.Pipeline{
			d.suite.BotID: {
				Source:       d.names.Input,
				Destinations: []string{d.names.Output},
			},
		},
	}
}

// Reset создаёт новые pipeline, логгер и бота.
//
// Ошибка создания бота не прерывает тест здесь: её вернёт Run.
func (d *Driver) Reset() {
	d.t.Helper()

	ctx := context.Background()

	settings := d.Config()

	d.pipe = pipeline.NewMemory()
	require.NoError(d.t, d.pipe.SetQueues(ctx, pipeline.RoleSource, d.names.Input))
	require.NoError(d.t, d.pipe.SetQueues(ctx, pipeline.RoleDestination, d.names.Output))

	// Новый буфер на каждый Reset: строки прошлых запусков не попадают в новый
	d.logSink = &bytes.Buffer{}
	d.logBuffer = ""
	d.logLines = nil
	d.ran = false

	level := telemetry.ParseLevel(settings.System.LoggingLevel)
	logger := telemetry.NewBotLogger(d.logSink, d.suite.BotID, level)

	d.registry = prometheus.NewRegistry()

	d.bot, d.buildErr = bot.New(d.suite.BotID, bot.Config{
		System:              settings.System,
		Runtime:             settings.Runtime,
		Pipeline:            settings.Pipeline,
		Logger:              logger,
		SourcePipeline:      d.pipe,
		DestinationPipeline: d.pipe,
		Metrics:             metrics.New(d.registry),
	}, d.suite.New())

	d.SetInputQueue(d.suite.Input)
}

// Run загружает вход в source-очередь и выполняет один проход бота.
//
// Source-очередь перед проходом очищается и заполняется входом из
// SetInputQueue (или Suite.Input): сообщения, положенные напрямую через
// Pipeline().Push, отбрасываются.
//
// Ошибка создания или старта бота возвращается, а не логируется.
// Ошибки pipeline подавлены на уровне бота (ErrorOnPipeline=false) и
// видны через лог и PipelineErr.
func (d *Driver) Run() error {
	d.t.Helper()

	if d.pipe == nil {
		return ErrNotReset
	}
	if d.buildErr != nil {
		return d.buildErr
	}

	ctx := context.Background()
	if err := d.pipe.Clear(ctx, d.names.Input); err != nil {
		return err
	}
	for _, msg := range d.input {
		d.pipe.Push(d.names.Input, msg)
	}

	err := d.bot.Start(ctx, bot.StartOptions{
		ErrorOnPipeline:     false,
		SourcePipeline:      d.pipe,
		DestinationPipeline: d.pipe,
		OneShot:             true,
	})

	d.logBuffer = d.logSink.String()
	d.logLines = splitLines(d.logBuffer)
	d.ran = true

	return err
}

// MustRun выполняет Run и прерывает тест при ошибке.
func (d *Driver) MustRun() {
	d.t.Helper()
	err := d.Run()
	require.NoError(d.t, err, "bot run failed, log:\n%s", d.logBuffer)
}

// Bot возвращает созданного бота (nil, если создание не удалось).
func (d *Driver) Bot() *bot.Bot {
	return d.bot
}

// Pipeline возвращает pipeline текущего запуска.
func (d *Driver) Pipeline() *pipeline.Memory {
	return d.pipe
}

// Registry возвращает реестр метрик текущего запуска.
func (d *Driver) Registry() *prometheus.Registry {
	return d.registry
}

// QueueNames возвращает имена очередей бота.
func (d *Driver) QueueNames() pipeline.Names {
	return d.names
}

// PipelineErr возвращает ошибку транспорта последнего запуска.
func (d *Driver) PipelineErr() error {
	if d.bot == nil {
		return nil
	}
	return d.bot.PipelineErr()
}

// InputQueue возвращает содержимое source-очереди.
// До Run — вход, после Run — то, что бот не забрал.
// До Reset pipeline ещё нет, возвращается заданный вход.
func (d *Driver) InputQueue() [][]byte {
	if d.pipe == nil {
		return cloneQueue(d.input)
	}
	return d.pipe.Queue(d.names.Input)
}

// SetInputQueue задаёт входные сообщения для следующего Run.
// Reset заменяет вход на Suite.Input.
func (d *Driver) SetInputQueue(seq [][]byte) {
	d.input = cloneQueue(seq)
	if d.pipe != nil {
		d.pipe.SetQueue(d.names.Input, seq)
	}
}

// SetInputMessages задаёт вход из сообщений.
func (d *Driver) SetInputMessages(msgs ...message.Message) {
	d.t.Helper()

	seq := make([][]byte, 0, len(msgs))
	for _, m := range msgs {
		data, err := m.Serialize()
		require.NoError(d.t, err)
		seq = append(seq, data)
	}
	d.SetInputQueue(seq)
}

// OutputQueue возвращает содержимое destination-очереди после Run.
func (d *Driver) OutputQueue() [][]byte {
	return d.pipe.Queue(d.names.Output)
}

// LogBuffer возвращает весь лог последнего Run.
func (d *Driver) LogBuffer() string {
	return d.logBuffer
}

// LogLines возвращает строки лога последнего Run.
func (d *Driver) LogLines() []string {
	return slices.Clone(d.logLines)
}

// Raw собирает вход из строк.
func Raw(msgs ...string) [][]byte {
	seq := make([][]byte, len(msgs))
	for i, m := range msgs {
		seq[i] = []byte(m)
	}
	return seq
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func cloneQueue(seq [][]byte) [][]byte {
	if seq == nil {
		return nil
	}
	out := make([][]byte, len(seq))
	for i, item := range seq {
		out[i] = slices.Clone(item)
	}
	return out
}

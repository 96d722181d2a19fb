package bot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shaiso/botline/internal/config"
	"github.com/shaiso/botline/internal/message"
	"github.com/shaiso/botline/internal/pipeline"
)

// Context — доступ Processor к очередям и параметрам в рамках одного прохода.
//
// Ошибки транспорта возвращаются как *PipelineError, кроме
// pipeline.ErrEmptyQueue: его Processor должен вернуть как есть.
type Context struct {
	bot         *Bot
	source      pipeline.Pipeline
	destination pipeline.Pipeline

	received bool
	acked    bool
}

func newContext(b *Bot, source, destination pipeline.Pipeline) *Context {
	return &Context{
		bot:         b,
		source:      source,
		destination: destination,
	}
}

// BotID возвращает идентификатор бота.
func (c *Context) BotID() string {
	return c.bot.id
}

// Params возвращает runtime-параметры бота (поверх __default__).
func (c *Context) Params() config.Params {
	return c.bot.params
}

// Logger возвращает логгер бота.
func (c *Context) Logger() *slog.Logger {
	return c.bot.logger
}

// ReceiveRaw получает сообщение из source-очереди как есть.
func (c *Context) ReceiveRaw(ctx context.Context) ([]byte, error) {
	data, err := c.source.Receive(ctx)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyQueue) {
			return nil, err
		}
		return nil, &PipelineError{Op: "receive", Err: err}
	}

	c.received = true
	c.acked = false
	c.bot.metrics.Received(c.bot.id)

	c.bot.logger.Debug("Received message.", "size", len(data))
	return data, nil
}

// Receive получает сообщение и декодирует его.
// Ошибка декодирования — ошибка обработки, а не транспорта.
func (c *Context) Receive(ctx context.Context) (message.Message, error) {
	data, err := c.ReceiveRaw(ctx)
	if err != nil {
		return nil, err
	}
	return message.Unserialize(data)
}

// SendRaw отправляет сообщение во все destination-очереди.
func (c *Context) SendRaw(ctx context.Context, data []byte) error {
	if err := c.destination.Send(ctx, data); err != nil {
		return &PipelineError{Op: "send", Err: err}
	}

	c.bot.metrics.Sent(c.bot.id)
	return nil
}

// Send кодирует и отправляет сообщение.
func (c *Context) Send(ctx context.Context, msg message.Message) error {
	data, err := msg.Serialize()
	if err != nil {
		return err
	}
	return c.SendRaw(ctx, data)
}

// Acknowledge подтверждает полученное сообщение.
func (c *Context) Acknowledge(ctx context.Context) error {
	if !c.received {
		return ErrNotReceived
	}

	if err := c.source.Acknowledge(ctx); err != nil {
		return &PipelineError{Op: "acknowledge", Err: err}
	}

	c.acked = true
	return nil
}

// pending сообщает, что сообщение получено, но не подтверждено.
func (c *Context) pending() bool {
	return c.received && !c.acked
}

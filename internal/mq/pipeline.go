package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/botline/internal/pipeline"
)

// Pipeline — pipeline.Pipeline поверх RabbitMQ.
//
// Receive забирает сообщение через basic.get без autoAck. Пока оно не
// подтверждено, брокер держит его unacked, а Receive возвращает его же.
// Internal-очередь на брокере не объявляется: её роль играет
// неподтверждённая доставка, и Count/Clear для неё работают с ней.
type Pipeline struct {
	conn   ChannelProvider
	logger *slog.Logger

	mu           sync.Mutex
	source       string
	internal     string
	destinations []string
	inflight     *amqp.Delivery
	declared     map[string]bool
	closed       bool

	now func() time.Time
}

// NewPipeline создаёт pipeline поверх conn.
func NewPipeline(conn ChannelProvider, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Pipeline{
		conn:     conn,
		logger:   logger,
		declared: make(map[string]bool),
		now:      time.Now,
	}
}

// SetQueues объявляет очереди на брокере и запоминает их роль.
func (p *Pipeline) SetQueues(ctx context.Context, role pipeline.Role, names ...string) error {
	if err := pipeline.ValidateQueues(role, names); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	err := p.conn.WithChannel(ctx, func(ch Channel) error {
		for _, name := range names {
			if p.declared[name] {
				continue
			}
			if err := declareQueue(ch, name); err != nil {
				return err
			}
			p.declared[name] = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	switch role {
	case pipeline.RoleSource:
		p.source = names[0]
		p.internal = pipeline.InternalQueue(p.source)
	case pipeline.RoleDestination:
		p.destinations = slices.Clone(names)
	}

	p.logger.Debug("queues declared", "role", role, "queues", names)
	return nil
}

// Send публикует сообщение в каждую destination-очередь.
func (p *Pipeline) Send(ctx context.Context, msg []byte) error {
	p.mu.Lock()
	destinations := p.destinations
	closed := p.closed
	p.mu.Unlock()

	if closed {
		return ErrClosed
	}
	if len(destinations) == 0 {
		return pipeline.ErrNoDestinations
	}

	return p.conn.WithChannel(ctx, func(ch Channel) error {
		for _, name := range destinations {
			id := uuid.New().String()

			err := ch.PublishWithContext(
				ctx,
				"",    // default exchange
				name,  // routing key = имя очереди
				false, // mandatory
				false, // immediate
				amqp.Publishing{
					ContentType:  "application/json",
					DeliveryMode: amqp.Persistent,
					MessageId:    id,
					Timestamp:    p.now(),
					Body:         msg,
				},
			)
			if err != nil {
				return fmt.Errorf("publish to %s: %w", name, err)
			}

			p.logger.Debug("published message", "queue", name, "message_id", id)
		}
		return nil
	})
}

// Receive возвращает неподтверждённое сообщение или забирает новое.
// На пустой очереди возвращает pipeline.ErrEmptyQueue не блокируясь.
func (p *Pipeline) Receive(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if p.source == "" {
		return nil, pipeline.ErrSourceNotSet
	}
	if p.inflight != nil {
		return slices.Clone(p.inflight.Body), nil
	}

	var body []byte
	err := p.conn.WithChannel(ctx, func(ch Channel) error {
		d, ok, err := ch.Get(p.source, false)
		if err != nil {
			return fmt.Errorf("get from %s: %w", p.source, err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", pipeline.ErrEmptyQueue, p.source)
		}

		p.inflight = &d
		body = slices.Clone(d.Body)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

// Acknowledge подтверждает сообщение в полёте. Без него — no-op.
func (p *Pipeline) Acknowledge(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.source == "" {
		return pipeline.ErrSourceNotSet
	}
	if p.inflight == nil {
		return nil
	}

	d := p.inflight
	// После ошибки ack доставка всё равно потеряна для нас: брокер вернёт её сам
	p.inflight = nil

	if err := d.Ack(false); err != nil {
		return fmt.Errorf("ack %s: %w", p.source, err)
	}
	return nil
}

// Clear очищает очередь.
// Для internal-очереди сообщение в полёте отклоняется и уходит в dead letter.
func (p *Pipeline) Clear(ctx context.Context, queue string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if queue != "" && queue == p.internal {
		if p.inflight == nil {
			return nil
		}
		d := p.inflight
		p.inflight = nil
		if err := d.Reject(false); err != nil {
			return fmt.Errorf("reject %s: %w", p.source, err)
		}
		return nil
	}

	return p.conn.WithChannel(ctx, func(ch Channel) error {
		n, err := ch.QueuePurge(queue, false)
		if err != nil {
			return fmt.Errorf("purge %s: %w", queue, err)
		}
		p.logger.Debug("queue purged", "queue", queue, "messages", n)
		return nil
	})
}

// Count возвращает количество готовых к выдаче сообщений в очереди.
func (p *Pipeline) Count(ctx context.Context, queue string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if queue != "" && queue == p.internal {
		if p.inflight != nil {
			return 1, nil
		}
		return 0, nil
	}

	var count int
	err := p.conn.WithChannel(ctx, func(ch Channel) error {
		q, err := ch.QueueDeclarePassive(queue, true, false, false, false, queueArgs())
		if err != nil {
			return fmt.Errorf("inspect %s: %w", queue, err)
		}
		count = q.Messages
		return nil
	})
	return count, err
}

// Close возвращает сообщение в полёте в очередь. Соединение не закрывается:
// им владеет вызывающий.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.inflight == nil {
		return nil
	}

	d := p.inflight
	p.inflight = nil
	if err := d.Nack(false, true); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return fmt.Errorf("requeue %s: %w", p.source, err)
	}
	return nil
}

var _ pipeline.Pipeline = (*Pipeline)(nil)

package mq

import (
	"context"
	"errors"
	"slices"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/botline/internal/pipeline"
)

// fakeBroker — очереди в памяти за интерфейсом Channel.
type fakeBroker struct {
	queues    map[string][][]byte
	declared  []string
	published []amqp.Publishing
	acked     []uint64
	rejected  []uint64
	requeued  []uint64
	tag       uint64
	getErr    error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{queues: make(map[string][][]byte)}
}

func (b *fakeBroker) WithChannel(ctx context.Context, fn func(ch Channel) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(b)
}

func (b *fakeBroker) ExchangeDeclare(string, string, bool, bool, bool, bool, amqp.Table) error {
	return nil
}

func (b *fakeBroker) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	b.declared = append(b.declared, name)
	if _, ok := b.queues[name]; !ok {
		b.queues[name] = nil
	}
	return amqp.Queue{Name: name}, nil
}

func (b *fakeBroker) QueueDeclarePassive(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	items, ok := b.queues[name]
	if !ok {
		return amqp.Queue{}, errors.New("NOT_FOUND")
	}
	return amqp.Queue{Name: name, Messages: len(items)}, nil
}

func (b *fakeBroker) QueueBind(string, string, string, bool, amqp.Table) error {
	return nil
}

func (b *fakeBroker) QueuePurge(name string, _ bool) (int, error) {
	n := len(b.queues[name])
	b.queues[name] = nil
	return n, nil
}

func (b *fakeBroker) Get(queue string, _ bool) (amqp.Delivery, bool, error) {
	if b.getErr != nil {
		return amqp.Delivery{}, false, b.getErr
	}
	items := b.queues[queue]
	if len(items) == 0 {
		return amqp.Delivery{}, false, nil
	}
	b.queues[queue] = items[1:]
	b.tag++
	return amqp.Delivery{Acknowledger: b, DeliveryTag: b.tag, Body: items[0]}, true, nil
}

func (b *fakeBroker) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	b.published = append(b.published, msg)
	b.queues[key] = append(b.queues[key], msg.Body)
	return nil
}

func (b *fakeBroker) Ack(tag uint64, _ bool) error {
	b.acked = append(b.acked, tag)
	return nil
}

func (b *fakeBroker) Nack(tag uint64, _ bool, requeue bool) error {
	if requeue {
		b.requeued = append(b.requeued, tag)
	}
	return nil
}

func (b *fakeBroker) Reject(tag uint64, _ bool) error {
	b.rejected = append(b.rejected, tag)
	return nil
}

func setup(t *testing.T) (*fakeBroker, *Pipeline, pipeline.Names) {
	t.Helper()

	ctx := context.Background()
	broker := newFakeBroker()
	p := NewPipeline(broker, nil)
	names := pipeline.QueueNames("bot")

	require.NoError(t, p.SetQueues(ctx, pipeline.RoleSource, names.Input))
	require.NoError(t, p.SetQueues(ctx, pipeline.RoleDestination, names.Output))
	return broker, p, names
}

func TestPipeline_SetQueuesDeclaresOnce(t *testing.T) {
	broker, p, names := setup(t)

	require.NoError(t, p.SetQueues(context.Background(), pipeline.RoleSource, names.Input))
	assert.Equal(t, []string{names.Input, names.Output}, broker.declared)
}

func TestPipeline_SetQueuesValidation(t *testing.T) {
	p := NewPipeline(newFakeBroker(), nil)

	err := p.SetQueues(context.Background(), pipeline.RoleSource, "a", "b")
	assert.ErrorIs(t, err, pipeline.ErrSingleSource)
}

func TestPipeline_SendReceiveAcknowledge(t *testing.T) {
	ctx := context.Background()
	broker, p, names := setup(t)
	broker.queues[names.Input] = [][]byte{[]byte("m1"), []byte("m2")}

	msg, err := p.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m1", string(msg))

	// Без ack — та же доставка
	again, err := p.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m1", string(again))

	n, err := p.Count(ctx, names.Internal)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, p.Send(ctx, []byte("out")))
	require.NoError(t, p.Acknowledge(ctx))
	assert.Equal(t, []uint64{1}, broker.acked)

	n, err = p.Count(ctx, names.Internal)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = p.Count(ctx, names.Output)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, broker.published, 1)
	pub := broker.published[0]
	assert.Equal(t, amqp.Persistent, pub.DeliveryMode)
	assert.NotEmpty(t, pub.MessageId)

	msg, err = p.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "m2", string(msg))
	require.NoError(t, p.Acknowledge(ctx))

	_, err = p.Receive(ctx)
	assert.ErrorIs(t, err, pipeline.ErrEmptyQueue)
}

func TestPipeline_AcknowledgeWithoutReceive(t *testing.T) {
	_, p, _ := setup(t)
	assert.NoError(t, p.Acknowledge(context.Background()))

	fresh := NewPipeline(newFakeBroker(), nil)
	assert.ErrorIs(t, fresh.Acknowledge(context.Background()), pipeline.ErrSourceNotSet)
}

func TestPipeline_SendWithoutDestinations(t *testing.T) {
	p := NewPipeline(newFakeBroker(), nil)
	assert.ErrorIs(t, p.Send(context.Background(), []byte("x")), pipeline.ErrNoDestinations)
}

func TestPipeline_ReceiveError(t *testing.T) {
	broker, p, _ := setup(t)
	broker.getErr = errors.New("channel closed")

	_, err := p.Receive(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, pipeline.ErrEmptyQueue)
	assert.Contains(t, err.Error(), "get from bot-input")
}

func TestPipeline_ClearInternalRejects(t *testing.T) {
	ctx := context.Background()
	broker, p, names := setup(t)
	broker.queues[names.Input] = [][]byte{[]byte("bad")}

	_, err := p.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, p.Clear(ctx, names.Internal))
	assert.Equal(t, []uint64{1}, broker.rejected)

	_, err = p.Receive(ctx)
	assert.ErrorIs(t, err, pipeline.ErrEmptyQueue)
}

func TestPipeline_ClearPurges(t *testing.T) {
	ctx := context.Background()
	broker, p, names := setup(t)
	broker.queues[names.Input] = [][]byte{[]byte("a"), []byte("b")}

	require.NoError(t, p.Clear(ctx, names.Input))

	n, err := p.Count(ctx, names.Input)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPipeline_CloseRequeuesInflight(t *testing.T) {
	ctx := context.Background()
	broker, p, names := setup(t)
	broker.queues[names.Input] = [][]byte{[]byte("a")}

	_, err := p.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.Equal(t, []uint64{1}, broker.requeued)

	// Повторный Close — no-op
	require.NoError(t, p.Close())

	_, err = p.Receive(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, p.Send(ctx, []byte("x")), ErrClosed)
}

func TestSetupTopology(t *testing.T) {
	broker := newFakeBroker()
	require.NoError(t, SetupTopology(context.Background(), broker))

	assert.True(t, slices.Contains(broker.declared, QueueDLQ))
}

func TestSetupTopology_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, SetupTopology(ctx, newFakeBroker()), context.Canceled)
}

func TestNewConnection_InvalidURL(t *testing.T) {
	_, err := NewConnection("not a url", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial amqp")
}

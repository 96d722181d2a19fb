package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Dead letter: сюда брокер кладёт сообщения, отклонённые без requeue.
const (
	ExchangeDLQ   = "botline.dlq"
	QueueDLQ      = "botline.dlq"
	RoutingKeyDLQ = "dropped"
)

// queueArgs — аргументы, с которыми объявляется каждая очередь бота.
// Повторное объявление с другими аргументами брокер отвергнет.
func queueArgs() amqp.Table {
	return amqp.Table{
		"x-dead-letter-exchange":    ExchangeDLQ,
		"x-dead-letter-routing-key": RoutingKeyDLQ,
	}
}

// SetupTopology объявляет dead letter обменник и его очередь.
func SetupTopology(ctx context.Context, conn ChannelProvider) error {
	return conn.WithChannel(ctx, func(ch Channel) error {
		err := ch.ExchangeDeclare(
			ExchangeDLQ, // name
			"direct",    // type
			true,        // durable
			false,       // auto-deleted
			false,       // internal
			false,       // no-wait
			nil,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeDLQ, err)
		}

		if _, err := ch.QueueDeclare(QueueDLQ, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueDLQ, err)
		}

		if err := ch.QueueBind(QueueDLQ, RoutingKeyDLQ, ExchangeDLQ, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", QueueDLQ, ExchangeDLQ, err)
		}

		return nil
	})
}

// declareQueue объявляет durable очередь бота.
func declareQueue(ch Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,        // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		queueArgs(), // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	return nil
}

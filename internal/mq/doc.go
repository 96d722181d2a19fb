// Package mq — production pipeline поверх RabbitMQ.
//
// Структура:
//   - connection.go — соединение с брокером (reconnect, graceful shutdown)
//   - topology.go   — объявление очередей ботов и dead letter обменника
//   - pipeline.go   — pipeline.Pipeline на basic.get / basic.publish
//
// Очереди ботов durable и публикуются через default exchange:
// routing key совпадает с именем очереди. Отброшенные сообщения
// уходят в botline.dlq.
package mq

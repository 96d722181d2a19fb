// Package metrics — Prometheus-метрики ботов.
//
// Метрики регистрируются в явном prometheus.Registerer: каждый тестовый
// запуск получает свой реестр и не пересекается с другими.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector — счётчики сообщений по ботам.
//
// Nil *Collector допустим: все методы становятся no-op.
type Collector struct {
	received *prometheus.CounterVec
	sent     *prometheus.CounterVec
	failed   *prometheus.CounterVec
	dropped  *prometheus.CounterVec
	runs     *prometheus.CounterVec
}

// New создаёт Collector и регистрирует счётчики в reg.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	labels := []string{"bot"}

	return &Collector{
		received: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "botline_messages_received_total",
			Help: "Messages received from the source queue",
		}, labels),
		sent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "botline_messages_sent_total",
			Help: "Messages sent to destination queues",
		}, labels),
		failed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "botline_processing_failures_total",
			Help: "Failed processing attempts",
		}, labels),
		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "botline_messages_dropped_total",
			Help: "Messages dropped after retries were exhausted",
		}, labels),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "botline_bot_starts_total",
			Help: "Bot starts",
		}, labels),
	}
}

// Received учитывает полученное сообщение.
func (c *Collector) Received(bot string) {
	if c == nil {
		return
	}
	c.received.WithLabelValues(bot).Inc()
}

// Sent учитывает отправленное сообщение.
func (c *Collector) Sent(bot string) {
	if c == nil {
		return
	}
	c.sent.WithLabelValues(bot).Inc()
}

// Failed учитывает неудачную попытку обработки.
func (c *Collector) Failed(bot string) {
	if c == nil {
		return
	}
	c.failed.WithLabelValues(bot).Inc()
}

// Dropped учитывает выброшенное сообщение.
func (c *Collector) Dropped(bot string) {
	if c == nil {
		return
	}
	c.dropped.WithLabelValues(bot).Inc()
}

// Started учитывает запуск бота.
func (c *Collector) Started(bot string) {
	if c == nil {
		return
	}
	c.runs.WithLabelValues(bot).Inc()
}

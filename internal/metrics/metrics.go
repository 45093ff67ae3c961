// Package metrics собирает счётчики очереди и движка речи для Prometheus.
// Все методы допускают nil-получатель, чтобы метрики можно было не включать.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Метки производителей сообщений.
const (
	ProducerLive     = "live"
	ProducerSnapshot = "snapshot"
)

type Metrics struct {
	registry    *prometheus.Registry
	pushed      *prometheus.CounterVec
	announced   prometheus.Counter
	dropped     prometheus.Counter
	queueDepth  prometheus.Gauge
	engineState prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pushed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifyreader_messages_pushed_total",
			Help: "Messages pushed to the queue by producer",
		}, []string{"producer"}),
		announced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifyreader_messages_announced_total",
			Help: "Messages handed to the speech engine",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notifyreader_messages_dropped_total",
			Help: "Messages evicted by the queue limit",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notifyreader_queue_depth",
			Help: "Messages waiting for the speech engine",
		}),
		engineState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notifyreader_engine_state",
			Help: "Speech engine state: 0 not ready, 1 ready, 2 failed",
		}),
	}
	m.registry.MustRegister(m.pushed, m.announced, m.dropped, m.queueDepth, m.engineState)
	return m
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Pushed(producer string) {
	if m == nil {
		return
	}
	m.pushed.WithLabelValues(producer).Inc()
}

func (m *Metrics) Announced() {
	if m == nil {
		return
	}
	m.announced.Inc()
}

func (m *Metrics) Dropped() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}

func (m *Metrics) QueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

func (m *Metrics) EngineState(state int) {
	if m == nil {
		return
	}
	m.engineState.Set(float64(state))
}

// Package metrics exposes Prometheus instrumentation for the widget runtime.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Chat send metrics
	SendAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "embedkit_send_attempts_total",
		Help: "Total chat send attempts, including retries",
	})

	SendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "embedkit_sends_total",
		Help: "Total chat send operations by outcome",
	}, []string{"success"})

	SendFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "embedkit_send_failures_total",
		Help: "Exhausted chat send operations by failure kind",
	}, []string{"kind"})

	// Cross-frame relay metrics
	RelayMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "embedkit_relay_messages_total",
		Help: "Relay messages routed by type",
	}, []string{"type"})

	RelayRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "embedkit_relay_rejected_total",
		Help: "Relay messages dropped by origin validation",
	})

	// Widget document load metrics
	FrameLoadFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "embedkit_frame_load_failures_total",
		Help: "Widget document load timeouts and errors",
	})
)

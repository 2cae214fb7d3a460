package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundbite_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CounterUpdates counts snippet counter increments and decrements by field.
	CounterUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundbite_counter_updates_total",
		Help: "Total snippet counter updates by field and direction",
	}, []string{"field", "direction"})

	// FanoutEvents counts change-capture events handled by the fan-out reactor.
	FanoutEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundbite_fanout_events_total",
		Help: "Total change-capture events processed by type and outcome",
	}, []string{"event", "outcome"})

	// EventPublishFailures counts change-capture events that could not be
	// published. A lost event never reaches the fan-out reactor.
	EventPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundbite_event_publish_failures_total",
		Help: "Total change-capture events that failed to publish, by event type",
	}, []string{"event"})

	// CascadeDeletedDocs counts documents removed by snippet cascade deletes.
	CascadeDeletedDocs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundbite_cascade_deleted_documents_total",
		Help: "Total documents removed by cascade deletes, by collection",
	}, []string{"collection"})

	// WebSocketConnections is the gauge of active notification connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "soundbite_websocket_connections",
		Help: "Number of active notification WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped because a client's
	// send buffer was full or its channel closed.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundbite_websocket_backpressure_drops_total",
		Help: "Total WebSocket messages dropped due to backpressure, by reason",
	}, []string{"reason"})
)

// Package metrics exposes the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FramesDecoded counts envelope decodes by outcome (ok / error).
	FramesDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "serenity",
		Subsystem: "gateway",
		Name:      "frames_decoded_total",
		Help:      "Envelope decode attempts by outcome.",
	}, []string{"outcome"})

	// EventsDispatched counts dispatch frames by type label.
	EventsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "serenity",
		Subsystem: "gateway",
		Name:      "events_dispatched_total",
		Help:      "Dispatched events by type label.",
	}, []string{"type"})

	// EventsApplied counts cache applications by event type.
	EventsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "serenity",
		Subsystem: "state",
		Name:      "events_applied_total",
		Help:      "Events applied to the cache by type.",
	}, []string{"type"})

	// MessagesEvicted counts messages dropped by the bounded cache.
	MessagesEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "serenity",
		Subsystem: "state",
		Name:      "messages_evicted_total",
		Help:      "Messages evicted once a channel hit its cap.",
	})
)

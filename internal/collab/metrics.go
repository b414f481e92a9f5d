package collab

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	roomsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "collab",
		Name:      "rooms_active",
		Help:      "Number of active document rooms.",
	})

	membersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "collab",
		Name:      "room_members",
		Help:      "Number of connections currently joined to a room.",
	})

	broadcastTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "collab",
		Name:      "broadcast_events_total",
		Help:      "Events fanned out to room members, by event action.",
	}, []string{"action"})

	broadcastErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "collab",
		Name:      "broadcast_errors_total",
		Help:      "Per-peer send failures during fan-out, by event action.",
	}, []string{"action"})
)

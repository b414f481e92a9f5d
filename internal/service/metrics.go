package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	versionsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "version",
		Name:      "snapshots_created_total",
		Help:      "Version records created, by kind.",
	}, []string{"kind"})

	versionsSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "version",
		Name:      "snapshots_skipped_total",
		Help:      "Snapshot attempts that created no version, by reason.",
	}, []string{"reason"})
)

const (
	snapshotKindAuto        = "auto"
	snapshotKindManual      = "manual"
	snapshotKindRestoration = "restoration"

	skipReasonIdentical     = "identical"
	skipReasonCooldown      = "cooldown"
	skipReasonInsignificant = "insignificant"
)

// Package metrics exposes the server and client's runtime health as
// Prometheus gauges/counters/histograms. Grounded on the pack's
// prometheus/client_golang usage pattern: package-level collectors
// registered once, updated from the hot path with no allocation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "snake",
		Name:      "tick_duration_seconds",
		Help:      "Wall-clock duration of one server simulation tick.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	ActivePlayers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "snake",
		Name:      "active_players",
		Help:      "Number of currently registered UDP peers.",
	})

	ActiveBots = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "snake",
		Name:      "active_bots",
		Help:      "Number of bot snakes currently tracked, alive or respawning.",
	})

	FoodCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "snake",
		Name:      "food_count",
		Help:      "Number of food entities currently in the world.",
	})

	SnakeDeaths = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snake",
		Name:      "snake_deaths_total",
		Help:      "Snake deaths by cause.",
	}, []string{"cause"})

	// DroppedBadPackets counts client-observed datagrams rejected by the
	// reconciliation engine, labeled by the rejection reason.
	DroppedBadPackets = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "snake",
		Name:      "client_dropped_bad_packets_total",
		Help:      "Datagrams dropped by the client reconciliation engine.",
	}, []string{"reason"})

	// TTLEvictions counts entities the client's entity store evicted
	// for being stale and out of view.
	TTLEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "snake",
		Name:      "client_ttl_evictions_total",
		Help:      "Entities evicted from the client entity store by TTL.",
	})

	// PendingRepair tracks whether a full or targeted repair is
	// outstanding, for dashboards correlating drift with network loss.
	PendingRepair = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "snake",
		Name:      "client_pending_repair",
		Help:      "1 if a full-update or snapshot repair request is pending, 0 otherwise.",
	})

	SnapshotRequestsQueued = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "snake",
		Name:      "client_snapshot_requests_queued",
		Help:      "Number of per-snake RequestSnakeSnapshot requests queued.",
	})
)

// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncTasks counts background remote-sync tasks by name and outcome.
	SyncTasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fincio",
		Name:      "remote_sync_tasks_total",
		Help:      "Remote sync tasks run, by task name and result.",
	}, []string{"task", "result"})

	// SyncDropped counts tasks dropped because the queue was full or stopped.
	SyncDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fincio",
		Name:      "remote_sync_dropped_total",
		Help:      "Remote sync tasks dropped before running.",
	})

	// QuoteFallbacks counts quote feeds served from stale cache or static data.
	QuoteFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fincio",
		Name:      "quote_fallbacks_total",
		Help:      "Quote feed reads that fell back to cached or static data.",
	}, []string{"feed", "kind"})

	// Actions counts ledger mutation actions.
	Actions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fincio",
		Name:      "ledger_actions_total",
		Help:      "Ledger mutation actions applied.",
	}, []string{"action"})
)

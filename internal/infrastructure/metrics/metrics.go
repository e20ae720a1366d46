package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ledger metrics. Package-level so that every component increments the same
// registered collectors.
var (
	TransfersCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bancoledger_transfers_completed_total",
		Help: "Total number of transfers completed",
	})

	TransfersRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bancoledger_transfers_rejected_total",
			Help: "Total number of transfers rejected by business rules",
		},
		[]string{"code"},
	)

	TransferDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bancoledger_transfer_duration_seconds",
		Help:    "Duration of transfer operations",
		Buckets: prometheus.DefBuckets,
	})

	MovementsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bancoledger_movements_created_total",
			Help: "Total number of ledger movements created",
		},
		[]string{"type"},
	)

	IdempotentReplays = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bancoledger_idempotent_replays_total",
		Help: "Total number of requests answered from the idempotency guard",
	})

	AccountsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bancoledger_accounts_created_total",
		Help: "Total number of accounts created",
	})

	AuthFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bancoledger_auth_failures_total",
		Help: "Total number of failed authentication attempts",
	})
)

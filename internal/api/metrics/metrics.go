// Package metrics defines and registers all custom Prometheus metrics for
// the voting API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry at package init via
// promauto; the /metrics endpoint is wired in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "voting"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts password and Google login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenRefreshTotal counts refresh-token exchanges.
// Label:
//   - result: "rotated" (success) or "rejected" (verification or replay failure)
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of refresh-token exchanges, by result.",
	},
	[]string{"result"},
)

// SessionsRevokedTotal counts bulk revocations performed before issuing a
// new session (one increment per login/OAuth issuance).
var SessionsRevokedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_revoked_total",
		Help:      "Total number of bulk session revocations on login.",
	},
)

// ── Vote metrics ──────────────────────────────────────────────────────────────

// VotesCastTotal counts successful ledger writes.
// Label:
//   - kind: "first" or "replaced"
var VotesCastTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_cast_total",
		Help:      "Total number of votes recorded, by kind (first/replaced).",
	},
	[]string{"kind"},
)

// VotesRejectedTotal counts votes refused by the policy engine.
// Label:
//   - reason: "poll_expired", "change_forbidden", "interval_not_elapsed", "other"
var VotesRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_rejected_total",
		Help:      "Total number of votes rejected by poll policy, by reason.",
	},
	[]string{"reason"},
)

// VoteProcessingDuration measures a vote from policy check to ledger write.
var VoteProcessingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "vote_processing_duration_seconds",
		Help:      "Duration of vote processing from policy evaluation to persistence.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)

// ── Audit queue metrics ───────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of vote events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of vote events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

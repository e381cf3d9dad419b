package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 投稿与通知管道的核心指标，通过 /metrics 暴露。
var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "promos",
		Name:      "submissions_total",
		Help:      "Submission attempts by outcome.",
	}, []string{"result"})

	confirmationsProduced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "promos",
		Name:      "confirmations_produced_total",
		Help:      "Confirmation events successfully handed to the broker.",
	})

	confirmationProduceFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "promos",
		Name:      "confirmation_produce_failures_total",
		Help:      "Confirmation events that failed to reach the broker (logged, never propagated).",
	})
)

const (
	resultAccepted           = "accepted"
	resultRejectedClosed     = "rejected_closed"
	resultRejectedDuplicate  = "rejected_duplicate"
	resultRejectedRules      = "rejected_rules"
	resultRejectedIncomplete = "rejected_incomplete"
	resultRejectedEligible   = "rejected_not_eligible"
	resultError              = "error"
)

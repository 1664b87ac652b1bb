package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Settlement outcome labels.
const (
	OutcomeSettled            = "settled"
	OutcomeVerificationFailed = "verification_failed"
	OutcomeSettlementFailed   = "settlement_failed"
	OutcomeUnreachable        = "facilitator_unreachable"
)

var (
	// ChallengesIssued counts 402 challenges served to unpaid requests.
	ChallengesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "x402_challenges_issued_total",
		Help: "Number of 402 payment challenges issued.",
	})

	// Settlements counts facilitator round trips by outcome.
	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "x402_settlements_total",
		Help: "Number of facilitator verify+settle round trips by outcome.",
	}, []string{"outcome"})

	// GateRejections counts requests rejected by each gate.
	GateRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "x402_gate_rejections_total",
		Help: "Number of requests rejected per gate.",
	}, []string{"gate"})
)

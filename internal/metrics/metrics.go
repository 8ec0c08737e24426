package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 管线各阶段的计数指标，注册到默认 registry，
// 由 /metrics 端点暴露。
var (
	RequestsVerified = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wallet_connect",
		Name:      "requests_verified_total",
		Help:      "Number of dapp interaction requests that entered verification, by outcome.",
	}, []string{"outcome"})

	SilentAuthorizations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wallet_connect",
		Name:      "silent_authorizations_total",
		Help:      "Number of silent reauthorization attempts, by outcome.",
	}, []string{"outcome"})

	TransactionsNotarized = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wallet_connect",
		Name:      "transactions_notarized_total",
		Help:      "Number of transaction notarization attempts, by outcome.",
	}, []string{"outcome"})

	ResponsesDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wallet_connect",
		Name:      "responses_dispatched_total",
		Help:      "Number of responses dispatched back to dapps, by channel and outcome.",
	}, []string{"channel", "outcome"})
)

// 指标 outcome 标签的取值
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeFallback = "fallback"
)

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DecisionCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "smartride", Name: "decision_cycles_total", Help: "Decision cycles by final state"},
		[]string{"state"},
	)
	QuoteFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smartride",
			Name:      "quote_fetch_duration_seconds",
			Help:      "Per-provider quote fetch latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
	QuoteFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "smartride", Name: "quote_fetch_failures_total", Help: "Per-provider quote fetch failures and timeouts"},
		[]string{"provider"},
	)
	WeatherDegradedTotal = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "smartride", Name: "weather_degraded_total", Help: "Decision cycles that ran with a neutral weather context"},
	)
	RPCRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "smartride", Name: "rpc_requests_total", Help: "RPC requests by method and result code"},
		[]string{"method", "code"},
	)
)

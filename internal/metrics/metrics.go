package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/carton-caps/referrals/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Deep link provider

	ProviderCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "referrals",
		Name:      "provider_calls_total",
		Help:      "Calls to the deep link provider, by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	ProviderCallDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "referrals",
		Name:      "provider_call_duration_seconds",
		Help:      "Latency of deep link provider calls.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"endpoint"})

	// Business events

	LinksCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "referrals",
		Name:      "links_created_total",
		Help:      "Referral links persisted after provider generation.",
	})

	LinksExtendedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "referrals",
		Name:      "links_extended_total",
		Help:      "Successful referral link TTL extensions.",
	})

	ReferralsCompletedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "referrals",
		Name:      "completed_total",
		Help:      "CompleteReferral outcomes.",
	}, []string{"outcome"})

	// Sweeper

	SweeperDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "referrals",
		Name:      "sweeper_deleted_total",
		Help:      "Expired referral links removed by the sweeper.",
	})

	SweeperCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "referrals",
		Name:      "sweeper_cycle_duration_seconds",
		Help:      "Time taken for one sweeper cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "referrals",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "referrals",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		ProviderCallsTotal,
		ProviderCallDuration,
		LinksCreatedTotal,
		LinksExtendedTotal,
		ReferralsCompletedTotal,
		SweeperDeletedTotal,
		SweeperCycleDuration,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus the liveness and readiness probes on a
// port separate from the public API.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(result)
}

package monitoring

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/jonafarm/market/logx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type marketPromMetrics struct {
	nodeUpUnixSeconds    prometheus.Gauge
	chainLength          prometheus.Gauge
	blocksAppended       *prometheus.CounterVec
	appendLatency        prometheus.Histogram
	verificationFailures *prometheus.CounterVec
	httpRequests         *prometheus.CounterVec
	loginAttempts        *prometheus.CounterVec
	rateLimitedRequests  prometheus.Counter
	panicCount           *prometheus.CounterVec
}

func newMarketPromMetrics() *marketPromMetrics {
	return &marketPromMetrics{
		nodeUpUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "market_up_timestamp_unix_seconds",
				Help: "Unix timestamp of the server start",
			},
		),
		chainLength: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "market_chain_length",
				Help: "Number of blocks in the product audit chain",
			},
		),
		blocksAppended: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "market_chain_blocks_appended_total",
				Help: "The total number of audit blocks appended, by product action",
			},
			[]string{"action"},
		),
		appendLatency: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "market_chain_append_seconds",
				Help: "Duration in second of one load-build-append cycle",
			},
		),
		verificationFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "market_chain_verification_failures_total",
				Help: "The total number of failed chain verifications, by reason",
			},
			[]string{"reason"},
		),
		httpRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "market_http_requests_total",
				Help: "The total number of HTTP requests, by route and status code",
			},
			[]string{"route", "status"},
		),
		loginAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "market_login_attempts_total",
				Help: "The total number of login attempts, by role and result",
			},
			[]string{"role", "result"},
		),
		rateLimitedRequests: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "market_rate_limited_requests_total",
				Help: "The total number of requests rejected by the rate limiter",
			},
		),
		panicCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "market_panic_total",
				Help: "The total number of recovered panics, by goroutine",
			},
			[]string{"goroutine"},
		),
	}
}

var (
	metricsOnce sync.Once
	metrics     *marketPromMetrics
)

// InitMetrics registers the collectors with the default registry. Until it
// is called every recorder below is a no-op.
func InitMetrics() {
	metricsOnce.Do(func() {
		metrics = newMarketPromMetrics()
		metrics.nodeUpUnixSeconds.SetToCurrentTime()
	})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	logx.Info("MONITORING", "Registering prometheus metrics")
	return promhttp.Handler()
}

func SetChainLength(length int) {
	if metrics == nil {
		return
	}
	metrics.chainLength.Set(float64(length))
}

func RecordBlockAppended(action string, seconds float64, length uint64) {
	if metrics == nil {
		return
	}
	metrics.blocksAppended.With(prometheus.Labels{"action": action}).Inc()
	metrics.appendLatency.Observe(seconds)
	metrics.chainLength.Set(float64(length))
}

func RecordVerificationFailure(reason string) {
	if metrics == nil {
		return
	}
	metrics.verificationFailures.With(prometheus.Labels{"reason": reason}).Inc()
}

func RecordHTTPRequest(route string, status int) {
	if metrics == nil {
		return
	}
	metrics.httpRequests.With(prometheus.Labels{
		"route":  route,
		"status": strconv.Itoa(status),
	}).Inc()
}

func RecordLoginAttempt(role string, ok bool) {
	if metrics == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	metrics.loginAttempts.With(prometheus.Labels{"role": role, "result": result}).Inc()
}

func IncreaseRateLimited() {
	if metrics == nil {
		return
	}
	metrics.rateLimitedRequests.Inc()
}

func IncreasePanicCount(goroutine string) {
	if metrics == nil {
		return
	}
	metrics.panicCount.With(prometheus.Labels{"goroutine": goroutine}).Inc()
}

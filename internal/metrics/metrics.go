package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/openrange/backend/internal/flight"
)

var (
	shotsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "golfsim_shots_total",
			Help: "Shots simulated, by landing surface and source",
		},
		[]string{"surface", "source"},
	)
	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "golfsim_result_cache_hits_total",
		Help: "Shot requests answered from the Redis result cache",
	})
	failSafeTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "golfsim_fail_safe_total",
		Help: "Runs stopped by the out-of-range guard",
	})
	timeoutTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "golfsim_timeouts_total",
		Help: "Runs that hit the simulated time cap before settling",
	})
	carryMeters = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "golfsim_carry_meters",
		Help:    "Carry distance of simulated shots",
		Buckets: prometheus.LinearBuckets(0, 25, 14),
	})
	settleSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "golfsim_settle_seconds",
		Help:    "Simulated time until the ball came to rest",
		Buckets: prometheus.LinearBuckets(0, 1, 13),
	})
	runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "golfsim_run_duration_seconds",
		Help:    "Wall-clock time spent integrating one shot",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})
	jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "golfsim_jobs_total",
			Help: "Batch jobs finished, by final status",
		},
		[]string{"status"},
	)
	streamClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "golfsim_ws_clients",
		Help: "Connected websocket clients",
	})
)

func init() {
	prometheus.MustRegister(
		shotsTotal, cacheHits, failSafeTotal, timeoutTotal,
		carryMeters, settleSeconds, runDuration,
		jobsTotal, streamClients,
	)
}

// ObserveShot records a finished run. wallSeconds is the real time it took.
func ObserveShot(surface, source string, res flight.Result, wallSeconds float64) {
	shotsTotal.WithLabelValues(surface, source).Inc()
	carryMeters.Observe(res.Carry)
	settleSeconds.Observe(res.SettleTime)
	runDuration.Observe(wallSeconds)
	if res.FailSafe {
		failSafeTotal.Inc()
	}
	if res.TimedOut {
		timeoutTotal.Inc()
	}
}

func CacheHit() {
	cacheHits.Inc()
}

func JobFinished(status string) {
	jobsTotal.WithLabelValues(status).Inc()
}

func ClientConnected() {
	streamClients.Inc()
}

func ClientDisconnected() {
	streamClients.Dec()
}

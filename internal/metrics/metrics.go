package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the PriorityPoll backend.
// Collectors exist from package init so code paths are safe to instrument
// before Register is called.
var Metrics = struct {
	VotesTotal           *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	RequestsInFlight     prometheus.Gauge
	CacheHits            prometheus.Counter
	CacheMisses          prometheus.Counter
	GamificationFailures prometheus.Counter
	BadgesUnlocked       *prometheus.CounterVec
	DBPoolActive         prometheus.GaugeFunc
	DBPoolIdle           prometheus.GaugeFunc
}{
	VotesTotal: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prioritypoll_votes_total",
			Help: "Vote submissions, by outcome.",
		},
		[]string{"outcome"},
	),
	RequestDuration: prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prioritypoll_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	),
	RequestsInFlight: prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "prioritypoll_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	),
	CacheHits: prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "prioritypoll_cache_hits_total",
			Help: "Total Redis cache hits.",
		},
	),
	CacheMisses: prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "prioritypoll_cache_misses_total",
			Help: "Total Redis cache misses.",
		},
	),
	GamificationFailures: prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "prioritypoll_gamification_failures_total",
			Help: "Profile updates that failed after a vote was recorded.",
		},
	),
	BadgesUnlocked: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prioritypoll_badges_unlocked_total",
			Help: "Badges granted to voter profiles, by badge id.",
		},
		[]string{"badge"},
	),
}

// Register registers all collectors with the default registry. Call once at startup.
func Register(pool *pgxpool.Pool) {
	// DB pool gauges read live stats from pgxpool
	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "prioritypoll_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "prioritypoll_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(Metrics.DBPoolActive)
		prometheus.MustRegister(Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(
		Metrics.VotesTotal,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
		Metrics.CacheHits,
		Metrics.CacheMisses,
		Metrics.GamificationFailures,
		Metrics.BadgesUnlocked,
	)
}

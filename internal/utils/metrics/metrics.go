package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration is the HTTP request latency histogram.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foodtracker_auth_request_duration_seconds",
		Help:    "The request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	// LoginAttemptsTotal counts login attempts by outcome.
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodtracker_auth_login_attempts_total",
		Help: "The total number of login attempts",
	}, []string{"status"})

	// TokenRefreshTotal counts token refreshes by outcome.
	TokenRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodtracker_auth_token_refresh_total",
		Help: "The total number of token refreshes",
	}, []string{"status"})

	// RevocationChecksTotal counts revocation checks by result
	// (cache_hit, store_hit, miss, error).
	RevocationChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodtracker_auth_revocation_checks_total",
		Help: "The total number of token revocation checks",
	}, []string{"result"})

	// RevocationCacheSize is the number of digests in the revocation
	// cache after the latest refresh.
	RevocationCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "foodtracker_auth_revocation_cache_size",
		Help: "The number of revoked token digests held in the in-memory cache",
	})

	// RevocationCacheRefreshTotal counts cache refreshes by outcome.
	RevocationCacheRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodtracker_auth_revocation_cache_refresh_total",
		Help: "The total number of revocation cache refreshes",
	}, []string{"status"})

	// CSRFRejectionsTotal counts requests rejected by the CSRF guard.
	CSRFRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodtracker_auth_csrf_rejections_total",
		Help: "The total number of requests rejected by CSRF validation",
	})

	// AuditWriteFailuresTotal counts audit rows that could not be
	// persisted. Audit writes are best-effort; this is the only place
	// such failures surface.
	AuditWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodtracker_auth_audit_write_failures_total",
		Help: "The total number of audit log writes that failed",
	})
)

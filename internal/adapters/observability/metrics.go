package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "restroom", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "restroom", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	Searches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "restroom", Name: "searches_total", Help: "Proximity searches by outcome."},
		[]string{"outcome"}, // ok|invalid|unavailable
	)
	SearchGroups = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "restroom", Name: "search_groups",
		Help:    "Building groups returned per search.",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})
	SearchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "restroom", Name: "search_duration_seconds",
		Help:    "In-memory search duration seconds.",
		Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
	})
	SnapshotRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "restroom", Name: "snapshot_records", Help: "Records in the published snapshot.",
	})
	SnapshotRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "restroom", Name: "snapshot_refresh_total", Help: "Snapshot refreshes by result."},
		[]string{"result"}, // store|cache|error
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "restroom", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "restroom", Name: "rate_limited_total", Help: "Requests rejected by the rate limiter.",
	})
)

// Serve exposes reg on its own listener. Empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, Searches, SearchGroups, SearchLatency,
		SnapshotRecords, SnapshotRefreshes, CacheEvents, RateLimited)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveSearch(outcome string, groups int, dur time.Duration) {
	Searches.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		SearchGroups.Observe(float64(groups))
		SearchLatency.Observe(dur.Seconds())
	}
}

func SetSnapshotRecords(n int) { SnapshotRecords.Set(float64(n)) }

func ObserveSnapshotRefresh(result string) { SnapshotRefreshes.WithLabelValues(result).Inc() }

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveRateLimited() { RateLimited.Inc() }

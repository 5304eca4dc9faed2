package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fireapi_requests_total",
		Help: "Total HTTP requests by route pattern and status class",
	}, []string{"route", "code"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fireapi_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"route"})
	BatchDatasetsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fireapi_batch_datasets_total",
		Help: "Datasets requested through the batch endpoint, by key and outcome",
	}, []string{"dataset", "outcome"})
	BuildingCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fireapi_building_cache_hits_total",
		Help: "Building footprint cache hits",
	})
	BuildingCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fireapi_building_cache_misses_total",
		Help: "Building footprint cache misses",
	})
	StoreErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fireapi_store_errors_total",
		Help: "Plan store failures by operation",
	}, []string{"op"})
	VillagesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fireapi_villages_loaded",
		Help: "Number of merged villages held in memory",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(BatchDatasetsTotal)
	prometheus.MustRegister(BuildingCacheHitsTotal)
	prometheus.MustRegister(BuildingCacheMissesTotal)
	prometheus.MustRegister(StoreErrorsTotal)
	prometheus.MustRegister(VillagesLoaded)
}

// Handler exposes the registered collectors for scraping at /metrics.
func Handler() http.Handler { return promhttp.Handler() }

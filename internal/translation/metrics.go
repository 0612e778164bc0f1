package translation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "translation_requests_total",
		Help: "Translation requests by outcome (cache_hit, translated, rejected, failed)",
	}, []string{"outcome"})

	cacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "translation_cache_total",
		Help: "Translation cache operations by result",
	}, []string{"result"})

	providerErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "translation_provider_errors_total",
		Help: "Machine translation failures by error kind",
	}, []string{"kind"})

	providerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "translation_provider_duration_seconds",
		Help:    "Latency of machine translation calls",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
	}, []string{"outcome"})
)

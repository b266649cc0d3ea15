package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Search sites.
const (
	SiteWorkspace = "workspace"
	SiteOutside   = "outside"
)

var (
	searchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_total",
			Help:      "Total number of card searches",
		},
		[]string{"site"},
	)

	searchMatches = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_matches",
			Help:      "Number of cards matched per search",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"site"},
	)

	searchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Card search duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"site"},
	)
)

func init() {
	prometheus.MustRegister(searchTotal)
	prometheus.MustRegister(searchMatches)
	prometheus.MustRegister(searchDuration)
}

// ObserveSearch records one search at site.
func ObserveSearch(site string, matches int, took time.Duration) {
	searchTotal.WithLabelValues(site).Inc()
	searchMatches.WithLabelValues(site).Observe(float64(matches))
	searchDuration.WithLabelValues(site).Observe(took.Seconds())
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for upstream fetches and the result cache.
type Metrics struct {
	// Fetch outcomes: "ok", "transport", "status", "decode"
	Fetches *prometheus.CounterVec

	// Duration of a single upstream GET including body decoding
	FetchLatency prometheus.Histogram

	// Cache lookups: "hit", "miss", "error"
	CacheLookups *prometheus.CounterVec

	// Pages accepted by the paginated collector
	PagesCollected prometheus.Counter

	// Items accumulated by the paginated collector
	ItemsCollected prometheus.Counter
}

// New creates a Metrics instance registered with reg. Passing a fresh prometheus.NewRegistry()
// keeps tests independent of the global registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bvvassist_oparl_fetches_total",
			Help: "Total upstream OParl fetches by outcome",
		}, []string{"outcome"}),

		FetchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bvvassist_oparl_fetch_duration_seconds",
			Help:    "Duration of upstream OParl fetches",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bvvassist_cache_lookups_total",
			Help: "Result cache lookups by result",
		}, []string{"result"}),

		PagesCollected: factory.NewCounter(prometheus.CounterOpts{
			Name: "bvvassist_oparl_pages_collected_total",
			Help: "Pages accepted by the paginated collector",
		}),

		ItemsCollected: factory.NewCounter(prometheus.CounterOpts{
			Name: "bvvassist_oparl_items_collected_total",
			Help: "Items accumulated by the paginated collector",
		}),
	}
}

// ObserveFetch records the outcome and duration of one upstream fetch.
func (m *Metrics) ObserveFetch(outcome string, d time.Duration) {
	if m != nil {
		m.Fetches.WithLabelValues(outcome).Inc()
		m.FetchLatency.Observe(d.Seconds())
	}
}

// IncrementCacheLookup records a cache lookup result.
func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

// AddCollectedPage records one page accepted by the collector along with its item count.
func (m *Metrics) AddCollectedPage(items int) {
	if m != nil {
		m.PagesCollected.Inc()
		m.ItemsCollected.Add(float64(items))
	}
}

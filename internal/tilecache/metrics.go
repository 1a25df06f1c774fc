package tilecache

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the cache's Prometheus instruments.
type Metrics struct {
	Hits        prometheus.Counter
	Misses      prometheus.Counter
	Fetches     prometheus.Counter
	FetchErrors prometheus.Counter
	StaleDrops  prometheus.Counter
	Evictions   prometheus.Counter
	Entries     prometheus.Gauge
}

// NewMetrics creates the cache metrics and registers them on reg. A nil
// registerer leaves them unregistered, which is what tests and the offline
// viewer use.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skychart",
			Subsystem: "tilecache",
			Name:      name,
			Help:      help,
		})
	}
	m := &Metrics{
		Hits:        counter("hits_total", "Tiles served from the cache."),
		Misses:      counter("misses_total", "Tiles requested that were not cached."),
		Fetches:     counter("fetches_total", "Batched tile fetches issued."),
		FetchErrors: counter("fetch_errors_total", "Batched tile fetches that failed."),
		StaleDrops:  counter("stale_drops_total", "Fetch results dropped because the epoch moved on."),
		Evictions:   counter("evictions_total", "Tiles evicted past the entry limit."),
		Entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "skychart",
			Subsystem: "tilecache",
			Name:      "entries",
			Help:      "Tiles currently cached.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Hits, m.Misses, m.Fetches, m.FetchErrors, m.StaleDrops, m.Evictions, m.Entries)
	}
	return m
}

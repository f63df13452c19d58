// Package metrics exposes Prometheus counters for the content read and
// resync paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	ContentReads  *prometheus.CounterVec
	OriginFetches *prometheus.CounterVec
	ResyncRuns    *prometheus.CounterVec
}

// New registers and returns the service metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ContentReads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_content_reads_total",
			Help: "Content reads by entity and the tier that satisfied them.",
		}, []string{"entity", "tier"}),
		OriginFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_origin_fetches_total",
			Help: "CMS origin fetches by entity and outcome.",
		}, []string{"entity", "outcome"}),
		ResyncRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_resync_runs_total",
			Help: "Resynchronization runs by outcome.",
		}, []string{"outcome"}),
	}
}

// NewNop returns metrics registered on a throwaway registry, for tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

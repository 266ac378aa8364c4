package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuotePricedTotal counts quote pricing outcomes.
	QuotePricedTotal *prometheus.CounterVec
	// QuoteGrandTotal records priced grand totals in major currency units.
	QuoteGrandTotal *prometheus.HistogramVec
	// PixPayloadTotal counts payment payload generation outcomes.
	PixPayloadTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuotePricedTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_priced_total",
			Help:      "Count of quote pricing attempts by result and fee mode.",
		}, []string{"result", "fee"}))
		QuoteGrandTotal = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_grand_total",
			Help:      "Distribution of priced quote grand totals.",
			Buckets:   []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
		}, []string{"fee"}))
		PixPayloadTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pix_payload_total",
			Help:      "Count of pix payload builds by result.",
		}, []string{"result"}))
	})
}

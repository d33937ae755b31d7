package obs

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// DomainMetrics exposes counters for the business events worth alerting on.
type DomainMetrics struct {
	BookingsCreated    prometheus.Counter
	ProposalsConverted prometheus.Counter
	InvoicesIssued     prometheus.Counter
	CampaignsSwept     *prometheus.CounterVec
}

var domainMetrics *DomainMetrics

// MustRegisterDomainMetrics registers the domain counters once at startup.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &DomainMetrics{
		BookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Total number of bookings created.",
		}),
		ProposalsConverted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposals_converted_total",
			Help:      "Total number of proposals converted into bookings.",
		}),
		InvoicesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_issued_total",
			Help:      "Total number of invoices issued.",
		}),
		CampaignsSwept: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "campaigns_swept_total",
			Help:      "Campaign status transitions applied by the sweep job.",
		}, []string{"to_status"}),
	}
	for _, c := range []prometheus.Collector{m.BookingsCreated, m.ProposalsConverted, m.InvoicesIssued, m.CampaignsSwept} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			panic(fmt.Errorf("register domain metric: %w", err))
		}
	}
	domainMetrics = m
}

// Domain returns the registered domain metrics, or nil before registration.
func Domain() *DomainMetrics {
	return domainMetrics
}

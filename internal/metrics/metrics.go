package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	LeadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bchadmin_leads_total",
			Help: "Leads handled by maintenance runs by outcome",
		},
		[]string{"outcome"}, // kept|deleted|archived|matched
	)

	BatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bchadmin_delete_batches_total",
			Help: "Bulk delete commits by result",
		},
		[]string{"result"}, // committed|failed
	)

	AccountsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bchadmin_accounts_total",
			Help: "Account provisioning and claim verification outcomes",
		},
		[]string{"command", "outcome"},
	)

	AuditEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bchadmin_audit_events_total",
			Help: "Audit events drained into ClickHouse by result",
		},
		[]string{"result"}, // stored|failed|poison
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bchadmin_http_requests_total",
			Help: "Admin API requests by route and status class",
		},
		[]string{"route", "code"},
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		LeadsTotal,
		BatchesTotal,
		AccountsTotal,
		AuditEventsTotal,
		HTTPRequestsTotal,
	}
}

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(collectors()...)
}

// Push sends the current counters of a one-shot run to a Pushgateway.
// It is a no-op when url is empty.
func Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	p := push.New(url, job)
	for _, c := range collectors() {
		p = p.Collector(c)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}

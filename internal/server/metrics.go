package server

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tayloree/order-catalog/internal/catalog"
)

// Metrics records snapshot size, reloads and requests.
type Metrics struct {
	groups   prometheus.Gauge
	items    prometheus.Gauge
	dropped  prometheus.Gauge
	reloads  *prometheus.CounterVec
	requests *prometheus.CounterVec
}

// NewMetrics registers the server metrics on the provided registerer. A
// nil registerer yields a Metrics that records nothing.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		groups: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ordercat_snapshot_groups",
			Help: "Product groups in the current snapshot.",
		}),
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ordercat_snapshot_items",
			Help: "Purchase records kept in the current snapshot.",
		}),
		dropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ordercat_snapshot_dropped_records",
			Help: "Records dropped for an unparseable date in the current snapshot.",
		}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ordercat_reloads_total",
			Help: "Snapshot reloads by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ordercat_http_requests_total",
			Help: "HTTP requests by route pattern and status code.",
		}, []string{"route", "status"}),
	}
	reg.MustRegister(m.groups, m.items, m.dropped, m.reloads, m.requests)
	return m
}

// ObserveSnapshot publishes the size of a newly installed snapshot.
func (m *Metrics) ObserveSnapshot(s *catalog.Snapshot) {
	if m == nil || m.groups == nil {
		return
	}
	m.groups.Set(float64(s.Len()))
	m.items.Set(float64(s.ItemCount()))
	if s != nil {
		m.dropped.Set(float64(s.Dropped))
	}
}

// IncReload counts a reload attempt.
func (m *Metrics) IncReload(ok bool) {
	if m == nil || m.reloads == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.reloads.WithLabelValues(outcome).Inc()
}

// IncRequest counts a served request.
func (m *Metrics) IncRequest(route string, status int) {
	if m == nil || m.requests == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

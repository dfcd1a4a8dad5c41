package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lookup results.
const (
	ResultFound         = "found"
	ResultNotFound      = "not_found"
	ResultInvalid       = "invalid"
	ResultUpstreamError = "upstream_error"
)

var (
	ticketLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_lookups_total",
			Help: "Ticket lookups by result",
		},
		[]string{"result"},
	)

	lookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ticket_lookup_duration_seconds",
			Help:    "Duration of ticket lookups including all upstream page fetches",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	lookupPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ticket_lookup_pages",
			Help:    "Upstream pages fetched per ticket lookup",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)

	upstreamFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendee_api_page_fetches_total",
			Help: "Attendee API page requests by outcome",
		},
		[]string{"outcome"},
	)

	ticketTransfers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_transfers_total",
			Help: "Ticket transfer submissions received by the form sink",
		},
		[]string{"result"},
	)

	rateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticket_lookups_rate_limited_total",
			Help: "Lookups rejected by the rate limiter",
		},
	)
)

// Monitor records service metrics. A nil or disabled Monitor is a no-op.
type Monitor struct {
	enabled bool
}

func NewMonitor(enabled bool) *Monitor {
	return &Monitor{enabled: enabled}
}

func (m *Monitor) on() bool {
	return m != nil && m.enabled
}

// TrackLookup records the outcome of one resolver call.
func (m *Monitor) TrackLookup(result string, pages int, duration time.Duration) {
	if !m.on() {
		return
	}
	ticketLookups.WithLabelValues(result).Inc()
	lookupDuration.Observe(duration.Seconds())
	if pages > 0 {
		lookupPages.Observe(float64(pages))
	}
}

// TrackPageFetch records one attendee API page request.
func (m *Monitor) TrackPageFetch(outcome string) {
	if !m.on() {
		return
	}
	upstreamFetches.WithLabelValues(outcome).Inc()
}

func (m *Monitor) TrackTransfer(result string) {
	if !m.on() {
		return
	}
	ticketTransfers.WithLabelValues(result).Inc()
}

func (m *Monitor) TrackRateLimited() {
	if !m.on() {
		return
	}
	rateLimited.Inc()
}

// Handler exposes the default registry.
func (m *Monitor) Handler() http.Handler {
	return promhttp.Handler()
}

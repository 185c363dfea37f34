package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helpdesk_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "helpdesk_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helpdesk_logins_total",
		Help: "Login attempts by principal kind and result",
	}, []string{"kind", "result"})

	registrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helpdesk_registrations_total",
		Help: "Registration attempts by principal kind and result",
	}, []string{"kind", "result"})

	ticketsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helpdesk_tickets_created_total",
		Help: "Count of tickets created",
	})

	statusUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helpdesk_ticket_status_updates_total",
		Help: "Count of ticket status transitions by target status",
	}, []string{"status"})

	ticketsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "helpdesk_tickets_by_status",
		Help: "Current number of tickets per status",
	}, []string{"status"})

	eventSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "helpdesk_ticket_event_subscribers",
		Help: "Connected WebSocket subscribers on the ticket event feed",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveLogin counts a login attempt for a principal kind
func ObserveLogin(kind, result string) {
	loginsTotal.WithLabelValues(kind, result).Inc()
}

// ObserveRegistration counts a registration attempt for a principal kind
func ObserveRegistration(kind, result string) {
	registrationsTotal.WithLabelValues(kind, result).Inc()
}

// ObserveTicketCreated counts a created ticket
func ObserveTicketCreated() {
	ticketsCreated.Inc()
}

// ObserveStatusUpdate counts a status transition
func ObserveStatusUpdate(status string) {
	statusUpdates.WithLabelValues(status).Inc()
}

// SetTicketsByStatus updates the per-status gauge, fed by the stats worker
func SetTicketsByStatus(status string, count int64) {
	ticketsByStatus.WithLabelValues(status).Set(float64(count))
}

// SetEventSubscribers updates the WebSocket subscriber gauge
func SetEventSubscribers(n int) {
	eventSubscribers.Set(float64(n))
}

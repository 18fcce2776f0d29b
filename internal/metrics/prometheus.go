// Package metrics contains middlewares and counters for metrics gathering.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTP Requests total counter
var totalRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP Requests.",
	},
	[]string{"path"},
)

// HTTP Response status
var duration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "http_duration",
		Help: "HTTP Requests Duration",
	},
	[]string{"path"},
)

// Successfully booked appointments
var appointmentsCreated = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "appointments_created_total",
		Help: "Appointments successfully booked.",
	},
)

// Rejected booking attempts, by rejection reason
var appointmentsRejected = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "appointments_rejected_total",
		Help: "Booking attempts rejected by the scheduler.",
	},
	[]string{"reason"},
)

func init() {
	for _, collector := range []prometheus.Collector{totalRequests, duration, appointmentsCreated, appointmentsRejected} {
		if err := prometheus.Register(collector); err != nil {
			panic(err)
		}
	}
}

// PrometheusMiddleware instruments the given request and register metrics.
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := prometheus.NewTimer(duration.WithLabelValues(r.RequestURI))
		next.ServeHTTP(w, r)
		totalRequests.WithLabelValues(r.RequestURI).Inc()
		timer.ObserveDuration()
	})
}

// IncAppointmentCreated counts a successfully booked appointment.
func IncAppointmentCreated() {
	appointmentsCreated.Inc()
}

// IncAppointmentRejected counts a booking attempt rejected for the given reason.
func IncAppointmentRejected(reason string) {
	appointmentsRejected.WithLabelValues(reason).Inc()
}

// Package metrics defines the prometheus collectors for booking and
// notification outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mockmate_bookings_created_total",
		Help: "Number of bookings committed.",
	})

	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mockmate_bookings_cancelled_total",
		Help: "Number of bookings cancelled.",
	})

	BookingsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mockmate_bookings_completed_total",
		Help: "Number of bookings completed with feedback.",
	})

	NoShowsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mockmate_bookings_no_show_total",
		Help: "Number of past bookings swept to no-show.",
	})

	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mockmate_emails_sent_total",
		Help: "Number of notification emails delivered, by template.",
	}, []string{"template"})

	EmailsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mockmate_emails_failed_total",
		Help: "Number of failed notification sends, by template and failure kind.",
	}, []string{"template", "kind"})
)

// Handler exposes the default registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

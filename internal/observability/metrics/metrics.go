package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloodlink_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bloodlink_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	registrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloodlink_registrations_total",
		Help: "Donor registration attempts by result",
	}, []string{"result"})

	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloodlink_logins_total",
		Help: "Donor login attempts by result",
	}, []string{"result"})

	bloodRequestsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloodlink_blood_requests_created_total",
		Help: "Blood requests created by urgency level",
	}, []string{"urgency"})

	reportsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloodlink_reports_created_total",
		Help: "Abuse reports created by category",
	}, []string{"category", "anonymous"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveRegistration increments the registration counter with a result label.
func ObserveRegistration(result string) {
	registrationsTotal.WithLabelValues(result).Inc()
}

// ObserveLogin increments the login counter with a result label.
func ObserveLogin(result string) {
	loginsTotal.WithLabelValues(result).Inc()
}

// ObserveBloodRequestCreated records a created blood request.
func ObserveBloodRequestCreated(urgency string) {
	bloodRequestsCreated.WithLabelValues(urgency).Inc()
}

// ObserveReportCreated records a created report.
func ObserveReportCreated(category string, anonymous bool) {
	flag := "false"
	if anonymous {
		flag = "true"
	}
	reportsCreated.WithLabelValues(category, flag).Inc()
}

// Package metrics holds the prometheus collectors shared by the API and the mail worker.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Collectors shared by every binary. They are registered by MustRegister.
var (
	// HTTPRequestsTotal counts requests by method, route template and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDurationSeconds observes request latency by method and route template.
	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// AuthRegistrationsTotal counts signup attempts by result.
	AuthRegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Total number of registration attempts.",
		},
		[]string{"result"},
	)

	// AuthLoginsTotal counts login attempts by result.
	AuthLoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total number of login attempts.",
		},
		[]string{"result"},
	)

	// TokensIssuedTotal counts signed tokens by flow (login or confirmation) and result.
	TokensIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_tokens_issued_total",
			Help: "Total number of tokens issued.",
		},
		[]string{"flow", "result"},
	)

	// MailSendTotal counts email hand-offs by channel (api or worker) and result.
	MailSendTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_send_total",
			Help: "Total number of outbound email hand-offs.",
		},
		[]string{"channel", "result"},
	)

	// PhotoOperationsTotal counts photo upload, set_main and delete attempts by result.
	PhotoOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_operations_total",
			Help: "Total number of photo upload, main selection and delete attempts.",
		},
		[]string{"operation", "result"},
	)
)

var registerOnce sync.Once

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		AuthRegistrationsTotal,
		AuthLoginsTotal,
		TokensIssuedTotal,
		MailSendTotal,
		PhotoOperationsTotal,
	}
}

// MustRegister registers every collector on the default registry with a constant service label.
// Later calls are no-ops.
func MustRegister(serviceName string) {
	registerOnce.Do(func() {
		registerer := prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, prometheus.DefaultRegisterer)
		registerer.MustRegister(collectors()...)
	})
}

// Result maps an operation error to the result label.
func Result(err error) string {
	if err != nil {
		return ResultFailure
	}

	return ResultSuccess
}

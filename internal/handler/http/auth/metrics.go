package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var authFailureTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "contest_reminder",
	Subsystem: "http",
	Name:      "auth_failure_total",
	Help:      "Requests rejected by the bearer token middleware.",
})

func recordAuthFailure() {
	authFailureTotal.Inc()
}

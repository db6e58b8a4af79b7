package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"contest-reminder/internal/infra/channel"
)

var (
	dispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contest_reminder",
		Subsystem: "notify",
		Name:      "dispatch_total",
		Help:      "Channel fan-outs attempted, by channel.",
	}, []string{"channel"})

	sendTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contest_reminder",
		Subsystem: "notify",
		Name:      "send_total",
		Help:      "Per-address send outcomes, by channel and status.",
	}, []string{"channel", "status"})

	sendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "contest_reminder",
		Subsystem: "notify",
		Name:      "send_duration_seconds",
		Help:      "Wall time of one channel fan-out for one user.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"channel"})

	cleanupTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contest_reminder",
		Subsystem: "notify",
		Name:      "cleanup_total",
		Help:      "Dead addresses processed by the health manager.",
	}, []string{"address_type", "result"})

	claimTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contest_reminder",
		Subsystem: "notify",
		Name:      "reminder_claim_total",
		Help:      "Reminder dedup claim attempts, by result.",
	}, []string{"result"})
)

func recordDispatch(channelName string) {
	dispatchTotal.WithLabelValues(channelName).Inc()
}

func recordSend(channelName string, status channel.Status) {
	sendTotal.WithLabelValues(channelName, status.String()).Inc()
}

func recordDuration(channelName string, d time.Duration) {
	sendDuration.WithLabelValues(channelName).Observe(d.Seconds())
}

func recordCleanup(addressType, result string, count int) {
	cleanupTotal.WithLabelValues(addressType, result).Add(float64(count))
}

func recordClaim(result string) {
	claimTotal.WithLabelValues(result).Inc()
}

package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contest_reminder",
		Subsystem: "ingest",
		Name:      "run_total",
		Help:      "Ingestion runs, by result.",
	}, []string{"result"})

	upsertTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "contest_reminder",
		Subsystem: "ingest",
		Name:      "upsert_total",
		Help:      "Contests written to the catalog.",
	})
)

func recordRun(result string) {
	runTotal.WithLabelValues(result).Inc()
}

func recordUpserts(n int) {
	upsertTotal.Add(float64(n))
}

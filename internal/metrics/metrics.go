// Package metrics holds the prometheus collectors of the billing engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BillsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_bills_created_total",
		Help: "Bills persisted by the bill engine.",
	})
	BillsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_bills_deleted_total",
		Help: "Bills removed with their stock and ledger effects reversed.",
	})
	BillAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pos_bill_amount",
		Help:    "Total amount per bill.",
		Buckets: prometheus.ExponentialBuckets(100, 2, 12),
	})
	DayCloses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_day_closes_total",
		Help: "Daily summaries written.",
	})
	MonthlyRollups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_monthly_rollups_total",
		Help: "Monthly summaries upserted, by window source.",
	}, []string{"source"})
	JobFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_job_failures_total",
		Help: "Scheduled job runs that ended in an error.",
	}, []string{"job"})
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inventory"

var (
	// SyncsTotal counts sync invocations by outcome ("success", "failure", "dry_run").
	SyncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syncs_total",
			Help:      "Total number of sync invocations",
		},
		[]string{"status"},
	)

	// RowsWritten counts rows the store accepted, by operation.
	RowsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Total number of rows updated or inserted",
		},
		[]string{"operation"},
	)

	// RowWriteFailures counts rows the store rejected, by operation.
	RowWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "row_write_failures_total",
			Help:      "Total number of rejected row writes",
		},
		[]string{"operation"},
	)

	// RecordsSkipped counts records rejected before planning.
	RecordsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Total number of records skipped for a missing key or unknown fields",
		},
	)

	// SyncDuration observes the wall time of a sync pass.
	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Sync pass latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// StoreRows is the number of data rows after the last pass.
	StoreRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_rows",
			Help:      "Number of data rows in the store after the last sync",
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// SyncOutcome is what a finished pass reports to ObserveSync.
type SyncOutcome struct {
	Status         string
	Updated        int
	Added          int
	Total          int
	Skipped        int
	FailedUpdates  int
	FailedInserts  int
	Duration       time.Duration
	TotalIsCurrent bool
}

// ObserveSync records the outcome of one pass.
func ObserveSync(o SyncOutcome) {
	SyncsTotal.WithLabelValues(o.Status).Inc()
	SyncDuration.Observe(o.Duration.Seconds())
	RowsWritten.WithLabelValues("update").Add(float64(o.Updated))
	RowsWritten.WithLabelValues("insert").Add(float64(o.Added))
	RowWriteFailures.WithLabelValues("update").Add(float64(o.FailedUpdates))
	RowWriteFailures.WithLabelValues("insert").Add(float64(o.FailedInserts))
	RecordsSkipped.Add(float64(o.Skipped))
	if o.TotalIsCurrent {
		StoreRows.Set(float64(o.Total))
	}
}

// Middleware instruments requests with RED metrics.
// The route pattern is used as the path label to bound cardinality.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		httpRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the Prometheus exposition format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

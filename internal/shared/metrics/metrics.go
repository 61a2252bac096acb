// Package metrics provides the Prometheus metrics of the application.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"what-to-watch/internal/infrastructure/database"
)

var (
	// HTTPRequestsTotal counts total HTTP requests by method, route, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	OpinionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opinions_created_total",
			Help: "Opinions created, by channel (web, api, import)",
		},
		[]string{"channel"},
	)

	OpinionsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "opinions_deleted_total",
			Help: "Opinions deleted through the API",
		},
	)

	DuplicateTextRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "opinions_duplicate_text_rejected_total",
			Help: "Writes rejected because the text already exists",
		},
	)

	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opinions_import_rows_total",
			Help: "CSV import rows by result (loaded, failed)",
		},
		[]string{"result"},
	)
)

// RecordHTTPRequest records one finished request. path is the route
// template, never the raw URL.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// StatsProvider is implemented by *database.PostgresDB.
type StatsProvider interface {
	Stats() (*database.PoolStats, error)
}

// PoolCollector exports connection pool statistics on every scrape.
type PoolCollector struct {
	db StatsProvider

	acquired *prometheus.Desc
	idle     *prometheus.Desc
	total    *prometheus.Desc
	max      *prometheus.Desc
	acquires *prometheus.Desc
	empty    *prometheus.Desc
	canceled *prometheus.Desc
	waited   *prometheus.Desc
}

func NewPoolCollector(db StatsProvider) *PoolCollector {
	return &PoolCollector{
		db:       db,
		acquired: prometheus.NewDesc("db_pool_acquired_connections", "Connections currently in use", nil, nil),
		idle:     prometheus.NewDesc("db_pool_idle_connections", "Idle connections", nil, nil),
		total:    prometheus.NewDesc("db_pool_total_connections", "All connections in the pool", nil, nil),
		max:      prometheus.NewDesc("db_pool_max_connections", "Configured pool size", nil, nil),
		acquires: prometheus.NewDesc("db_pool_acquires_total", "Connection acquisitions", nil, nil),
		empty:    prometheus.NewDesc("db_pool_empty_acquires_total", "Acquisitions that had to wait for a connection", nil, nil),
		canceled: prometheus.NewDesc("db_pool_canceled_acquires_total", "Acquisitions canceled by their context", nil, nil),
		waited:   prometheus.NewDesc("db_pool_acquire_seconds_total", "Time spent acquiring connections", nil, nil),
	}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquired
	ch <- c.idle
	ch <- c.total
	ch <- c.max
	ch <- c.acquires
	ch <- c.empty
	ch <- c.canceled
	ch <- c.waited
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.db.Stats()
	if err != nil {
		// Pool closed during shutdown
		return
	}

	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(stats.AcquiredConns))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(stats.IdleConns))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(stats.TotalConns))
	ch <- prometheus.MustNewConstMetric(c.max, prometheus.GaugeValue, float64(stats.MaxConns))
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(stats.AcquireCount))
	ch <- prometheus.MustNewConstMetric(c.empty, prometheus.CounterValue, float64(stats.EmptyAcquireCount))
	ch <- prometheus.MustNewConstMetric(c.canceled, prometheus.CounterValue, float64(stats.CanceledAcquireCount))
	ch <- prometheus.MustNewConstMetric(c.waited, prometheus.CounterValue, stats.AcquireDuration.Seconds())
}

// RegisterPoolCollector registers c on the default registry; registering
// twice is not an error.
func RegisterPoolCollector(c *PoolCollector) error {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}

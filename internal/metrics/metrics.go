// Package metrics exposes Prometheus metrics for tagging, sweeps and ingestion.
//
// Metrics (namespace defaults to "backup_retention"):
//   - tags_added_total{tag}: tags written into file names
//   - tags_removed_total{tag}: tags stripped by sweeps
//   - files_removed_total: untagged files deleted
//   - failures_total{op}: per-file rename/remove/stat failures
//   - admissions_total{decision}: keep/reject decisions for new files
//   - files_ingested_total: files copied into the destination
//   - sweep_duration_seconds: duration of a full sweep
//   - last_sweep_timestamp_seconds: unix time of the last finished sweep
//
// A nil *Collector is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registry *prometheus.Registry

	tagsAdded     *prometheus.CounterVec
	tagsRemoved   *prometheus.CounterVec
	filesRemoved  prometheus.Counter
	failures      *prometheus.CounterVec
	admissions    *prometheus.CounterVec
	filesIngested prometheus.Counter
	sweepDuration prometheus.Histogram
	lastSweep     prometheus.Gauge
}

// NewCollector creates and registers all metrics. If registry is nil a new one is created.
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "backup_retention"
	}

	c := &Collector{
		registry: registry,
		tagsAdded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tags_added_total",
			Help:      "Total number of retention tags written into file names",
		}, []string{"tag"}),
		tagsRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tags_removed_total",
			Help:      "Total number of retention tags stripped from file names",
		}, []string{"tag"}),
		filesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_removed_total",
			Help:      "Total number of untagged files deleted",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Total number of per-file filesystem failures",
		}, []string{"op"}),
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admissions_total",
			Help:      "Admission decisions for new backup files",
		}, []string{"decision"}),
		filesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_ingested_total",
			Help:      "Total number of files copied into the destination",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of retention sweeps in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4m
		}),
		lastSweep: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_sweep_timestamp_seconds",
			Help:      "Unix time of the last finished sweep",
		}),
	}

	registry.MustRegister(
		c.tagsAdded,
		c.tagsRemoved,
		c.filesRemoved,
		c.failures,
		c.admissions,
		c.filesIngested,
		c.sweepDuration,
		c.lastSweep,
	)

	return c
}

// Handler serves the collector's registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) TagAdded(tag string) {
	if c == nil {
		return
	}
	c.tagsAdded.WithLabelValues(tag).Inc()
}

func (c *Collector) TagRemoved(tag string) {
	if c == nil {
		return
	}
	c.tagsRemoved.WithLabelValues(tag).Inc()
}

func (c *Collector) FileRemoved() {
	if c == nil {
		return
	}
	c.filesRemoved.Inc()
}

func (c *Collector) Failure(op string) {
	if c == nil {
		return
	}
	c.failures.WithLabelValues(op).Inc()
}

func (c *Collector) Admission(keep bool) {
	if c == nil {
		return
	}
	decision := "reject"
	if keep {
		decision = "keep"
	}
	c.admissions.WithLabelValues(decision).Inc()
}

func (c *Collector) FileIngested() {
	if c == nil {
		return
	}
	c.filesIngested.Inc()
}

func (c *Collector) SweepFinished(d time.Duration, at time.Time) {
	if c == nil {
		return
	}
	c.sweepDuration.Observe(d.Seconds())
	c.lastSweep.Set(float64(at.Unix()))
}

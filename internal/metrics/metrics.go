// ============================================================================
// Hospital Ops Metrics - Prometheus instrumentation
// ============================================================================
//
// Package: internal/metrics
// File: metrics.go
// Purpose: Count engine operations and track record levels
//
// Metric families:
//
//   1. Counters - cumulative:
//      - hospital_operations_total{engine,op,result}
//        result is "ok" or the rejection reason (Full, Empty, ...)
//      - hospital_load_skipped_rows_total{engine}
//        malformed or rejected rows dropped while loading a file
//
//   2. Histogram - distribution:
//      - hospital_save_duration_seconds{engine}
//        full-file rewrite after a mutation
//
//   3. Gauges - current value:
//      - hospital_records{engine}: live record count
//      - hospital_load_duration_seconds: time spent loading all files
//
// Exposure:
//   The collector owns a private registry. There is no HTTP listener; the
//   `metrics` command renders the text exposition format with WriteText.
//
// Example queries against a scraped dump:
//
//   # rejection rate per engine
//   sum by (engine) (hospital_operations_total{result!="ok"})
//
//   # admission queue saturation
//   hospital_records{engine="admission"} / 100
//
// ============================================================================

package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// ResultOK is the result label of a successful operation.
const ResultOK = "ok"

// Collector holds the metric families of one facility.
type Collector struct {
	registry *prometheus.Registry

	operations  *prometheus.CounterVec
	skippedRows *prometheus.CounterVec
	saveLatency *prometheus.HistogramVec

	records      *prometheus.GaugeVec
	loadDuration prometheus.Gauge
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hospital_operations_total",
			Help: "Engine operations by outcome",
		}, []string{"engine", "op", "result"}),
		skippedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hospital_load_skipped_rows_total",
			Help: "Rows skipped while loading a data file",
		}, []string{"engine"}),
		saveLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hospital_save_duration_seconds",
			Help:    "Time taken to rewrite an engine's data file",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"engine"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hospital_records",
			Help: "Current number of records held by an engine",
		}, []string{"engine"}),
		loadDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hospital_load_duration_seconds",
			Help: "Time taken to load all data files at startup",
		}),
	}

	c.registry.MustRegister(
		c.operations,
		c.skippedRows,
		c.saveLatency,
		c.records,
		c.loadDuration,
	)
	return c
}

// RecordOperation counts one operation. result is ResultOK or a rejection
// reason.
func (c *Collector) RecordOperation(engine, op, result string) {
	if result == "" {
		result = ResultOK
	}
	c.operations.WithLabelValues(engine, op, result).Inc()
}

// RecordSkipped adds n skipped rows for engine.
func (c *Collector) RecordSkipped(engine string, n int) {
	if n > 0 {
		c.skippedRows.WithLabelValues(engine).Add(float64(n))
	}
}

// ObserveSave records the duration of one file rewrite.
func (c *Collector) ObserveSave(engine string, d time.Duration) {
	c.saveLatency.WithLabelValues(engine).Observe(d.Seconds())
}

// SetRecords sets the live record count of engine.
func (c *Collector) SetRecords(engine string, n int) {
	c.records.WithLabelValues(engine).Set(float64(n))
}

// SetLoadDuration records how long startup loading took.
func (c *Collector) SetLoadDuration(d time.Duration) {
	c.loadDuration.Set(d.Seconds())
}

// Registry exposes the private registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Gather returns the current metric families.
func (c *Collector) Gather() ([]*dto.MetricFamily, error) {
	return c.registry.Gather()
}

// WriteText renders every family in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to render %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/iveel36/spacetime-sim-2020/core/metrics"
)

// PromRecorder records pipeline runs in Prometheus metrics. Since every
// command is a short-lived process, the registry is written to a
// node-exporter textfile on Flush rather than served over HTTP.
type PromRecorder struct {
	reg       *prometheus.Registry
	textfile  string
	runs      *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	vehicles  *prometheus.CounterVec
	distinct  *prometheus.GaugeVec
	records   *prometheus.CounterVec
	recovered *prometheus.CounterVec
	lastRun   *prometheus.GaugeVec
}

// NewPromRecorder registers pipeline metrics on a fresh registry.
func NewPromRecorder(textfile string) (*PromRecorder, error) {
	return NewPromRecorderWithRegistry(textfile, prometheus.NewRegistry())
}

// NewPromRecorderWithRegistry registers pipeline metrics on reg. A nil
// registry is replaced by a fresh one.
func NewPromRecorderWithRegistry(textfile string, reg *prometheus.Registry) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	r := &PromRecorder{
		reg:      reg,
		textfile: textfile,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spacetime_runs_total",
			Help: "Pipeline runs by pipeline",
		}, []string{"pipeline"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spacetime_run_duration_seconds",
			Help:    "Wall time of a pipeline run",
			Buckets: prometheus.DefBuckets,
		}, []string{"pipeline"}),
		vehicles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spacetime_demand_vehicles_total",
			Help: "Sampled vehicles by outcome",
		}, []string{"network", "mode", "outcome"}),
		distinct: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "spacetime_demand_distinct_depart_times",
			Help: "Distinct depart seconds in the last schedule",
		}, []string{"network"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spacetime_trace_records_total",
			Help: "Trace entries by kind and outcome",
		}, []string{"kind", "outcome"}),
		recovered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spacetime_trace_recovered_documents_total",
			Help: "Logs that needed markup repair",
		}, []string{"kind"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "spacetime_last_run_timestamp_seconds",
			Help: "Completion time of the last run",
		}, []string{"pipeline"}),
	}
	collectors := []prometheus.Collector{r.runs, r.duration, r.vehicles, r.distinct, r.records, r.recovered, r.lastRun}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Registry exposes the underlying registry.
func (r *PromRecorder) Registry() *prometheus.Registry { return r.reg }

// RecordDemand records a demand generation run.
func (r *PromRecorder) RecordDemand(ev coremetrics.DemandEvent) error {
	r.observeRun("demand", ev.Duration, ev.Time)
	r.vehicles.WithLabelValues(ev.Network, ev.Mode, "retained").Add(float64(ev.Retained))
	r.vehicles.WithLabelValues(ev.Network, ev.Mode, "dropped").Add(float64(ev.Requested - ev.Retained))
	r.distinct.WithLabelValues(ev.Network).Set(float64(ev.DistinctTimes))
	return nil
}

// RecordExtraction records a trace extraction run.
func (r *PromRecorder) RecordExtraction(ev coremetrics.ExtractionEvent) error {
	r.observeRun("trace_"+ev.Kind, ev.Duration, ev.Time)
	r.records.WithLabelValues(ev.Kind, "kept").Add(float64(ev.Kept))
	r.records.WithLabelValues(ev.Kind, "dropped").Add(float64(ev.Dropped))
	if ev.Recovered {
		r.recovered.WithLabelValues(ev.Kind).Inc()
	}
	return nil
}

func (r *PromRecorder) observeRun(pipeline string, d time.Duration, at time.Time) {
	r.runs.WithLabelValues(pipeline).Inc()
	r.duration.WithLabelValues(pipeline).Observe(d.Seconds())
	if at.IsZero() {
		at = time.Now()
	}
	r.lastRun.WithLabelValues(pipeline).Set(float64(at.Unix()))
}

// Flush writes the registry to the configured textfile, if any.
func (r *PromRecorder) Flush() error {
	if r.textfile == "" {
		return nil
	}
	if dir := filepath.Dir(r.textfile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return prometheus.WriteToTextfile(r.textfile, r.reg)
}

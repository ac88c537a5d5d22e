package metrics

// Package metrics defines the Recorder interface used to observe demand
// and trace runs. Implementations such as the Prometheus textfile recorder
// and the InfluxDB recorder live in infra/metrics and register themselves
// by name, so several can be combined from configuration through
// NewRecorder.

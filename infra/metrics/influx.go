package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/iveel36/spacetime-sim-2020/core/metrics"
	"github.com/iveel36/spacetime-sim-2020/infra/logger"
)

// InfluxRecorder writes run summaries to an InfluxDB instance using the
// official client.
type InfluxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxRecorder creates a recorder configured for the given endpoint.
func NewInfluxRecorder(url, token, org, bucket string) *InfluxRecorder {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxRecorder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-recorder"),
	}
}

// NewInfluxRecorderWithFallback pings the InfluxDB instance and returns a
// NopRecorder if the health check fails.
func NewInfluxRecorderWithFallback(url, token, org, bucket string) coremetrics.Recorder {
	rec := NewInfluxRecorder(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := rec.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			rec.log.Errorf("influx health check error: %v", err)
		} else {
			rec.log.Errorf("influx health status: %s", health.Status)
		}
		rec.client.Close()
		return coremetrics.NopRecorder{}
	}
	return rec
}

// RecordDemand writes a demand_run point.
func (s *InfluxRecorder) RecordDemand(ev coremetrics.DemandEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("demand_run").
		AddTag("run_id", ev.RunID).
		AddTag("network", ev.Network).
		AddTag("mode", ev.Mode).
		AddField("requested", ev.Requested).
		AddField("retained", ev.Retained).
		AddField("distinct_times", ev.DistinctTimes).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(eventTime(ev.Time))
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordExtraction writes a trace_run point.
func (s *InfluxRecorder) RecordExtraction(ev coremetrics.ExtractionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("trace_run").
		AddTag("run_id", ev.RunID).
		AddTag("kind", ev.Kind).
		AddField("seen", ev.Seen).
		AddField("kept", ev.Kept).
		AddField("dropped", ev.Dropped).
		AddField("recovered", ev.Recovered).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(eventTime(ev.Time))
	return s.writeAPI.WritePoint(ctx, p)
}

// Flush releases the client.
func (s *InfluxRecorder) Flush() error {
	s.client.Close()
	return nil
}

func eventTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

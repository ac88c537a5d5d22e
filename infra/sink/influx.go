package sink

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/iveel36/spacetime-sim-2020/core/trace"
	"github.com/iveel36/spacetime-sim-2020/infra/logger"
)

// InfluxSink writes table rows as points. String columns become tags and
// numeric columns become fields. A point is stamped with the base time plus
// the row's time column, or arrival column for trip tables, in seconds.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	base     time.Time
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given endpoint. A zero base uses the
// current time.
func NewInfluxSink(url, token, org, bucket string, base time.Time) *InfluxSink {
	if base.IsZero() {
		base = time.Now()
	}
	client := influxdb2.NewClientWithOptions(strings.TrimSuffix(url, "/api/v2/write"), token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 10 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		base:     base,
		log:      logger.New("influx-sink"),
	}
}

func (s *InfluxSink) Write(ctx context.Context, t trace.Table) error {
	if err := checkTable(t); err != nil {
		return err
	}
	points := Points(t, s.base)
	if err := s.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("influx sink: %w", err)
	}
	s.log.Debugf("wrote %d %s points", len(points), t.Name)
	return nil
}

// Close releases the client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

// Points converts the rows of t into points measured as t.Name. NaN and
// infinite values are left out since line protocol cannot carry them. A row
// left with no fields yields no point.
func Points(t trace.Table, base time.Time) []*write.Point {
	numeric := numericColumns(t)
	tcol := t.Column("time")
	if tcol < 0 {
		tcol = t.Column("arrival")
	}
	points := make([]*write.Point, 0, len(t.Rows))
	for _, row := range t.Rows {
		p := write.NewPointWithMeasurement(t.Name)
		if t.RunID != "" {
			p.AddTag(runIDColumn, t.RunID)
		}
		for i, c := range t.Columns {
			switch {
			case numeric[i]:
				if f, ok := row[i].(float64); ok && !finite(f) {
					continue
				}
				p.AddField(c, row[i])
			default:
				if v, ok := row[i].(string); ok && v != "" {
					p.AddTag(c, v)
				}
			}
		}
		ts := base
		if tcol >= 0 {
			if secs, ok := row[tcol].(float64); ok && finite(secs) {
				ts = base.Add(time.Duration(secs * float64(time.Second)))
			}
		}
		if len(p.FieldList()) == 0 {
			continue
		}
		points = append(points, p.SetTime(ts))
	}
	return points
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

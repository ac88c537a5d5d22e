package sink

import (
	"context"
	"time"

	"github.com/iveel36/spacetime-sim-2020/core/factory"
	"github.com/iveel36/spacetime-sim-2020/core/trace"
)

// init registers built-in sinks.
func init() {
	_ = trace.RegisterSink("nop", func(map[string]any) (trace.Sink, error) {
		return trace.NopSink{}, nil
	})

	_ = trace.RegisterSink("csv", func(conf map[string]any) (trace.Sink, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewCSVSink(c.Path)
	})

	_ = trace.RegisterSink("json", func(conf map[string]any) (trace.Sink, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewJSONSink(c.Path)
	})

	_ = trace.RegisterSink("sqlite", func(conf map[string]any) (trace.Sink, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "traces.db"
		}
		return NewSQLiteSink(c.Path)
	})

	_ = trace.RegisterSink("postgres", func(conf map[string]any) (trace.Sink, error) {
		var c struct {
			DSN            string `json:"dsn"`
			TimeoutSeconds int    `json:"timeout_seconds"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.TimeoutSeconds <= 0 {
			c.TimeoutSeconds = 10
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(c.TimeoutSeconds)*time.Second)
		defer cancel()
		return NewPostgresSink(ctx, c.DSN)
	})

	_ = trace.RegisterSink("influx", func(conf map[string]any) (trace.Sink, error) {
		var c struct {
			URL      string    `json:"url"`
			Token    string    `json:"token"`
			Org      string    `json:"org"`
			Bucket   string    `json:"bucket"`
			BaseTime time.Time `json:"base_time"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSink(c.URL, c.Token, c.Org, c.Bucket, c.BaseTime), nil
	})
}

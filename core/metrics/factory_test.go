package metrics_test

import (
	"errors"
	"testing"

	"github.com/iveel36/spacetime-sim-2020/core/factory"
	metrics "github.com/iveel36/spacetime-sim-2020/core/metrics"
)

type countRecorder struct {
	demand, extraction, flushes int
	err                         error
}

func (c *countRecorder) RecordDemand(metrics.DemandEvent) error { c.demand++; return c.err }
func (c *countRecorder) RecordExtraction(metrics.ExtractionEvent) error {
	c.extraction++
	return c.err
}
func (c *countRecorder) Flush() error { c.flushes++; return nil }

func TestNewRecorder_Defaults(t *testing.T) {
	r, err := metrics.NewRecorder(nil)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	if _, ok := r.(metrics.NopRecorder); !ok {
		t.Fatalf("expected NopRecorder, got %T", r)
	}
	if _, err := metrics.NewRecorder([]factory.ModuleConfig{{Type: "missing"}}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestNewRecorder_Multi(t *testing.T) {
	_ = metrics.RegisterRecorder("count", func(map[string]any) (metrics.Recorder, error) {
		return &countRecorder{}, nil
	})
	r, err := metrics.NewRecorder([]factory.ModuleConfig{{Type: "count"}, {Type: "count"}})
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	m, ok := r.(*metrics.MultiRecorder)
	if !ok || len(m.Recorders) != 2 {
		t.Fatalf("expected MultiRecorder with two recorders, got %T", r)
	}
}

func TestMultiRecorder_Forwards(t *testing.T) {
	a, b := &countRecorder{}, &countRecorder{}
	m := metrics.NewMultiRecorder(a, b, metrics.NopRecorder{})
	if err := m.RecordDemand(metrics.DemandEvent{}); err != nil {
		t.Fatalf("demand: %v", err)
	}
	if err := m.RecordExtraction(metrics.ExtractionEvent{}); err != nil {
		t.Fatalf("extraction: %v", err)
	}
	if err := m.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if a.demand != 1 || b.extraction != 1 || a.flushes != 1 || b.flushes != 1 {
		t.Fatalf("events not forwarded: %+v %+v", a, b)
	}
	a.err = errors.New("boom")
	if err := m.RecordDemand(metrics.DemandEvent{}); err == nil {
		t.Fatal("expected error")
	}
	if b.demand != 1 {
		t.Fatal("forwarding should stop at the first error")
	}
}

package trace

import (
	"context"
	"errors"

	"github.com/iveel36/spacetime-sim-2020/core/factory"
)

// Sink persists extracted tables.
type Sink interface {
	Write(ctx context.Context, t Table) error
	Close() error
}

// NopSink discards every table.
type NopSink struct{}

func (NopSink) Write(context.Context, Table) error { return nil }
func (NopSink) Close() error                       { return nil }

// MultiSink fans a table out to several sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// Write forwards t to every sink and joins their errors.
func (m *MultiSink) Write(ctx context.Context, t Table) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.Write(ctx, t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink and joins their errors.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var sinkRegistry = factory.NewRegistry[Sink]()

// RegisterSink adds a sink factory identified by name.
func RegisterSink(name string, f factory.Factory[Sink]) error {
	return sinkRegistry.Register(name, f)
}

// NewSink builds the sinks described by cfgs. No configuration yields a
// NopSink and several yield a MultiSink.
func NewSink(cfgs []factory.ModuleConfig) (Sink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]Sink, 0, len(cfgs))
	for _, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			for _, built := range sinks {
				_ = built.Close()
			}
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return NewMultiSink(sinks...), nil
}

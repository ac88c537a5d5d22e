package metrics

import "github.com/iveel36/spacetime-sim-2020/core/factory"

var recorderRegistry = factory.NewRegistry[Recorder]()

// RegisterRecorder adds a recorder factory identified by name.
func RegisterRecorder(name string, f factory.Factory[Recorder]) error {
	return recorderRegistry.Register(name, f)
}

// MultiRecorder fans events out to several recorders.
type MultiRecorder struct {
	Recorders []Recorder
}

// NewMultiRecorder creates a MultiRecorder with the provided recorders.
func NewMultiRecorder(recs ...Recorder) *MultiRecorder {
	return &MultiRecorder{Recorders: recs}
}

// RecordDemand forwards the event, returning the first error encountered.
func (m *MultiRecorder) RecordDemand(ev DemandEvent) error {
	for _, r := range m.Recorders {
		if err := r.RecordDemand(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordExtraction forwards the event, returning the first error encountered.
func (m *MultiRecorder) RecordExtraction(ev ExtractionEvent) error {
	for _, r := range m.Recorders {
		if err := r.RecordExtraction(ev); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every recorder that buffers output.
func (m *MultiRecorder) Flush() error {
	for _, r := range m.Recorders {
		if f, ok := r.(Flusher); ok {
			if err := f.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// NewRecorder creates a Recorder from the provided configuration.
func NewRecorder(cfgs []factory.ModuleConfig) (Recorder, error) {
	if len(cfgs) == 0 {
		return NopRecorder{}, nil
	}
	if len(cfgs) == 1 {
		return recorderRegistry.Create(cfgs[0])
	}
	recs := make([]Recorder, len(cfgs))
	for i, c := range cfgs {
		r, err := recorderRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		recs[i] = r
	}
	return NewMultiRecorder(recs...), nil
}

package config

import (
	"fmt"

	"github.com/iveel36/spacetime-sim-2020/core/factory"
)

// TraceConfig configures trace extraction outputs. The CSV written next to
// the source log is always produced; Sinks adds further destinations.
type TraceConfig struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}

// Validate checks that every sink names a type.
func (c TraceConfig) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("sink %d: type is required", i)
		}
	}
	return nil
}

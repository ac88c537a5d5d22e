package metrics

import "github.com/iveel36/spacetime-sim-2020/core/factory"

// Config defines settings for metrics recorders.
type Config struct {
	Recorders []factory.ModuleConfig `json:"recorders"`
}

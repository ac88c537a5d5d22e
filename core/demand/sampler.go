package demand

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/iveel36/spacetime-sim-2020/core/model"
)

// Sampler draws departures from its own random source.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler returns a Sampler reading from src.
func NewSampler(src rand.Source) *Sampler {
	return &Sampler{rng: rand.New(src)}
}

// NewSeededSampler returns a Sampler whose output is fully determined by seed.
func NewSeededSampler(seed uint64) *Sampler {
	return NewSampler(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate samples req.Count departures. Each vehicle gets the id v_<i>, a
// route picked with replacement and a depart time drawn per req.Mode.
func (s *Sampler) Generate(req Request) (*Schedule, error) {
	req.setDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sched := newSchedule(req.Count, req.Collisions)
	var peak distuv.Normal
	if req.Mode == ModePeak {
		peak = req.peak()
		peak.Src = s.rng
	}
	for i := 0; i < req.Count; i++ {
		route := req.Routes[s.rng.IntN(len(req.Routes))]
		var t int
		if req.Mode == ModeUniform {
			t = s.rng.IntN(req.Horizon)
		} else {
			t = truncatedNormal(peak, 0, float64(req.Horizon))
		}
		sched.add(model.DepartureRecord{
			VehicleID:   model.VehicleID(i),
			VehicleType: req.VehicleType,
			Route:       route,
			DepartTime:  t,
			DepartSpeed: req.DepartSpeed,
		})
	}
	sched.index()
	return sched, nil
}

// truncatedNormal redraws from dist until a value falls in [low, high] and
// truncates the accepted value to whole seconds. Out of range draws are
// discarded, never clamped. Validate bounds the expected number of redraws.
func truncatedNormal(dist distuv.Normal, low, high float64) int {
	for {
		v := dist.Rand()
		if v >= low && v <= high {
			return int(v)
		}
	}
}

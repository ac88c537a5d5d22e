package demand

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/iveel36/spacetime-sim-2020/core/model"
)

// ErrInvalidRequest is returned for requests that cannot be sampled.
var ErrInvalidRequest = errors.New("invalid demand request")

const (
	// DefaultStdDev is the spread of peak demand in seconds.
	DefaultStdDev = 10.0
	// DefaultDepartSpeed is the speed assigned to every departure.
	DefaultDepartSpeed = 10.0
	// DefaultVehicleType is the vehicle type assigned to every departure.
	DefaultVehicleType = "human"
	// MinPeakMass is the smallest share of the peak normal that may fall
	// inside [0, horizon]. Below it rejection sampling would stall.
	MinPeakMass = 1e-4
)

// Mode selects the depart time distribution.
type Mode int

const (
	// ModeUniform draws depart times uniformly over [0, horizon).
	ModeUniform Mode = iota
	// ModePeak draws depart times from a normal centred on horizon/2,
	// rejecting draws outside [0, horizon].
	ModePeak
)

func (m Mode) String() string {
	switch m {
	case ModeUniform:
		return "uniform"
	case ModePeak:
		return "peak"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts a configuration value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uniform", "random":
		return ModeUniform, nil
	case "peak", "normal":
		return ModePeak, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, s)
	}
}

// CollisionPolicy decides what happens when several vehicles are drawn on
// the same depart second.
type CollisionPolicy int

const (
	// CollisionKeep retains every vehicle under its depart second.
	CollisionKeep CollisionPolicy = iota
	// CollisionOverwrite keeps only the last vehicle drawn for a second.
	CollisionOverwrite
)

func (p CollisionPolicy) String() string {
	switch p {
	case CollisionKeep:
		return "keep"
	case CollisionOverwrite:
		return "overwrite"
	default:
		return fmt.Sprintf("collision(%d)", int(p))
	}
}

// ParseCollisionPolicy converts a configuration value into a CollisionPolicy.
// An empty value selects CollisionKeep.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep":
		return CollisionKeep, nil
	case "overwrite":
		return CollisionOverwrite, nil
	default:
		return 0, fmt.Errorf("%w: unknown collision policy %q", ErrInvalidRequest, s)
	}
}

// Request describes one generation run.
type Request struct {
	Routes  []model.Route
	Horizon int // seconds
	Mode    Mode
	Count   int
	// StdDev is the peak spread in seconds. Zero selects DefaultStdDev.
	StdDev float64
	// DepartSpeed is assigned to every record. Zero selects DefaultDepartSpeed.
	DepartSpeed float64
	// VehicleType is assigned to every record. Empty selects DefaultVehicleType.
	VehicleType string
	Collisions  CollisionPolicy
}

func (r *Request) setDefaults() {
	if r.StdDev == 0 {
		r.StdDev = DefaultStdDev
	}
	if r.DepartSpeed == 0 {
		r.DepartSpeed = DefaultDepartSpeed
	}
	if r.VehicleType == "" {
		r.VehicleType = DefaultVehicleType
	}
}

// Validate reports the first problem that prevents sampling. Zero values
// are checked after their defaults are applied.
func (r Request) Validate() error {
	r.setDefaults()
	if len(r.Routes) == 0 {
		return fmt.Errorf("%w: route candidates must not be empty", ErrInvalidRequest)
	}
	if r.Horizon <= 0 {
		return fmt.Errorf("%w: horizon must be positive, got %d", ErrInvalidRequest, r.Horizon)
	}
	if r.Count < 0 {
		return fmt.Errorf("%w: vehicle count must not be negative, got %d", ErrInvalidRequest, r.Count)
	}
	switch r.Mode {
	case ModeUniform:
	case ModePeak:
		if !finite(r.StdDev) || r.StdDev <= 0 {
			return fmt.Errorf("%w: standard deviation must be positive, got %g", ErrInvalidRequest, r.StdDev)
		}
		if m := r.peakMass(); m < MinPeakMass {
			return fmt.Errorf("%w: standard deviation %g leaves only %.2g of draws inside the %ds horizon",
				ErrInvalidRequest, r.StdDev, m, r.Horizon)
		}
	default:
		return fmt.Errorf("%w: unknown mode %s", ErrInvalidRequest, r.Mode)
	}
	if r.Collisions != CollisionKeep && r.Collisions != CollisionOverwrite {
		return fmt.Errorf("%w: unknown collision policy %s", ErrInvalidRequest, r.Collisions)
	}
	if !finite(r.DepartSpeed) || r.DepartSpeed < 0 {
		return fmt.Errorf("%w: depart speed must be a non-negative number, got %g", ErrInvalidRequest, r.DepartSpeed)
	}
	return nil
}

// peak returns the untruncated depart time distribution of peak mode.
func (r Request) peak() distuv.Normal {
	return distuv.Normal{Mu: float64(r.Horizon) / 2, Sigma: r.StdDev}
}

// peakMass is the probability that one peak draw lands in [0, horizon].
func (r Request) peakMass() float64 {
	n := r.peak()
	return n.CDF(float64(r.Horizon)) - n.CDF(0)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

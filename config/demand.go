package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/iveel36/spacetime-sim-2020/core/demand"
	"github.com/iveel36/spacetime-sim-2020/core/model"
	"github.com/iveel36/spacetime-sim-2020/infra/mqtt"
)

// RouteConfig is one candidate origin/destination pair.
type RouteConfig struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// HistogramConfig controls the depart time histogram report.
type HistogramConfig struct {
	Enabled bool `json:"enabled"`
	// Dir defaults to ~/ray_results/real_time_metrics/hist.
	Dir string `json:"dir"`
}

// DemandConfig configures demand generation.
type DemandConfig struct {
	Network        string          `json:"network"`
	Output         string          `json:"output"`
	Routes         []RouteConfig   `json:"routes"`
	HorizonSeconds int             `json:"horizon_seconds"`
	Mode           string          `json:"mode"`
	Count          int             `json:"count"`
	StdDevSeconds  float64         `json:"std_dev_seconds"`
	DepartSpeed    float64         `json:"depart_speed"`
	VehicleType    string          `json:"vehicle_type"`
	Collisions     string          `json:"collisions"`
	Seed           int64           `json:"seed"`
	Histogram      HistogramConfig `json:"histogram"`
	MQTT           mqtt.Config     `json:"mqtt"`
}

// SetDefaults applies fallback values for optional fields.
func (c *DemandConfig) SetDefaults() {
	if c.Network == "" {
		c.Network = "network"
	}
	if c.Output == "" {
		c.Output = c.Network + ".rou.xml"
	}
	if c.HorizonSeconds == 0 {
		c.HorizonSeconds = 3600
	}
	if c.Mode == "" {
		c.Mode = demand.ModeUniform.String()
	}
	if c.StdDevSeconds == 0 {
		c.StdDevSeconds = demand.DefaultStdDev
	}
	if c.DepartSpeed == 0 {
		c.DepartSpeed = demand.DefaultDepartSpeed
	}
	if c.VehicleType == "" {
		c.VehicleType = demand.DefaultVehicleType
	}
	if c.Collisions == "" {
		c.Collisions = demand.CollisionKeep.String()
	}
	c.MQTT.SetDefaults()
}

// Validate checks the configuration ranges. Route presence is checked when
// a run starts, since routes may come from the command line.
func (c DemandConfig) Validate() error {
	if c.HorizonSeconds <= 0 {
		return fmt.Errorf("horizon_seconds must be >0")
	}
	if c.Count < 0 {
		return fmt.Errorf("count must not be negative")
	}
	if math.IsNaN(c.StdDevSeconds) || math.IsInf(c.StdDevSeconds, 0) || c.StdDevSeconds <= 0 {
		return fmt.Errorf("std_dev_seconds must be a finite number >0, got %g", c.StdDevSeconds)
	}
	if math.IsNaN(c.DepartSpeed) || math.IsInf(c.DepartSpeed, 0) || c.DepartSpeed < 0 {
		return fmt.Errorf("depart_speed must be a finite number >=0, got %g", c.DepartSpeed)
	}
	if _, err := demand.ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := demand.ParseCollisionPolicy(c.Collisions); err != nil {
		return err
	}
	for i, r := range c.Routes {
		if strings.TrimSpace(r.Origin) == "" || strings.TrimSpace(r.Destination) == "" {
			return fmt.Errorf("route %d: origin and destination are required", i)
		}
	}
	return c.MQTT.Validate()
}

// ModelRoutes converts the configured routes.
func (c DemandConfig) ModelRoutes() []model.Route {
	out := make([]model.Route, len(c.Routes))
	for i, r := range c.Routes {
		out[i] = model.Route{Origin: r.Origin, Destination: r.Destination}
	}
	return out
}

// ParseRoute reads an "origin:destination" pair.
func ParseRoute(s string) (RouteConfig, error) {
	origin, dest, ok := strings.Cut(s, ":")
	origin, dest = strings.TrimSpace(origin), strings.TrimSpace(dest)
	if !ok || origin == "" || dest == "" {
		return RouteConfig{}, fmt.Errorf("route %q: want origin:destination", s)
	}
	return RouteConfig{Origin: origin, Destination: dest}, nil
}

// Request builds a sampling request from the configuration.
func (c DemandConfig) Request() (demand.Request, error) {
	mode, err := demand.ParseMode(c.Mode)
	if err != nil {
		return demand.Request{}, err
	}
	policy, err := demand.ParseCollisionPolicy(c.Collisions)
	if err != nil {
		return demand.Request{}, err
	}
	return demand.Request{
		Routes:      c.ModelRoutes(),
		Horizon:     c.HorizonSeconds,
		Mode:        mode,
		Count:       c.Count,
		StdDev:      c.StdDevSeconds,
		DepartSpeed: c.DepartSpeed,
		VehicleType: c.VehicleType,
		Collisions:  policy,
	}, nil
}

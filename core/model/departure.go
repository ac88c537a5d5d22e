package model

import "fmt"

// Route is an origin/destination pair of network segment ids.
type Route struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

func (r Route) String() string { return r.Origin + "->" + r.Destination }

// DepartureRecord describes one vehicle entering the network.
type DepartureRecord struct {
	VehicleID   string  `json:"vehicle_id"`
	VehicleType string  `json:"vehicle_type"`
	Route       Route   `json:"route"`
	DepartTime  int     `json:"depart_time"`  // seconds from the start of the horizon
	DepartSpeed float64 `json:"depart_speed"` // m/s
}

// VehicleID returns the sequential id of the i-th generated vehicle.
func VehicleID(i int) string { return fmt.Sprintf("v_%d", i) }

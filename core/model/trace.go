package model

// StepRecord is one vehicle observation at one simulated timestep of an
// emission log.
type StepRecord struct {
	Time             float64
	CO               float64
	Y                float64
	CO2              float64
	Electricity      float64
	Type             string
	ID               string
	EClass           string
	Waiting          float64
	NOx              float64
	Fuel             float64
	HC               float64
	X                float64
	Route            string
	RelativePosition float64
	Noise            float64
	Angle            float64
	PMx              float64
	Speed            float64
	EdgeID           string
	LaneNumber       string
}

// TripRecord summarises one finished trip from a tripinfo log.
type TripRecord struct {
	TravelTime float64
	Arrival    float64
	ID         string
}

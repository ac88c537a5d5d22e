package trace

import (
	"strconv"
	"strings"

	"github.com/iveel36/spacetime-sim-2020/core/model"
)

// field binds one source attribute to a record setter. set returns false
// when the raw value cannot be converted.
type field[R any] struct {
	attr string
	set  func(r *R, raw string) bool
}

func floatField[R any](attr string, dst func(r *R) *float64) field[R] {
	return field[R]{attr: attr, set: func(r *R, raw string) bool {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return false
		}
		*dst(r) = v
		return true
	}}
}

func stringField[R any](attr string, dst func(r *R) *string) field[R] {
	return field[R]{attr: attr, set: func(r *R, raw string) bool {
		*dst(r) = raw
		return true
	}}
}

// fill applies every field to rec. It stops at the first absent or
// unconvertible attribute and reports false.
func fill[R any](n *Node, rec *R, fields []field[R]) bool {
	for _, f := range fields {
		raw, ok := n.Attr(f.attr)
		if !ok || !f.set(rec, raw) {
			return false
		}
	}
	return true
}

// SplitLane splits a lane id at its last underscore into edge id and lane
// index. A lane without an underscore yields an empty edge id.
func SplitLane(lane string) (edgeID, laneNumber string) {
	i := strings.LastIndex(lane, "_")
	if i < 0 {
		return "", lane
	}
	return lane[:i], lane[i+1:]
}

var stepFields = []field[model.StepRecord]{
	floatField("CO", func(r *model.StepRecord) *float64 { return &r.CO }),
	floatField("y", func(r *model.StepRecord) *float64 { return &r.Y }),
	floatField("CO2", func(r *model.StepRecord) *float64 { return &r.CO2 }),
	floatField("electricity", func(r *model.StepRecord) *float64 { return &r.Electricity }),
	stringField("type", func(r *model.StepRecord) *string { return &r.Type }),
	stringField("id", func(r *model.StepRecord) *string { return &r.ID }),
	stringField("eclass", func(r *model.StepRecord) *string { return &r.EClass }),
	floatField("waiting", func(r *model.StepRecord) *float64 { return &r.Waiting }),
	floatField("NOx", func(r *model.StepRecord) *float64 { return &r.NOx }),
	floatField("fuel", func(r *model.StepRecord) *float64 { return &r.Fuel }),
	floatField("HC", func(r *model.StepRecord) *float64 { return &r.HC }),
	floatField("x", func(r *model.StepRecord) *float64 { return &r.X }),
	stringField("route", func(r *model.StepRecord) *string { return &r.Route }),
	floatField("pos", func(r *model.StepRecord) *float64 { return &r.RelativePosition }),
	floatField("noise", func(r *model.StepRecord) *float64 { return &r.Noise }),
	floatField("angle", func(r *model.StepRecord) *float64 { return &r.Angle }),
	floatField("PMx", func(r *model.StepRecord) *float64 { return &r.PMx }),
	floatField("speed", func(r *model.StepRecord) *float64 { return &r.Speed }),
	{attr: "lane", set: func(r *model.StepRecord, raw string) bool {
		r.EdgeID, r.LaneNumber = SplitLane(raw)
		return true
	}},
}

var tripFields = []field[model.TripRecord]{
	floatField("duration", func(r *model.TripRecord) *float64 { return &r.TravelTime }),
	floatField("arrival", func(r *model.TripRecord) *float64 { return &r.Arrival }),
	stringField("id", func(r *model.TripRecord) *string { return &r.ID }),
}

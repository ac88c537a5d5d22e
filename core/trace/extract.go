package trace

import (
	"sort"
	"strconv"
	"strings"

	"github.com/iveel36/spacetime-sim-2020/core/model"
)

const (
	timestepElement = "timestep"
	tripElement     = "tripinfo"
)

// Stats counts the entries seen during one extraction pass.
type Stats struct {
	Seen    int
	Kept    int
	Dropped int
}

// ExtractSteps flattens an emission log into one record per vehicle and
// timestep, sorted by vehicle id. Entries lacking any required attribute are
// dropped.
func ExtractSteps(root *Node) ([]model.StepRecord, Stats) {
	var (
		out []model.StepRecord
		st  Stats
	)
	if root == nil {
		return out, st
	}
	for _, ts := range root.FindAll(timestepElement) {
		raw, ok := ts.Attr("time")
		t, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		valid := ok && err == nil
		for _, entry := range ts.Children {
			st.Seen++
			rec := model.StepRecord{Time: t}
			if !valid || !fill(entry, &rec, stepFields) {
				st.Dropped++
				continue
			}
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	st.Kept = len(out)
	return out, st
}

// ExtractTrips reads every tripinfo entry of a trip log, sorted by vehicle
// id. Entries lacking any required attribute are dropped.
func ExtractTrips(root *Node) ([]model.TripRecord, Stats) {
	var (
		out []model.TripRecord
		st  Stats
	)
	if root == nil {
		return out, st
	}
	for _, entry := range root.FindAll(tripElement) {
		st.Seen++
		var rec model.TripRecord
		if !fill(entry, &rec, tripFields) {
			st.Dropped++
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	st.Kept = len(out)
	return out, st
}

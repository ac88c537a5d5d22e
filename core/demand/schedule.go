package demand

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/iveel36/spacetime-sim-2020/core/model"
)

// Schedule holds sampled departures indexed by depart second.
type Schedule struct {
	// Times lists the distinct depart seconds in increasing order.
	Times []int
	// ByTime maps a depart second to the vehicles leaving at it, in
	// generation order.
	ByTime map[int][]model.DepartureRecord
	// Requested is the number of vehicles that were drawn.
	Requested int
	Policy    CollisionPolicy
}

// Stats summarises a schedule.
type Stats struct {
	Requested     int
	Retained      int
	DistinctTimes int
	Mean          float64
	StdDev        float64
}

func newSchedule(requested int, policy CollisionPolicy) *Schedule {
	return &Schedule{
		ByTime:    make(map[int][]model.DepartureRecord),
		Requested: requested,
		Policy:    policy,
	}
}

func (s *Schedule) add(rec model.DepartureRecord) {
	if s.Policy == CollisionOverwrite {
		s.ByTime[rec.DepartTime] = []model.DepartureRecord{rec}
		return
	}
	s.ByTime[rec.DepartTime] = append(s.ByTime[rec.DepartTime], rec)
}

func (s *Schedule) index() {
	s.Times = make([]int, 0, len(s.ByTime))
	for t := range s.ByTime {
		s.Times = append(s.Times, t)
	}
	sort.Ints(s.Times)
}

// Len returns the number of retained vehicles.
func (s *Schedule) Len() int {
	n := 0
	for _, recs := range s.ByTime {
		n += len(recs)
	}
	return n
}

// Dropped returns how many drawn vehicles were lost to collisions.
func (s *Schedule) Dropped() int { return s.Requested - s.Len() }

// Records flattens the schedule by depart time, then generation order.
func (s *Schedule) Records() []model.DepartureRecord {
	out := make([]model.DepartureRecord, 0, s.Len())
	for _, t := range s.Times {
		out = append(out, s.ByTime[t]...)
	}
	return out
}

// DepartTimes returns the depart time of every retained vehicle in
// scheduler order.
func (s *Schedule) DepartTimes() []float64 {
	out := make([]float64, 0, s.Len())
	for _, t := range s.Times {
		for range s.ByTime[t] {
			out = append(out, float64(t))
		}
	}
	return out
}

// Stats computes summary statistics over retained depart times.
func (s *Schedule) Stats() Stats {
	st := Stats{Requested: s.Requested, Retained: s.Len(), DistinctTimes: len(s.Times)}
	x := s.DepartTimes()
	switch len(x) {
	case 0:
	case 1:
		st.Mean = x[0]
	default:
		st.Mean, st.StdDev = stat.MeanStdDev(x, nil)
	}
	return st
}

package demand

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iveel36/spacetime-sim-2020/core/model"
)

var ab = []model.Route{{Origin: "A", Destination: "B"}}

func TestGenerateUniformScenario(t *testing.T) {
	s := NewSeededSampler(7)
	sched, err := s.Generate(Request{Routes: ab, Horizon: 100, Mode: ModeUniform, Count: 3, Collisions: CollisionOverwrite})
	require.NoError(t, err)

	assert.LessOrEqual(t, len(sched.Times), 3)
	assert.Equal(t, 3, sched.Requested)
	for i := 1; i < len(sched.Times); i++ {
		assert.Less(t, sched.Times[i-1], sched.Times[i])
	}
	for _, rec := range sched.Records() {
		assert.Equal(t, ab[0], rec.Route)
		assert.GreaterOrEqual(t, rec.DepartTime, 0)
		assert.Less(t, rec.DepartTime, 100)
		assert.Equal(t, DefaultDepartSpeed, rec.DepartSpeed)
		assert.Equal(t, DefaultVehicleType, rec.VehicleType)
	}
}

func TestGenerateUniformBounds(t *testing.T) {
	s := NewSeededSampler(1)
	sched, err := s.Generate(Request{Routes: ab, Horizon: 50, Mode: ModeUniform, Count: 2000})
	require.NoError(t, err)
	for _, tm := range sched.Times {
		if tm < 0 || tm >= 50 {
			t.Fatalf("uniform depart time out of range: %d", tm)
		}
	}
}

func TestGeneratePeakBounds(t *testing.T) {
	s := NewSeededSampler(2)
	// wide spread forces many rejections at both ends
	sched, err := s.Generate(Request{Routes: ab, Horizon: 20, Mode: ModePeak, StdDev: 30, Count: 1000})
	require.NoError(t, err)
	for _, tm := range sched.Times {
		if tm < 0 || tm > 20 {
			t.Fatalf("peak depart time out of range: %d", tm)
		}
	}
	assert.Equal(t, 1000, sched.Len())
}

func TestGeneratePeakCentred(t *testing.T) {
	s := NewSeededSampler(3)
	sched, err := s.Generate(Request{Routes: ab, Horizon: 3600, Mode: ModePeak, Count: 5000})
	require.NoError(t, err)
	st := sched.Stats()
	// truncation to whole seconds biases the mean down by about half a second
	assert.InDelta(t, 1800, st.Mean, 1.5)
	assert.InDelta(t, DefaultStdDev, st.StdDev, 1)
}

func TestGenerateTimesStrictlyIncreasingUnderCollisions(t *testing.T) {
	for _, policy := range []CollisionPolicy{CollisionKeep, CollisionOverwrite} {
		s := NewSeededSampler(4)
		sched, err := s.Generate(Request{Routes: ab, Horizon: 10, Mode: ModeUniform, Count: 500, Collisions: policy})
		require.NoError(t, err)
		require.LessOrEqual(t, len(sched.Times), 10)
		seen := map[int]bool{}
		for i, tm := range sched.Times {
			if seen[tm] {
				t.Fatalf("%s: duplicate time %d", policy, tm)
			}
			seen[tm] = true
			if i > 0 && sched.Times[i-1] >= tm {
				t.Fatalf("%s: times not strictly increasing", policy)
			}
		}
		assert.Len(t, sched.ByTime, len(sched.Times))
	}
}

func TestGenerateCollisionPolicies(t *testing.T) {
	req := Request{Routes: ab, Horizon: 5, Mode: ModeUniform, Count: 100}

	keep, err := NewSeededSampler(5).Generate(req)
	require.NoError(t, err)
	assert.Equal(t, 100, keep.Len())
	assert.Equal(t, 0, keep.Dropped())

	req.Collisions = CollisionOverwrite
	over, err := NewSeededSampler(5).Generate(req)
	require.NoError(t, err)
	assert.Equal(t, len(over.Times), over.Len())
	assert.Equal(t, 100-over.Len(), over.Dropped())

	// the surviving record of each second is the last one drawn for it
	for _, tm := range over.Times {
		kept := keep.ByTime[tm]
		require.Len(t, over.ByTime[tm], 1)
		assert.Equal(t, kept[len(kept)-1], over.ByTime[tm][0])
	}
}

func TestGenerateDeterministic(t *testing.T) {
	req := Request{
		Routes:  []model.Route{{Origin: "A", Destination: "B"}, {Origin: "C", Destination: "D"}},
		Horizon: 600,
		Mode:    ModePeak,
		Count:   50,
	}
	a, err := NewSeededSampler(42).Generate(req)
	require.NoError(t, err)
	b, err := NewSeededSampler(42).Generate(req)
	require.NoError(t, err)
	assert.Equal(t, a.Records(), b.Records())
}

func TestGenerateSequentialIDs(t *testing.T) {
	sched, err := NewSeededSampler(9).Generate(Request{Routes: ab, Horizon: 1000, Count: 20})
	require.NoError(t, err)
	ids := map[string]bool{}
	for _, rec := range sched.Records() {
		ids[rec.VehicleID] = true
	}
	for i := 0; i < 20; i++ {
		assert.True(t, ids[model.VehicleID(i)], "missing %s", model.VehicleID(i))
	}
}

func TestGenerateRecordsInSchedulerOrder(t *testing.T) {
	sched, err := NewSeededSampler(10).Generate(Request{Routes: ab, Horizon: 30, Count: 200})
	require.NoError(t, err)
	recs := sched.Records()
	for i := 1; i < len(recs); i++ {
		if recs[i-1].DepartTime > recs[i].DepartTime {
			t.Fatalf("records not ordered by depart time at %d", i)
		}
	}
}

func TestGenerateZeroCount(t *testing.T) {
	sched, err := NewSeededSampler(1).Generate(Request{Routes: ab, Horizon: 10, Count: 0})
	require.NoError(t, err)
	assert.Empty(t, sched.Times)
	assert.Empty(t, sched.Records())
	st := sched.Stats()
	assert.Equal(t, 0.0, st.Mean)
	assert.False(t, math.IsNaN(st.StdDev))
}

func TestGenerateInvalidRequests(t *testing.T) {
	cases := map[string]Request{
		"no routes":        {Horizon: 10, Count: 1},
		"zero horizon":     {Routes: ab, Horizon: 0, Count: 1},
		"negative horizon": {Routes: ab, Horizon: -5, Count: 1},
		"negative count":   {Routes: ab, Horizon: 10, Count: -1},
		"unknown mode":     {Routes: ab, Horizon: 10, Count: 1, Mode: Mode(9)},
		"negative stddev":  {Routes: ab, Horizon: 10, Count: 1, Mode: ModePeak, StdDev: -1},
		"nan stddev":       {Routes: ab, Horizon: 100, Count: 1, Mode: ModePeak, StdDev: math.NaN()},
		"inf stddev":       {Routes: ab, Horizon: 100, Count: 1, Mode: ModePeak, StdDev: math.Inf(1)},
		"-inf stddev":      {Routes: ab, Horizon: 100, Count: 1, Mode: ModePeak, StdDev: math.Inf(-1)},
		"huge stddev":      {Routes: ab, Horizon: 3600, Count: 1, Mode: ModePeak, StdDev: 1e9},
		"nan speed":        {Routes: ab, Horizon: 10, Count: 1, DepartSpeed: math.NaN()},
		"inf speed":        {Routes: ab, Horizon: 10, Count: 1, DepartSpeed: math.Inf(1)},
		"unknown policy":   {Routes: ab, Horizon: 10, Count: 1, Collisions: CollisionPolicy(7)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewSeededSampler(1).Generate(req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRequest))
		})
	}
}

func TestValidateAppliesDefaults(t *testing.T) {
	req := Request{Routes: ab, Horizon: 100, Count: 1, Mode: ModePeak}
	assert.NoError(t, req.Validate())
	assert.Zero(t, req.StdDev, "Validate must not modify the request")

	// Wide spreads stay valid while enough mass falls inside the horizon.
	req.StdDev = 1000
	assert.NoError(t, req.Validate())
	req.StdDev = 1e7
	assert.ErrorIs(t, req.Validate(), ErrInvalidRequest)

	// Uniform mode ignores the spread.
	req.Mode, req.StdDev = ModeUniform, math.NaN()
	assert.NoError(t, req.Validate())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Peak")
	require.NoError(t, err)
	assert.Equal(t, ModePeak, m)
	m, err = ParseMode("uniform")
	require.NoError(t, err)
	assert.Equal(t, ModeUniform, m)
	_, err = ParseMode("bimodal")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestParseCollisionPolicy(t *testing.T) {
	p, err := ParseCollisionPolicy("")
	require.NoError(t, err)
	assert.Equal(t, CollisionKeep, p)
	p, err = ParseCollisionPolicy("overwrite")
	require.NoError(t, err)
	assert.Equal(t, CollisionOverwrite, p)
	_, err = ParseCollisionPolicy("merge")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

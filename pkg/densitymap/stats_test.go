package densitymap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func daySpan(n int) []time.Time {
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}

func TestComputeMapStatsSingleActiveLogger(t *testing.T) {
	s := &DetectionSeries{
		Species: "Wood Thrush",
		Dates:   daySpan(3),
		Sites:   map[string][]float64{"L01": {0, 10, 0}},
	}
	st := ComputeMapStats(s)

	assert.Equal(t, 10.0, st.GlobalMax)
	assert.Equal(t, []float64{0, 10, 0}, st.DailyTotals)
	assert.Equal(t, []int{0, 1, 0}, st.ActiveSiteCounts)
	assert.Equal(t, 1, st.TotalActiveSites)
	// A single site offers no inequality to measure.
	assert.Equal(t, []float64{0, 0, 0}, st.DailyClustering)
	assert.Equal(t, []float64{0, 10, 10}, st.CumulativeTotal)
}

func TestComputeMapStatsFloors(t *testing.T) {
	s := &DetectionSeries{
		Species: "Corncrake",
		Dates:   daySpan(2),
		Sites:   map[string][]float64{"L01": {0, 0}},
	}
	st := ComputeMapStats(s)
	assert.Equal(t, 1.0, st.GlobalMax, "globalMax floors at 1 to guard division")
	assert.Equal(t, 1.0, st.MaxDailyTotal)
	assert.Equal(t, 0, st.TotalActiveSites)
}

func TestTrendFlatHistory(t *testing.T) {
	counts := []float64{10, 10, 10, 10, 10, 10, 10, 15}
	s := &DetectionSeries{
		Species: "Skylark",
		Dates:   daySpan(8),
		Sites:   map[string][]float64{"L01": counts},
	}
	st := ComputeMapStats(s)

	for d := 0; d < 7; d++ {
		assert.Zerof(t, st.DailyTrends[d], "day %d has insufficient history", d)
	}
	assert.InDelta(t, 0.5, st.DailyTrends[7], 1e-12)
}

func TestTrendClampAndZeroMean(t *testing.T) {
	counts := []float64{0, 0, 0, 0, 0, 0, 0, 50, 50, 0}
	s := &DetectionSeries{
		Species: "Skylark",
		Dates:   daySpan(10),
		Sites:   map[string][]float64{"L01": counts},
	}
	st := ComputeMapStats(s)

	// Day 7: trailing mean is zero, trend defined as 0.
	assert.Zero(t, st.DailyTrends[7])
	// Day 8: huge relative jump clamps at +1.
	assert.Equal(t, 1.0, st.DailyTrends[8])
	for d, tr := range st.DailyTrends {
		assert.GreaterOrEqualf(t, tr, -1.0, "day %d", d)
		assert.LessOrEqualf(t, tr, 1.0, "day %d", d)
	}
}

func TestClusteringBounds(t *testing.T) {
	s := &DetectionSeries{
		Species: "Nightjar",
		Dates:   daySpan(4),
		Sites: map[string][]float64{
			"L01": {5, 0, 100, 3},
			"L02": {5, 0, 0, 1},
			"L03": {5, 0, 0, 9},
			"L04": {5, 0, 0, 2},
		},
	}
	st := ComputeMapStats(s)

	// Equal non-zero counts across all sites: perfectly uniform.
	assert.Zero(t, st.DailyClustering[0])
	// No detections at all: defined as zero, no division.
	assert.Zero(t, st.DailyClustering[1])
	// All detections at one of four sites: strongly concentrated.
	assert.InDelta(t, 0.75, st.DailyClustering[2], 1e-12)
	for d, g := range st.DailyClustering {
		assert.GreaterOrEqualf(t, g, 0.0, "day %d", d)
		assert.LessOrEqualf(t, g, 1.0, "day %d", d)
	}
}

func TestClusteringCountsSilentSites(t *testing.T) {
	// Silent sites stay in the concentration vector as zeros: two equal
	// active sites out of three is still a concentrated day, not a uniform
	// one. Gini over sorted [0, 4, 4] = (2*(2*4+3*4))/(3*8) - 4/3 = 1/3.
	s := &DetectionSeries{
		Species: "Quail",
		Dates:   daySpan(1),
		Sites: map[string][]float64{
			"L01": {4},
			"L02": {4},
			"L03": {0},
		},
	}
	st := ComputeMapStats(s)
	assert.InDelta(t, 1.0/3.0, st.DailyClustering[0], 1e-12)
}

func TestCumulativeMonotone(t *testing.T) {
	s := &DetectionSeries{
		Species: "Bittern",
		Dates:   daySpan(6),
		Sites: map[string][]float64{
			"L01": {1, 0, 4, 2, 0, 7},
			"L02": {0, 3, 0, 0, 5, 0},
		},
	}
	st := ComputeMapStats(s)

	prev := 0.0
	sum := 0.0
	for d, c := range st.CumulativeTotal {
		require.GreaterOrEqualf(t, c, prev, "cumulative decreased at day %d", d)
		prev = c
		sum += st.DailyTotals[d]
	}
	assert.Equal(t, sum, st.CumulativeTotal[len(st.CumulativeTotal)-1])
}

func TestMissingSiteDataReadsAsZero(t *testing.T) {
	s := &DetectionSeries{
		Species: "Wryneck",
		Dates:   daySpan(3),
		Sites: map[string][]float64{
			"L01": {1, 2}, // short slice: day 2 absent
		},
	}
	assert.Equal(t, 2.0, s.CountAt("L01", 1))
	assert.Zero(t, s.CountAt("L01", 2))
	assert.Zero(t, s.CountAt("L99", 0))
	assert.Zero(t, s.CountAt("L01", -1))

	st := ComputeMapStats(s)
	assert.Equal(t, []float64{1, 2, 0}, st.DailyTotals)
}

func TestStatsAtFractionalIndex(t *testing.T) {
	s := &DetectionSeries{
		Species: "Corncrake",
		Dates:   daySpan(3),
		Sites:   map[string][]float64{"L01": {0, 10, 4}},
	}
	st := ComputeMapStats(s)

	now := st.At(0.5)
	assert.Equal(t, 1, now.Day, "frac >= 0.5 snaps day-resolution signals forward")
	assert.InDelta(t, 5.0, now.DailyTotal, 1e-12, "smooth quantities interpolate")
	assert.InDelta(t, 5.0, now.CumulativeTotal, 1e-12)
	assert.Equal(t, 1, now.ActiveSites)

	last := st.At(99)
	assert.Equal(t, 2, last.Day, "index clamps to the season")
	assert.Equal(t, 14.0, last.CumulativeTotal)

	empty := &SpeciesMapStats{}
	assert.Zero(t, empty.At(1.5).DailyTotal)
}

func TestStatsCacheKeyedBySpecies(t *testing.T) {
	a := &DetectionSeries{Species: "Wood Thrush", Dates: daySpan(2), Sites: map[string][]float64{"L01": {1, 2}}}
	b := &DetectionSeries{Species: "Skylark", Dates: daySpan(2), Sites: map[string][]float64{"L01": {9, 9}}}
	cache := NewStatsCache()

	stA := cache.Get(a)
	stB := cache.Get(b)
	require.NotSame(t, stA, stB, "distinct species must never share a cache slot")
	assert.Same(t, stA, cache.Get(a), "repeated access returns the cached object")
	assert.Same(t, stB, cache.Get(b))

	cache.Invalidate("Wood Thrush")
	assert.NotSame(t, stA, cache.Get(a), "invalidated species recomputes")
	assert.Same(t, stB, cache.Get(b), "other species keep their cached stats")

	cache.Clear()
	assert.NotSame(t, stB, cache.Get(b))
}

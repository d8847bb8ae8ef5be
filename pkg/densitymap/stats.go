package densitymap

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// trendLookback is the trailing window, in days, the trend compares against.
const trendLookback = 7

// SpeciesMapStats is the precomputed full-season analytic backbone for one
// species: everything the map and the side panel read per frame without
// recomputation. All per-day slices are index-aligned with the series' Dates.
type SpeciesMapStats struct {
	// GlobalMax is the largest single-site single-day count, floored at 1
	// so weight normalization never divides by zero.
	GlobalMax float64
	// DailyTotals sums all site counts per day.
	DailyTotals []float64
	// MaxDailyTotal is max(DailyTotals), floored at 1.
	MaxDailyTotal float64
	// DailyTrends is the signed relative change of each day's total against
	// the trailing 7-day mean, clamped to [-1, 1]. Zero for the first 7 days.
	DailyTrends []float64
	// DailyClustering is the Gini coefficient of each day's per-site counts:
	// 0 means detections spread evenly across sites, values toward 1 mean
	// concentration in a few sites.
	DailyClustering []float64
	// CumulativeTotal is the running sum of DailyTotals.
	CumulativeTotal []float64
	// ActiveSiteCounts is the number of sites with a non-zero count per day.
	ActiveSiteCounts []int
	// TotalActiveSites counts sites with at least one non-zero day.
	TotalActiveSites int
}

// ComputeMapStats derives the full season statistics for a species in three
// passes over the site×day matrix. It is a pure function of the series;
// callers should go through a StatsCache rather than invoking it per frame.
func ComputeMapStats(s *DetectionSeries) *SpeciesMapStats {
	days := s.Len()
	st := &SpeciesMapStats{
		DailyTotals:      make([]float64, days),
		DailyTrends:      make([]float64, days),
		DailyClustering:  make([]float64, days),
		CumulativeTotal:  make([]float64, days),
		ActiveSiteCounts: make([]int, days),
	}

	// Pass 1: totals, maxima, active sites, and the per-day value matrix
	// the Gini computation needs.
	siteNames := make([]string, 0, len(s.Sites))
	for name := range s.Sites {
		siteNames = append(siteNames, name)
	}
	sort.Strings(siteNames)

	dayValues := make([][]float64, days)
	for d := 0; d < days; d++ {
		dayValues[d] = make([]float64, len(siteNames))
	}
	for si, name := range siteNames {
		everActive := false
		for d := 0; d < days; d++ {
			v := s.CountAt(name, d)
			dayValues[d][si] = v
			st.DailyTotals[d] += v
			if v > st.GlobalMax {
				st.GlobalMax = v
			}
			if v > 0 {
				st.ActiveSiteCounts[d]++
				everActive = true
			}
		}
		if everActive {
			st.TotalActiveSites++
		}
	}
	for _, t := range st.DailyTotals {
		if t > st.MaxDailyTotal {
			st.MaxDailyTotal = t
		}
	}
	if st.GlobalMax < 1 {
		st.GlobalMax = 1
	}
	if st.MaxDailyTotal < 1 {
		st.MaxDailyTotal = 1
	}

	// Pass 2: rolling trend and per-day concentration.
	for d := 0; d < days; d++ {
		if d >= trendLookback {
			prevMean := stat.Mean(st.DailyTotals[d-trendLookback:d], nil)
			if prevMean > 0 {
				st.DailyTrends[d] = clamp((st.DailyTotals[d]-prevMean)/prevMean, -1, 1)
			}
		}
		st.DailyClustering[d] = gini(dayValues[d], st.DailyTotals[d])
	}

	// Pass 3: cumulative running total.
	running := 0.0
	for d := 0; d < days; d++ {
		running += st.DailyTotals[d]
		st.CumulativeTotal[d] = running
	}
	return st
}

// StatSnapshot is the side panel's view of the season at one moment.
type StatSnapshot struct {
	Day             int
	DailyTotal      float64
	Trend           float64
	Clustering      float64
	ActiveSites     int
	CumulativeTotal float64
}

// At returns the statistics for an integer or fractional time position.
// The smooth quantities (daily total, cumulative total) interpolate between
// the adjacent days; the day-resolution signals (trend, clustering, active
// sites) snap to the nearest day.
func (st *SpeciesMapStats) At(index float64) StatSnapshot {
	n := len(st.DailyTotals)
	if n == 0 {
		return StatSnapshot{}
	}
	index = clamp(index, 0, float64(n-1))
	lo := int(math.Floor(index))
	hi := lo + 1
	if hi >= n {
		hi = lo
	}
	frac := index - float64(lo)
	nearest := lo
	if frac >= 0.5 {
		nearest = hi
	}
	return StatSnapshot{
		Day:             nearest,
		DailyTotal:      st.DailyTotals[lo] + (st.DailyTotals[hi]-st.DailyTotals[lo])*frac,
		Trend:           st.DailyTrends[nearest],
		Clustering:      st.DailyClustering[nearest],
		ActiveSites:     st.ActiveSiteCounts[nearest],
		CumulativeTotal: st.CumulativeTotal[lo] + (st.CumulativeTotal[hi]-st.CumulativeTotal[lo])*frac,
	}
}

// gini computes the Gini coefficient over one day's per-site counts.
// A zero day total short-circuits to 0; tiny negative results from
// floating-point underflow are floored at 0.
func gini(values []float64, total float64) float64 {
	n := len(values)
	if n == 0 || total <= 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	weighted := 0.0
	for j, v := range sorted {
		weighted += float64(j+1) * v
	}
	g := (2*weighted)/(float64(n)*floats.Sum(sorted)) - float64(n+1)/float64(n)
	if g < 0 {
		return 0
	}
	return g
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// StatsCache memoizes SpeciesMapStats per species identity. Stats for the
// same species are computed once and shared; distinct species never alias.
type StatsCache struct {
	mu    sync.Mutex
	stats map[string]*SpeciesMapStats
}

func NewStatsCache() *StatsCache {
	return &StatsCache{stats: make(map[string]*SpeciesMapStats)}
}

// Get returns the cached stats for the series' species, computing them on
// first access.
func (c *StatsCache) Get(s *DetectionSeries) *SpeciesMapStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.stats[s.Species]; ok {
		return st
	}
	st := ComputeMapStats(s)
	c.stats[s.Species] = st
	return st
}

// Invalidate drops one species' cached stats, forcing recomputation on the
// next Get. Used when live events mutate a series.
func (c *StatsCache) Invalidate(species string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.stats, species)
}

// Clear drops all cached stats.
func (c *StatsCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = make(map[string]*SpeciesMapStats)
}

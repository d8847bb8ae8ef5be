package densitymap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateByWeek(t *testing.T) {
	// 2025-04-02 is a Wednesday, so ten days straddle two Monday-aligned
	// UTC weeks: Mar 31 – Apr 6 (5 days in range) and Apr 7 – 13 (5 days).
	start := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, 10)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	s := &DetectionSeries{
		Species: "Wood Thrush",
		Dates:   dates,
		Sites: map[string][]float64{
			"L01":   {1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			"L02":   {0, 1, 0, 1, 0, 1, 0, 1, 0, 1},
			"GHOST": {100, 100, 100, 100, 100, 100, 100, 100, 100, 100},
		},
	}
	positions := map[string]Logger{
		"L01": {Name: "L01", Lat: 56.1, Lon: 10.2},
		"L02": {Name: "L02", Lat: 56.2, Lon: 10.3},
	}

	weeks := AggregateByWeek(s, positions)
	require.Len(t, weeks, 2)

	for _, wk := range weeks {
		assert.Equal(t, time.Monday, wk.Start.Weekday())
		assert.Equal(t, wk.Start.AddDate(0, 0, 6), wk.End)
		assert.NotContains(t, wk.SiteTotals, "GHOST", "sites without positions are dropped")
	}
	assert.True(t, weeks[0].Start.Before(weeks[1].Start))

	// Week 1 covers day indices 0-4, week 2 indices 5-9.
	assert.Equal(t, 1.0+2+3+4+5, weeks[0].SiteTotals["L01"])
	assert.Equal(t, 6.0+7+8+9+10, weeks[1].SiteTotals["L01"])
	assert.Equal(t, weeks[0].SiteTotals["L01"], weeks[0].MaxSiteTotal)

	// Conservation: week totals sum to all counts of positioned sites.
	var weekSum, raw float64
	for _, wk := range weeks {
		weekSum += wk.Total
	}
	for name := range positions {
		for d := range dates {
			raw += s.CountAt(name, d)
		}
	}
	assert.Equal(t, raw, weekSum)
}

func TestAggregateByWeekEmptyPositions(t *testing.T) {
	s := &DetectionSeries{
		Species: "Skylark",
		Dates:   daySpan(3),
		Sites:   map[string][]float64{"L01": {1, 1, 1}},
	}
	weeks := AggregateByWeek(s, map[string]Logger{})
	require.NotEmpty(t, weeks)
	for _, wk := range weeks {
		assert.Zero(t, wk.Total)
		assert.Empty(t, wk.SiteTotals)
	}
}

func TestBinTotals(t *testing.T) {
	totals := []float64{1, 2, 3, 4, 5}
	dates := daySpan(5)

	binned, starts := BinTotals(totals, dates, 2)
	assert.Equal(t, []float64{3, 7, 5}, binned, "last bin is shorter")
	require.Len(t, starts, 3)
	assert.Equal(t, dates[0], starts[0])
	assert.Equal(t, dates[2], starts[1])
	assert.Equal(t, dates[4], starts[2])

	passthrough, _ := BinTotals(totals, dates, 1)
	assert.Equal(t, totals, passthrough)

	single, singleStarts := BinTotals(totals, dates, 10)
	assert.Equal(t, []float64{15}, single, "bin larger than series covers everything")
	assert.Equal(t, []time.Time{dates[0]}, singleStarts)

	clamped, _ := BinTotals(totals, dates, 0)
	assert.Equal(t, totals, clamped, "sizes below 1 behave as 1")
}

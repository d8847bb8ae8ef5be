package densitymap

import (
	"fmt"
	"time"
)

// WeeklyAggregate holds one Monday-aligned UTC calendar week of detections:
// per-site sums, the week total and the largest single-site weekly sum.
type WeeklyAggregate struct {
	Start, End   time.Time
	Label        string
	SiteTotals   map[string]float64
	Total        float64
	MaxSiteTotal float64
}

// AggregateByWeek buckets a species' daily counts into Monday-starting UTC
// weeks, ordered by week start. Only sites present in the positions map are
// included; detections from sites without known coordinates are silently
// dropped, since they cannot be placed on the map anyway.
func AggregateByWeek(s *DetectionSeries, positions map[string]Logger) []WeeklyAggregate {
	byStart := make(map[time.Time]*WeeklyAggregate)
	var order []time.Time
	for d, date := range s.Dates {
		start := weekStart(date)
		wk, ok := byStart[start]
		if !ok {
			end := start.AddDate(0, 0, 6)
			wk = &WeeklyAggregate{
				Start:      start,
				End:        end,
				Label:      fmt.Sprintf("%s – %s", start.Format("Jan 2"), end.Format("Jan 2")),
				SiteTotals: make(map[string]float64),
			}
			byStart[start] = wk
			order = append(order, start)
		}
		for name := range s.Sites {
			if _, known := positions[name]; !known {
				continue
			}
			v := s.CountAt(name, d)
			if v == 0 {
				continue
			}
			wk.SiteTotals[name] += v
			wk.Total += v
			if wk.SiteTotals[name] > wk.MaxSiteTotal {
				wk.MaxSiteTotal = wk.SiteTotals[name]
			}
		}
	}
	// Dates are ascending, so first-seen order is already by week start.
	weeks := make([]WeeklyAggregate, 0, len(order))
	for _, start := range order {
		weeks = append(weeks, *byStart[start])
	}
	return weeks
}

// weekStart truncates a date to the Monday of its UTC calendar week.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	back := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -back)
}

// BinTotals sums daily totals over consecutive fixed-size bins and returns
// the binned values with one representative date per bin (the bin's first
// day). The last bin may be shorter; size 1 is a passthrough and a size of
// at least the series length yields a single bin. Sizes below 1 are treated
// as 1.
func BinTotals(totals []float64, dates []time.Time, size int) ([]float64, []time.Time) {
	if size < 1 {
		size = 1
	}
	var binned []float64
	var starts []time.Time
	for i := 0; i < len(totals); i += size {
		end := i + size
		if end > len(totals) {
			end = len(totals)
		}
		sum := 0.0
		for _, v := range totals[i:end] {
			sum += v
		}
		binned = append(binned, sum)
		if i < len(dates) {
			starts = append(starts, dates[i])
		}
	}
	return binned, starts
}

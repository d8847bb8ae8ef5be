// Package densitymap implements the computational core of the chorusmap
// visualization: geographic projection, Gaussian kernel density fields,
// temporal aggregation, per-species season statistics and frame-paced
// playback over a field season of acoustic logger detections.
package densitymap

import "time"

// Logger is a fixed acoustic sensor at a known geographic position.
// Loggers are keyed by name; names are unique within a deployment.
type Logger struct {
	Name string
	Lat  float64
	Lon  float64
}

// LatLon is a single WGS84 vertex, used for perimeter polygon rings.
type LatLon struct {
	Lat float64
	Lon float64
}

// DetectionSeries holds one species' full-season detection counts. Dates is
// ascending; Mean and every per-site slice are index-aligned with Dates.
// Detections are sparse: an absent site or a short slice reads as zero.
type DetectionSeries struct {
	Species string
	Dates   []time.Time
	Mean    []float64
	Sites   map[string][]float64
}

// Len returns the number of days in the season.
func (s *DetectionSeries) Len() int {
	return len(s.Dates)
}

// CountAt returns the detection count for a site on a given day index.
// Missing sites and out-of-range indices read as zero.
func (s *DetectionSeries) CountAt(site string, day int) float64 {
	if day < 0 || day >= len(s.Dates) {
		return 0
	}
	counts, ok := s.Sites[site]
	if !ok || day >= len(counts) {
		return 0
	}
	return counts[day]
}

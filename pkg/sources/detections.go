package sources

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/skovlyst/chorusmap/pkg/densitymap"
)

// rawSeries is the wire format of one species' season file:
// {"dates": ["2025-04-01", ...], "mean": [...], "sites": {"L01": [...], ...}}
// with every array index-aligned to dates.
type rawSeries struct {
	Dates []string             `json:"dates"`
	Mean  []float64            `json:"mean"`
	Sites map[string][]float64 `json:"sites"`
}

type rawPosition struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ParseSeries decodes a detection-series JSON document for one species.
func ParseSeries(species string, data []byte) (*densitymap.DetectionSeries, error) {
	var raw rawSeries
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding %s series: %w", species, err)
	}
	if len(raw.Dates) == 0 {
		return nil, fmt.Errorf("series for %s has no dates", species)
	}
	dates := make([]time.Time, len(raw.Dates))
	for i, d := range raw.Dates {
		t, err := time.ParseInLocation("2006-01-02", d, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("bad date %q in %s series: %w", d, species, err)
		}
		dates[i] = t
	}
	if raw.Sites == nil {
		raw.Sites = make(map[string][]float64)
	}
	return &densitymap.DetectionSeries{
		Species: species,
		Dates:   dates,
		Mean:    raw.Mean,
		Sites:   raw.Sites,
	}, nil
}

// ParseLoggers decodes the logger-position document, a mapping from logger
// name to {latitude, longitude}. Loggers come back sorted by name.
func ParseLoggers(data []byte) ([]densitymap.Logger, error) {
	var raw map[string]rawPosition
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding logger positions: %w", err)
	}
	loggers := make([]densitymap.Logger, 0, len(raw))
	for name, pos := range raw {
		loggers = append(loggers, densitymap.Logger{Name: name, Lat: pos.Latitude, Lon: pos.Longitude})
	}
	sort.Slice(loggers, func(i, j int) bool { return loggers[i].Name < loggers[j].Name })
	return loggers, nil
}

// Loggers fetches and decodes the deployment's logger positions.
func (l *Loader) Loggers() ([]densitymap.Logger, error) {
	data, err := l.FetchBytes("loggers.json")
	if err != nil {
		return nil, err
	}
	return ParseLoggers(data)
}

// Series fetches and decodes one species' detection series.
func (l *Loader) Series(species string) (*densitymap.DetectionSeries, error) {
	data, err := l.FetchBytes("detections/" + speciesSlug(species) + ".json")
	if err != nil {
		return nil, err
	}
	return ParseSeries(species, data)
}

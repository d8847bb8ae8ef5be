package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seriesFixture = `{
	"dates": ["2025-04-01", "2025-04-02", "2025-04-03"],
	"mean": [0.5, 2.0, 1.0],
	"sites": {
		"L01": [1, 4, 2],
		"L02": [0, 2, 0]
	}
}`

func TestParseSeries(t *testing.T) {
	s, err := ParseSeries("Wood Thrush", []byte(seriesFixture))
	require.NoError(t, err)

	assert.Equal(t, "Wood Thrush", s.Species)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), s.Dates[0])
	assert.Equal(t, []float64{0.5, 2.0, 1.0}, s.Mean)
	assert.Equal(t, 4.0, s.CountAt("L01", 1))
	assert.Zero(t, s.CountAt("L03", 1), "unknown site reads as zero")
}

func TestParseSeriesErrors(t *testing.T) {
	_, err := ParseSeries("X", []byte(`{"dates": []}`))
	assert.Error(t, err, "empty date axis is rejected")

	_, err = ParseSeries("X", []byte(`{"dates": ["04/01/2025"]}`))
	assert.Error(t, err, "non-ISO dates are rejected")

	_, err = ParseSeries("X", []byte(`not json`))
	assert.Error(t, err)
}

func TestParseSeriesNoSites(t *testing.T) {
	s, err := ParseSeries("X", []byte(`{"dates": ["2025-04-01"]}`))
	require.NoError(t, err)
	assert.NotNil(t, s.Sites)
	assert.Zero(t, s.CountAt("L01", 0))
}

func TestParseLoggers(t *testing.T) {
	data := []byte(`{
		"L02": {"latitude": 56.2, "longitude": 10.3},
		"L01": {"latitude": 56.1, "longitude": 10.2}
	}`)
	loggers, err := ParseLoggers(data)
	require.NoError(t, err)
	require.Len(t, loggers, 2)
	assert.Equal(t, "L01", loggers[0].Name, "loggers come back sorted by name")
	assert.Equal(t, 56.1, loggers[0].Lat)
	assert.Equal(t, 10.3, loggers[1].Lon)
}

func TestSpeciesSlug(t *testing.T) {
	assert.Equal(t, "wood_thrush", speciesSlug("Wood Thrush"))
	assert.Equal(t, "skylark", speciesSlug("Skylark"))
}

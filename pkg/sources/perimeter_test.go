package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const perimeterFixture = `{
	"type": "FeatureCollection",
	"features": [{
		"type": "Feature",
		"properties": {"name": "reserve"},
		"geometry": {
			"type": "Polygon",
			"coordinates": [[
				[10.18, 56.07],
				[10.32, 56.07],
				[10.32, 56.15],
				[10.18, 56.15],
				[10.18, 56.07]
			]]
		}
	}]
}`

func TestParsePerimeter(t *testing.T) {
	rings, err := ParsePerimeter([]byte(perimeterFixture))
	require.NoError(t, err)
	require.Len(t, rings, 1)
	require.Len(t, rings[0], 5)

	// GeoJSON coordinates are [lon, lat]; the ring must come out lat/lon.
	assert.Equal(t, 56.07, rings[0][0].Lat)
	assert.Equal(t, 10.18, rings[0][0].Lon)
}

func TestParsePerimeterMultiPolygon(t *testing.T) {
	data := []byte(`{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"properties": {},
			"geometry": {
				"type": "MultiPolygon",
				"coordinates": [
					[[[10.1, 56.0], [10.2, 56.0], [10.2, 56.1], [10.1, 56.0]]],
					[[[10.4, 56.2], [10.5, 56.2], [10.5, 56.3], [10.4, 56.2]]]
				]
			}
		}]
	}`)
	rings, err := ParsePerimeter(data)
	require.NoError(t, err)
	assert.Len(t, rings, 2)
}

func TestParsePerimeterInvalid(t *testing.T) {
	_, err := ParsePerimeter([]byte(`{"bogus": true}`))
	assert.Error(t, err)
}

package sources

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"
	"github.com/skovlyst/chorusmap/pkg/densitymap"
)

// ParsePerimeter extracts the reserve boundary rings from a GeoJSON
// document. Polygon and MultiPolygon features are flattened into one ring
// list; coordinates are WGS84 [lon, lat] pairs as GeoJSON specifies. The
// rings are consumed read-only for the background overlay, never analyzed.
func ParsePerimeter(data []byte) ([][]densitymap.LatLon, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decoding perimeter geojson: %w", err)
	}
	var rings [][]densitymap.LatLon
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		if f.Geometry.IsPolygon() {
			rings = append(rings, polygonRings(f.Geometry.Polygon)...)
		} else if f.Geometry.IsMultiPolygon() {
			for _, poly := range f.Geometry.MultiPolygon {
				rings = append(rings, polygonRings(poly)...)
			}
		}
	}
	return rings, nil
}

func polygonRings(poly [][][]float64) [][]densitymap.LatLon {
	rings := make([][]densitymap.LatLon, 0, len(poly))
	for _, ring := range poly {
		converted := make([]densitymap.LatLon, len(ring))
		for i, coord := range ring {
			converted[i] = densitymap.LatLon{Lat: coord[1], Lon: coord[0]}
		}
		rings = append(rings, converted)
	}
	return rings
}

// Perimeter fetches the optional boundary overlay. A missing perimeter is
// not an error: the overlay is simply omitted.
func (l *Loader) Perimeter() ([][]densitymap.LatLon, error) {
	data, err := l.FetchBytes("perimeter.geojson")
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParsePerimeter(data)
}

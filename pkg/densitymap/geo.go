package densitymap

import (
	"errors"
	"fmt"
	"math"
)

// DefaultPadding is the fraction by which BoundsFor expands the tight
// lat/lon envelope on each axis.
const DefaultPadding = 0.12

// ErrDegenerateBounds is returned when a bounding box has no extent on one
// axis, which leaves the projection scale undefined.
var ErrDegenerateBounds = errors.New("densitymap: bounds have zero extent")

// Bounds is a padded bounding rectangle around the logger deployment.
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// BoundsFor computes the bounding box of the given loggers, expanded by the
// padding fraction independently on each axis. With fewer than two distinct
// positions the result is degenerate; NewProjection rejects it.
func BoundsFor(loggers []Logger, padding float64) Bounds {
	if len(loggers) == 0 {
		return Bounds{}
	}
	b := Bounds{
		MinLat: loggers[0].Lat, MaxLat: loggers[0].Lat,
		MinLon: loggers[0].Lon, MaxLon: loggers[0].Lon,
	}
	for _, lg := range loggers[1:] {
		b.MinLat = math.Min(b.MinLat, lg.Lat)
		b.MaxLat = math.Max(b.MaxLat, lg.Lat)
		b.MinLon = math.Min(b.MinLon, lg.Lon)
		b.MaxLon = math.Max(b.MaxLon, lg.Lon)
	}
	padLat := (b.MaxLat - b.MinLat) * padding
	padLon := (b.MaxLon - b.MinLon) * padding
	b.MinLat -= padLat
	b.MaxLat += padLat
	b.MinLon -= padLon
	b.MaxLon += padLon
	return b
}

// CenterLat returns the latitude at the vertical middle of the bounds.
func (b Bounds) CenterLat() float64 {
	return (b.MinLat + b.MaxLat) / 2
}

// Projection maps WGS84 coordinates into a pixel viewport. The scale corrects
// longitude compression with cos(centerLat), fits the whole bounded area on
// the limiting axis with a 10% zoom margin, and centers it with symmetric
// offsets. The same parameters project any point, not just loggers.
type Projection struct {
	bounds        Bounds
	width, height int
	cosLat        float64
	scale         float64
	offX, offY    float64
}

// NewProjection builds a projection for the given bounds and viewport size.
// Zero-extent bounds or a zero-size viewport are precondition violations and
// return ErrDegenerateBounds.
func NewProjection(b Bounds, width, height int) (*Projection, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("densitymap: invalid viewport %dx%d", width, height)
	}
	latSpan := b.MaxLat - b.MinLat
	lonSpan := b.MaxLon - b.MinLon
	if latSpan <= 0 || lonSpan <= 0 {
		return nil, ErrDegenerateBounds
	}
	cosLat := math.Cos(b.CenterLat() * math.Pi / 180)
	effW := lonSpan * cosLat
	scale := math.Min(float64(width)/effW, float64(height)/latSpan) * 0.9
	return &Projection{
		bounds: b,
		width:  width,
		height: height,
		cosLat: cosLat,
		scale:  scale,
		offX:   (float64(width) - effW*scale) / 2,
		offY:   (float64(height) - latSpan*scale) / 2,
	}, nil
}

// Project maps a lat/lon pair to viewport pixel coordinates (y grows down).
func (p *Projection) Project(lat, lon float64) (x, y float64) {
	x = p.offX + (lon-p.bounds.MinLon)*p.cosLat*p.scale
	y = p.offY + (p.bounds.MaxLat-lat)*p.scale
	return x, y
}

// Unproject inverts Project, recovering the lat/lon for a pixel position.
func (p *Projection) Unproject(x, y float64) (lat, lon float64) {
	lon = p.bounds.MinLon + (x-p.offX)/(p.cosLat*p.scale)
	lat = p.bounds.MaxLat - (y-p.offY)/p.scale
	return lat, lon
}

// Size returns the viewport dimensions the projection was built for.
func (p *Projection) Size() (width, height int) {
	return p.width, p.height
}

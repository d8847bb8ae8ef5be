package densitymap

import (
	"image/color"
	"math"
)

// Source is a weighted point in screen space feeding the density field.
// Weight is expected in [0, 1]; non-positive weights contribute nothing.
type Source struct {
	X, Y   float64
	Weight float64
}

// Field is a per-pixel scalar density field over a viewport. Cells is
// row-major, Max is the largest cell value of this time slice. The field is
// normalized against its own Max before color mapping, so intensity resets
// relative to each frame's peak rather than the season's; that is the
// documented contract of the visualization, not an oversight.
type Field struct {
	Width, Height int
	Cells         []float64
	Max           float64
}

// kernelCutoff bounds each source's contribution window. Beyond three
// bandwidths the Gaussian is under 1.2% of its peak.
const kernelCutoff = 3.0

// ComputeField accumulates a Gaussian kernel density field from the given
// sources. Each cell sums weight*exp(-d²/(2·bandwidth²)) over all sources.
// An empty or all-zero source set yields a zero field with Max 0.
func ComputeField(sources []Source, width, height int, bandwidth float64) *Field {
	f := &Field{
		Width:  width,
		Height: height,
		Cells:  make([]float64, width*height),
	}
	if bandwidth <= 0 {
		return f
	}
	inv := 1 / (2 * bandwidth * bandwidth)
	reach := bandwidth * kernelCutoff
	for _, s := range sources {
		if s.Weight <= 0 {
			continue
		}
		x0, x1 := clampInt(int(s.X-reach), 0, width-1), clampInt(int(s.X+reach)+1, 0, width-1)
		y0, y1 := clampInt(int(s.Y-reach), 0, height-1), clampInt(int(s.Y+reach)+1, 0, height-1)
		for y := y0; y <= y1; y++ {
			dy := float64(y) - s.Y
			row := y * width
			for x := x0; x <= x1; x++ {
				dx := float64(x) - s.X
				f.Cells[row+x] += s.Weight * math.Exp(-(dx*dx+dy*dy)*inv)
			}
		}
	}
	for _, v := range f.Cells {
		if v > f.Max {
			f.Max = v
		}
	}
	return f
}

// Normalized returns the cell value at i scaled by the field's own maximum,
// or 0 for an empty field.
func (f *Field) Normalized(i int) float64 {
	if f.Max <= 0 {
		return 0
	}
	return f.Cells[i] / f.Max
}

// HeatColor maps a normalized density in [0, 1] to a color and alpha.
// Near-zero density is fully transparent so empty areas stay dark; a 0.7
// power curve lifts mid-range contrast.
func HeatColor(v float64) color.RGBA {
	if v < 0.01 {
		return color.RGBA{}
	}
	t := math.Pow(v, 0.7)
	var r, g, b float64
	if t < 0.5 {
		u := t * 2
		r, g, b = lerp(16, 235, u), lerp(44, 138, u), lerp(92, 36, u)
	} else {
		u := (t - 0.5) * 2
		r, g, b = lerp(235, 255, u), lerp(138, 238, u), lerp(36, 180, u)
	}
	a := 40 + t*200
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}
}

// Render writes the color-mapped field into an RGBA pixel buffer of
// len 4*Width*Height, premultiplied for additive compositing.
func (f *Field) Render(pix []byte) {
	for i := range f.Cells {
		c := HeatColor(f.Normalized(i))
		a := float64(c.A) / 255
		pix[i*4+0] = uint8(float64(c.R) * a)
		pix[i*4+1] = uint8(float64(c.G) * a)
		pix[i*4+2] = uint8(float64(c.B) * a)
		pix[i*4+3] = c.A
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package densitymap

import (
	"math"
	"testing"
)

func TestComputeFieldZeroWeights(t *testing.T) {
	sources := []Source{
		{X: 10, Y: 10, Weight: 0},
		{X: 40, Y: 40, Weight: 0},
	}
	f := ComputeField(sources, 64, 64, 8)
	if f.Max != 0 {
		t.Errorf("Max = %f, want 0", f.Max)
	}
	for i := range f.Cells {
		if f.Normalized(i) != 0 {
			t.Fatalf("cell %d normalized to %f with zero total weight", i, f.Normalized(i))
		}
	}
}

func TestComputeFieldPeakAtSource(t *testing.T) {
	f := ComputeField([]Source{{X: 32, Y: 32, Weight: 1}}, 64, 64, 8)
	peak := f.Cells[32*64+32]
	if math.Abs(peak-f.Max) > 1e-12 {
		t.Errorf("peak cell %f != field max %f", peak, f.Max)
	}
	// Density falls off monotonically along the axis away from the source.
	if f.Cells[32*64+40] >= peak || f.Cells[32*64+48] >= f.Cells[32*64+40] {
		t.Error("density does not decay away from the source")
	}
}

// Scaling every weight by a positive constant must not change the
// normalized field: it is divided by its own per-slice maximum.
func TestFieldNormalizationIdempotent(t *testing.T) {
	base := []Source{
		{X: 16, Y: 20, Weight: 0.3},
		{X: 40, Y: 44, Weight: 0.9},
		{X: 30, Y: 12, Weight: 0.1},
	}
	scaled := make([]Source, len(base))
	for i, s := range base {
		s.Weight *= 7.5
		scaled[i] = s
	}
	a := ComputeField(base, 64, 64, 10)
	b := ComputeField(scaled, 64, 64, 10)
	for i := range a.Cells {
		if math.Abs(a.Normalized(i)-b.Normalized(i)) > 1e-9 {
			t.Fatalf("cell %d: normalized %f vs %f after weight scaling", i, a.Normalized(i), b.Normalized(i))
		}
	}
}

func TestHeatColor(t *testing.T) {
	if c := HeatColor(0.005); c.A != 0 || c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("near-zero density not transparent: %v", c)
	}
	if c := HeatColor(0); c.A != 0 {
		t.Errorf("zero density not transparent: %v", c)
	}
	// Alpha grows with density.
	low, mid, high := HeatColor(0.1), HeatColor(0.5), HeatColor(1.0)
	if !(low.A < mid.A && mid.A < high.A) {
		t.Errorf("alpha not monotonic: %d, %d, %d", low.A, mid.A, high.A)
	}
}

func TestFieldRenderPremultiplied(t *testing.T) {
	f := ComputeField([]Source{{X: 8, Y: 8, Weight: 1}}, 16, 16, 4)
	pix := make([]byte, 16*16*4)
	f.Render(pix)
	for i := 0; i < len(pix); i += 4 {
		a := pix[i+3]
		if pix[i] > a || pix[i+1] > a || pix[i+2] > a {
			t.Fatalf("pixel %d not premultiplied: rgba(%d,%d,%d,%d)", i/4, pix[i], pix[i+1], pix[i+2], a)
		}
	}
}

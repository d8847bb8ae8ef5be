package densitymap

import "math"

// Playback owns the continuous time index over the season: a fractional
// position in [0, days-1] advanced by a fixed increment per tick while
// playing. It is the only frequently-mutated state in the core and is driven
// exclusively by the single frame loop, so it carries no locking.
type Playback struct {
	index   float64
	max     float64
	speed   float64
	playing bool
	dirty   bool
}

// NewPlayback creates a controller over a season of the given length.
// Speed is the index increment per tick.
func NewPlayback(days int, speed float64) *Playback {
	max := float64(days - 1)
	if max < 0 {
		max = 0
	}
	return &Playback{max: max, speed: speed, dirty: true}
}

// Tick advances the index by one speed increment while playing, wrapping to
// the start of the season when it reaches the end.
func (p *Playback) Tick() {
	if !p.playing || p.max == 0 {
		return
	}
	p.index += p.speed
	if p.index >= p.max {
		p.index = 0
	}
	p.dirty = true
}

// TogglePlay flips between playing and paused.
func (p *Playback) TogglePlay() {
	p.playing = !p.playing
	p.dirty = true
}

// Playing reports whether the index advances on Tick.
func (p *Playback) Playing() bool {
	return p.playing
}

// Seek jumps to a fractional position of the season, with frac in [0, 1]
// mapped linearly onto the index range (e.g. from a pointer position on the
// timeline).
func (p *Playback) Seek(frac float64) {
	target := clamp(frac, 0, 1) * p.max
	if target != p.index {
		p.index = target
		p.dirty = true
	}
}

// Step moves by whole days, clamped at the season ends. Manual stepping
// never wraps.
func (p *Playback) Step(days int) {
	target := clamp(math.Round(p.index)+float64(days), 0, p.max)
	if target != p.index {
		p.index = target
		p.dirty = true
	}
}

// Index returns the current fractional day index.
func (p *Playback) Index() float64 {
	return p.index
}

// Frame returns the adjacent whole-day indices straddling the current
// position and the fractional remainder between them, for linear
// interpolation of per-site counts.
func (p *Playback) Frame() (lo, hi int, frac float64) {
	lo = int(math.Floor(p.index))
	hi = lo + 1
	if float64(hi) > p.max {
		hi = lo
	}
	return lo, hi, p.index - float64(lo)
}

// ConsumeDirty reports whether a redraw is pending and clears the flag.
// Consumers call it once per frame so redraw work only happens when the
// index changed, the viewport resized or playback state flipped.
func (p *Playback) ConsumeDirty() bool {
	d := p.dirty
	p.dirty = false
	return d
}

// Invalidate forces a redraw on the next frame, e.g. after a resize or a
// species switch.
func (p *Playback) Invalidate() {
	p.dirty = true
}

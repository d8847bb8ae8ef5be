package densitymap

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"sort"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// RenderMode selects how the density layer is drawn.
type RenderMode int

const (
	// ModeField computes the exact per-pixel KDE field and blits it as one
	// image, recomputed only when the time index changes.
	ModeField RenderMode = iota
	// ModeSprite composites a pre-rendered radial glow per active logger,
	// an O(loggers) approximation that favors frame rate over exactness.
	ModeSprite
)

var speciesPalette = []color.RGBA{
	{0, 191, 255, 255},  // sky blue
	{173, 255, 47, 255}, // lime green
	{255, 170, 40, 255}, // amber
	{255, 80, 170, 255}, // magenta
	{120, 220, 255, 255},
	{255, 240, 120, 255},
}

// LiveEvent is a single detection increment arriving from the live feed.
type LiveEvent struct {
	Species string
	Site    string
	Date    string
	Count   float64
}

// Engine drives the interactive density-map view: one ebiten game loop that
// owns the playback index, rebuilds the density layer when it changes and
// draws the legend, status panel and timeline around it.
type Engine struct {
	Width, Height int
	Bandwidth     float64
	Mode          RenderMode
	// Resizable makes Layout follow the window size instead of pinning the
	// fixed internal resolution.
	Resizable bool

	loggers   []Logger
	positions map[string]Logger
	series    []*DetectionSeries
	current   int
	perimeter [][]LatLon
	weather   []float64

	proj      *Projection
	screenPos []Source // X/Y fixed per viewport, Weight rewritten per frame

	stats    *StatsCache
	playback *Playback

	bgImage    *ebiten.Image
	fieldImage *ebiten.Image
	fieldPix   []byte
	glowImage  *ebiten.Image

	fontSource *text.GoTextFaceSource
	monoSource *text.GoTextFaceSource

	Calls *CallPlayer

	pending   []LiveEvent
	pendingMu sync.Mutex
}

// NewEngine creates an engine rendering at a fixed internal resolution.
func NewEngine(width, height int) *Engine {
	s, _ := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	m, _ := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	return &Engine{
		Width:      width,
		Height:     height,
		Bandwidth:  36,
		stats:      NewStatsCache(),
		fontSource: s,
		monoSource: m,
	}
}

// SetData hands the engine its immutable session inputs: logger positions,
// one detection series per species and an optional perimeter overlay.
// Species are ordered by name for stable cycling.
func (e *Engine) SetData(loggers []Logger, series map[string]*DetectionSeries, perimeter [][]LatLon) error {
	if len(loggers) == 0 {
		return fmt.Errorf("densitymap: no logger positions")
	}
	if len(series) == 0 {
		return fmt.Errorf("densitymap: no detection series")
	}
	e.loggers = loggers
	e.positions = make(map[string]Logger, len(loggers))
	for _, lg := range loggers {
		e.positions[lg.Name] = lg
	}
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)
	e.series = e.series[:0]
	for _, name := range names {
		e.series = append(e.series, series[name])
	}
	e.perimeter = perimeter

	proj, err := NewProjection(BoundsFor(loggers, DefaultPadding), e.Width, e.Height)
	if err != nil {
		return err
	}
	e.proj = proj
	e.screenPos = make([]Source, len(loggers))
	for i, lg := range loggers {
		x, y := proj.Project(lg.Lat, lg.Lon)
		e.screenPos[i] = Source{X: x, Y: y}
	}

	e.playback = NewPlayback(e.currentSeries().Len(), 0.12)
	e.fieldImage = ebiten.NewImage(e.Width, e.Height)
	e.fieldPix = make([]byte, e.Width*e.Height*4)
	e.initGlowTexture()
	e.generateBackground()
	return nil
}

// SetWeather attaches an optional daily mean-temperature series aligned with
// the current species' dates. An empty slice simply omits the readout.
func (e *Engine) SetWeather(temps []float64) {
	e.weather = temps
}

// Resize rebuilds projection parameters, screen positions and pixel buffers
// for a new viewport. A no-op when the size is unchanged, so it is safe to
// call from Layout every frame.
func (e *Engine) Resize(width, height int) error {
	if e.proj != nil {
		if w, h := e.proj.Size(); w == width && h == height {
			return nil
		}
	}
	if err := e.reproject(width, height); err != nil {
		return err
	}
	e.fieldImage = ebiten.NewImage(width, height)
	e.fieldPix = make([]byte, width*height*4)
	e.generateBackground()
	return nil
}

// reproject recomputes the projection and every logger's screen position for
// a new viewport size and marks the frame dirty. Engine state is untouched
// when the projection is rejected.
func (e *Engine) reproject(width, height int) error {
	proj, err := NewProjection(BoundsFor(e.loggers, DefaultPadding), width, height)
	if err != nil {
		return err
	}
	e.Width, e.Height = width, height
	e.proj = proj
	for i, lg := range e.loggers {
		x, y := proj.Project(lg.Lat, lg.Lon)
		e.screenPos[i] = Source{X: x, Y: y}
	}
	e.playback.Invalidate()
	return nil
}

func (e *Engine) currentSeries() *DetectionSeries {
	return e.series[e.current]
}

func (e *Engine) currentColor() color.RGBA {
	return speciesPalette[e.current%len(speciesPalette)]
}

// QueueLiveEvent buffers a detection event from the feed goroutine; the
// frame loop applies it, so series mutation stays single-threaded.
func (e *Engine) QueueLiveEvent(ev LiveEvent) {
	e.pendingMu.Lock()
	e.pending = append(e.pending, ev)
	e.pendingMu.Unlock()
}

func (e *Engine) applyPending() {
	e.pendingMu.Lock()
	events := e.pending
	e.pending = nil
	e.pendingMu.Unlock()
	for _, ev := range events {
		for _, s := range e.series {
			if s.Species != ev.Species || s.Len() == 0 {
				continue
			}
			last := s.Len() - 1
			if s.Dates[last].Format("2006-01-02") != ev.Date {
				continue
			}
			counts, ok := s.Sites[ev.Site]
			if !ok || len(counts) < s.Len() {
				grown := make([]float64, s.Len())
				copy(grown, counts)
				counts = grown
				s.Sites[ev.Site] = counts
			}
			counts[last] += ev.Count
			e.stats.Invalidate(ev.Species)
			if s == e.currentSeries() {
				e.playback.Invalidate()
			}
		}
	}
}

func (e *Engine) Update() error {
	e.applyPending()

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		e.playback.TogglePlay()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		e.playback.Step(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		e.playback.Step(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		if e.Mode == ModeField {
			e.Mode = ModeSprite
		} else {
			e.Mode = ModeField
		}
		e.playback.Invalidate()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		e.cycleSpecies()
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if frac, ok := e.timelineFrac(float64(x), float64(y)); ok {
			e.playback.Seek(frac)
		}
	}

	e.playback.Tick()
	return nil
}

func (e *Engine) cycleSpecies() {
	e.current = (e.current + 1) % len(e.series)
	// Playback length follows the new series; position restarts.
	e.playback = NewPlayback(e.currentSeries().Len(), 0.12)
	if e.Calls != nil {
		e.Calls.Play(e.currentSeries().Species)
	}
	log.Printf("Switched species to %s", e.currentSeries().Species)
}

func (e *Engine) Draw(screen *ebiten.Image) {
	screen.DrawImage(e.bgImage, nil)

	dirty := e.playback.ConsumeDirty()
	switch e.Mode {
	case ModeField:
		if dirty {
			e.renderField()
		}
		op := &ebiten.DrawImageOptions{}
		op.Blend = ebiten.BlendLighter
		screen.DrawImage(e.fieldImage, op)
	case ModeSprite:
		e.drawSprites(screen)
	}

	e.drawLoggerDots(screen)
	e.drawLegend(screen)
	e.drawStatus(screen)
	e.drawTimeline(screen)
}

// Layout reports the rendering size. With Resizable set it follows the
// window, rebuilding the projection whenever the outside size changes.
func (e *Engine) Layout(w, h int) (int, int) {
	if e.Resizable && w > 0 && h > 0 {
		if err := e.Resize(w, h); err != nil {
			log.Printf("Ignoring resize to %dx%d: %v", w, h, err)
		}
	}
	return e.Width, e.Height
}

// frameSources fills per-logger weights for the current fractional index,
// linearly interpolating between the two adjacent days and normalizing by
// the species' season-wide single-site maximum.
func (e *Engine) frameSources() []Source {
	s := e.currentSeries()
	st := e.stats.Get(s)
	lo, hi, frac := e.playback.Frame()
	sources := e.screenPos
	for i, lg := range e.loggers {
		a := s.CountAt(lg.Name, lo)
		b := s.CountAt(lg.Name, hi)
		sources[i].Weight = (a + (b-a)*frac) / st.GlobalMax
	}
	return sources
}

func (e *Engine) renderField() {
	field := ComputeField(e.frameSources(), e.Width, e.Height, e.Bandwidth)
	field.Render(e.fieldPix)
	e.fieldImage.WritePixels(e.fieldPix)
}

func (e *Engine) drawSprites(screen *ebiten.Image) {
	imgW := e.glowImage.Bounds().Dx()
	halfW := float64(imgW) / 2
	c := e.currentColor()
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	op := &ebiten.DrawImageOptions{}
	op.Blend = ebiten.BlendLighter
	for _, s := range e.frameSources() {
		if s.Weight <= 0 {
			continue
		}
		scale := e.Bandwidth * kernelCutoff * 2 / float64(imgW)
		alpha := math.Pow(s.Weight, 0.7)
		op.GeoM.Reset()
		op.GeoM.Translate(-halfW, -halfW)
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(s.X, s.Y)
		op.ColorScale.Reset()
		op.ColorScale.Scale(float32(r*alpha), float32(g*alpha), float32(b*alpha), float32(alpha))
		screen.DrawImage(e.glowImage, op)
	}
}

// initGlowTexture pre-renders one Gaussian falloff sprite; sprite mode
// composites scaled, tinted copies of it instead of evaluating the kernel
// per pixel.
func (e *Engine) initGlowTexture() {
	size := 128
	if e.Width > 2000 {
		size = 256
	}
	e.glowImage = ebiten.NewImage(size, size)
	pixels := make([]byte, size*size*4)
	center := float64(size) / 2
	sigma := float64(size) / (2 * kernelCutoff)
	inv := 1 / (2 * sigma * sigma)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-center, float64(y)-center
			v := math.Exp(-(dx*dx + dy*dy) * inv)
			px := uint8(v * 255)
			off := (y*size + x) * 4
			pixels[off], pixels[off+1], pixels[off+2], pixels[off+3] = px, px, px, px
		}
	}
	e.glowImage.WritePixels(pixels)
}

// generateBackground renders the static base layer once: dark ground with
// the reserve perimeter filled and outlined, all on the CPU.
func (e *Engine) generateBackground() {
	cpuImg := image.NewRGBA(image.Rect(0, 0, e.Width, e.Height))
	draw.Draw(cpuImg, cpuImg.Bounds(), &image.Uniform{color.RGBA{8, 10, 15, 255}}, image.Point{}, draw.Src)
	if len(e.perimeter) > 0 {
		groundColor := color.RGBA{17, 26, 21, 255}
		outlineColor := color.RGBA{38, 58, 46, 255}
		e.fillRings(cpuImg, e.perimeter, groundColor)
		for _, ring := range e.perimeter {
			e.drawRing(cpuImg, ring, outlineColor)
		}
	}
	e.bgImage = ebiten.NewImageFromImage(cpuImg)
}

// fillRings scanline-fills a polygon's rings with even-odd parity.
func (e *Engine) fillRings(img *image.RGBA, rings [][]LatLon, c color.RGBA) {
	type point struct{ x, y float64 }
	projected := make([][]point, len(rings))
	minY, maxY := float64(e.Height), 0.0
	for i, ring := range rings {
		projected[i] = make([]point, len(ring))
		for j, v := range ring {
			x, y := e.proj.Project(v.Lat, v.Lon)
			projected[i][j] = point{x, y}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	for y := int(minY); y <= int(maxY); y++ {
		if y < 0 || y >= e.Height {
			continue
		}
		var nodes []int
		fy := float64(y)
		for _, ring := range projected {
			for i := 0; i < len(ring); i++ {
				j := (i + 1) % len(ring)
				if (ring[i].y < fy && ring[j].y >= fy) || (ring[j].y < fy && ring[i].y >= fy) {
					nodeX := ring[i].x + (fy-ring[i].y)/(ring[j].y-ring[i].y)*(ring[j].x-ring[i].x)
					nodes = append(nodes, int(nodeX))
				}
			}
		}
		sort.Ints(nodes)
		for i := 0; i < len(nodes)-1; i += 2 {
			xs, xe := clampInt(nodes[i], 0, e.Width-1), clampInt(nodes[i+1], 0, e.Width-1)
			for x := xs; x < xe; x++ {
				off := y*img.Stride + x*4
				img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = c.R, c.G, c.B, 255
			}
		}
	}
}

func (e *Engine) drawRing(img *image.RGBA, ring []LatLon, c color.RGBA) {
	for i := 0; i < len(ring)-1; i++ {
		x1, y1 := e.proj.Project(ring[i].Lat, ring[i].Lon)
		x2, y2 := e.proj.Project(ring[i+1].Lat, ring[i+1].Lon)
		e.drawLine(img, int(x1), int(y1), int(x2), int(y2), c)
	}
}

func (e *Engine) drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	dx, dy := math.Abs(float64(x2-x1)), math.Abs(float64(y2-y1))
	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}
	err := dx - dy
	for {
		if x1 >= 0 && x1 < e.Width && y1 >= 0 && y1 < e.Height {
			off := y1*img.Stride + x1*4
			img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3] = c.R, c.G, c.B, 255
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

package densitymap

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const timelineMargin = 48.0

func (e *Engine) drawLegend(screen *ebiten.Image) {
	if e.fontSource == nil {
		return
	}
	margin, fontSize := 40.0, 18.0
	if e.Width > 2000 {
		margin, fontSize = 80.0, 36.0
	}
	face := &text.GoTextFace{Source: e.fontSource, Size: fontSize}

	ly := margin
	for i, s := range e.series {
		c := speciesPalette[i%len(speciesPalette)]
		alpha := 0.35
		if i == e.current {
			alpha = 1.0
		}
		sw := fontSize * 0.8
		vector.DrawFilledRect(screen, float32(margin), float32(ly), float32(sw), float32(sw),
			color.RGBA{uint8(float64(c.R) * alpha), uint8(float64(c.G) * alpha), uint8(float64(c.B) * alpha), uint8(255 * alpha)}, false)
		op := &text.DrawOptions{}
		op.GeoM.Translate(margin+sw+12, ly-fontSize*0.15)
		op.ColorScale.Scale(1, 1, 1, float32(0.4+0.5*alpha))
		text.Draw(screen, s.Species, face, op)
		ly += fontSize * 1.7
	}

	hint := "space play/pause   arrows step   tab species   m mode   click timeline to seek"
	hintFace := &text.GoTextFace{Source: e.fontSource, Size: fontSize * 0.65}
	hop := &text.DrawOptions{}
	hop.GeoM.Translate(margin, float64(e.Height)-timelineMargin-fontSize*1.6)
	hop.ColorScale.Scale(1, 1, 1, 0.35)
	text.Draw(screen, hint, hintFace, hop)
}

func (e *Engine) drawStatus(screen *ebiten.Image) {
	if e.monoSource == nil {
		return
	}
	margin, fontSize := 40.0, 17.0
	if e.Width > 2000 {
		margin, fontSize = 80.0, 34.0
	}
	s := e.currentSeries()
	if s.Len() == 0 {
		return
	}
	st := e.stats.Get(s)
	now := st.At(e.playback.Index())

	boxW := 310.0
	if e.Width > 2000 {
		boxW = 620.0
	}
	boxX := float64(e.Width) - margin - boxW
	boxY := margin
	lineH := fontSize * 1.55

	arrow := "→"
	if now.Trend > 0.05 {
		arrow = "▲"
	} else if now.Trend < -0.05 {
		arrow = "▼"
	}

	lines := []string{
		s.Dates[now.Day].Format("Mon Jan 2 2006"),
		fmt.Sprintf("detections   %6.0f", now.DailyTotal),
		fmt.Sprintf("trend        %s %+.0f%%", arrow, now.Trend*100),
		fmt.Sprintf("concentration %.2f", now.Clustering),
		fmt.Sprintf("active sites %4d / %d", now.ActiveSites, st.TotalActiveSites),
		fmt.Sprintf("season total %7.0f", now.CumulativeTotal),
	}
	if now.Day < len(s.Mean) {
		lines = append(lines, fmt.Sprintf("site mean    %6.1f", s.Mean[now.Day]))
	}
	if now.Day < len(e.weather) {
		lines = append(lines, fmt.Sprintf("mean temp    %5.1f C", e.weather[now.Day]))
	}
	state := "PAUSED"
	if e.playback.Playing() {
		state = "PLAYING"
	}
	lines = append(lines, state)

	boxH := lineH*float64(len(lines)) + 24
	vector.DrawFilledRect(screen, float32(boxX-12), float32(boxY-12), float32(boxW), float32(boxH), color.RGBA{0, 0, 0, 110}, false)
	vector.StrokeRect(screen, float32(boxX-12), float32(boxY-12), float32(boxW), float32(boxH), 1, color.RGBA{36, 42, 53, 255}, false)
	vector.DrawFilledRect(screen, float32(boxX-12), float32(boxY-12), 4, float32(boxH), e.currentColor(), false)

	face := &text.GoTextFace{Source: e.monoSource, Size: fontSize}
	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(boxX, boxY+float64(i)*lineH)
		alpha := float32(0.85)
		if i == 0 {
			alpha = 1.0
		}
		op.ColorScale.Scale(1, 1, 1, alpha)
		text.Draw(screen, line, face, op)
	}
}

// drawLoggerDots marks every logger position with a small dot so silent
// sites stay visible under an empty density layer.
func (e *Engine) drawLoggerDots(screen *ebiten.Image) {
	radius := float32(2)
	if e.Width > 2000 {
		radius = 4
	}
	for _, p := range e.screenPos {
		vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), radius, color.RGBA{120, 130, 145, 160}, true)
	}
}

func (e *Engine) timelineRect() (x, y, w, h float64) {
	x = timelineMargin
	w = float64(e.Width) - 2*timelineMargin
	h = 6
	y = float64(e.Height) - timelineMargin + 10
	return x, y, w, h
}

// timelineFrac maps a cursor position onto the timeline's [0, 1] range,
// with a generous vertical hit area around the bar.
func (e *Engine) timelineFrac(cx, cy float64) (float64, bool) {
	x, y, w, h := e.timelineRect()
	if cy < y-14 || cy > y+h+14 || cx < x || cx > x+w {
		return 0, false
	}
	return (cx - x) / w, true
}

func (e *Engine) drawTimeline(screen *ebiten.Image) {
	s := e.currentSeries()
	if s.Len() < 2 {
		return
	}
	x, y, w, h := e.timelineRect()
	st := e.stats.Get(s)

	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), color.RGBA{30, 34, 44, 255}, false)

	// Per-day activity ticks under the bar, scaled against the season's
	// busiest day.
	tickW := w / float64(s.Len())
	for d, total := range st.DailyTotals {
		if total == 0 {
			continue
		}
		th := 1 + 14*total/st.MaxDailyTotal
		tx := x + float64(d)*tickW
		vector.DrawFilledRect(screen, float32(tx), float32(y-th-2), float32(math.Max(tickW-1, 1)), float32(th), color.RGBA{70, 90, 110, 200}, false)
	}

	frac := e.playback.Index() / float64(s.Len()-1)
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w*frac), float32(h), e.currentColor(), false)
	vector.DrawFilledCircle(screen, float32(x+w*frac), float32(y+h/2), 7, color.RGBA{255, 255, 255, 255}, true)
}

package densitymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resizableEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(400, 300)
	e.loggers = testLoggers
	e.screenPos = make([]Source, len(testLoggers))
	e.playback = NewPlayback(5, 0.1)
	require.NoError(t, e.reproject(400, 300))
	return e
}

func TestReprojectFollowsViewport(t *testing.T) {
	e := resizableEngine(t)
	before := append([]Source(nil), e.screenPos...)
	e.playback.ConsumeDirty()

	require.NoError(t, e.reproject(800, 600))
	assert.Equal(t, 800, e.Width)
	assert.Equal(t, 600, e.Height)
	// Doubling both axes doubles scale and offsets, so every screen
	// position doubles exactly.
	for i, p := range before {
		assert.InDeltaf(t, p.X*2, e.screenPos[i].X, 1e-9, "logger %s x", e.loggers[i].Name)
		assert.InDeltaf(t, p.Y*2, e.screenPos[i].Y, 1e-9, "logger %s y", e.loggers[i].Name)
	}
	assert.True(t, e.playback.ConsumeDirty(), "a resize must force a redraw")
}

func TestReprojectRejectsDegenerateViewport(t *testing.T) {
	e := resizableEngine(t)
	before := append([]Source(nil), e.screenPos...)
	e.playback.ConsumeDirty()

	require.Error(t, e.reproject(0, 600))
	assert.Equal(t, 400, e.Width, "rejected resize leaves the engine untouched")
	assert.Equal(t, before, e.screenPos)
	assert.False(t, e.playback.ConsumeDirty())
}

func TestResizeUnchangedSizeIsNoOp(t *testing.T) {
	e := resizableEngine(t)
	proj := e.proj
	e.playback.ConsumeDirty()

	require.NoError(t, e.Resize(400, 300))
	assert.Same(t, proj, e.proj, "same-size resize keeps the projection")
	assert.False(t, e.playback.ConsumeDirty())
}

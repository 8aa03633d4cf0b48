package render

import (
	"testing"

	"evdock-sim/models"
	"evdock-sim/services"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func newTestViewer(t *testing.T) (*Viewer, *services.Engine, tcell.SimulationScreen) {
	t.Helper()
	screen := newTestScreen(t, 80, 24)
	e := newTestEngine(t)
	return NewViewer(screen, e, 30), e, screen
}

func TestViewerKeys(t *testing.T) {
	v, e, _ := newTestViewer(t)

	assert.True(t, v.HandleEvent(key(' ')))
	assert.True(t, e.Playing())
	assert.Equal(t, models.PhaseScan, e.Phase())

	assert.True(t, v.HandleEvent(key('+')))
	assert.InDelta(t, 1.25, e.Speed(), 1e-9)
	assert.True(t, v.HandleEvent(key('-')))
	assert.InDelta(t, 1.0, e.Speed(), 1e-9)

	rays := e.ShowRays()
	v.HandleEvent(key('l'))
	assert.Equal(t, !rays, e.ShowRays())

	v.HandleEvent(key('2'))
	assert.Equal(t, models.PhaseNavigating, e.Phase())

	v.HandleEvent(key('r'))
	assert.Equal(t, models.PhaseIdle, e.Phase())
	assert.False(t, e.Playing())
}

func TestViewerQuitKeys(t *testing.T) {
	v, _, _ := newTestViewer(t)

	assert.False(t, v.HandleEvent(key('q')))
	assert.False(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.True(t, v.HandleEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)))
}

func TestViewerFrameAdvancesAndDraws(t *testing.T) {
	v, e, screen := newTestViewer(t)
	v.HandleEvent(key(' '))

	for i := 0; i < 10; i++ {
		v.Frame(1.0 / 30)
	}
	assert.Greater(t, e.SimTime(), 0.0)

	status := rowText(screen, 23)
	require.NotEmpty(t, status)
	assert.Contains(t, status, "playing")
}

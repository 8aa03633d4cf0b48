package render

import (
	"strings"
	"testing"

	"evdock-sim/models"
	"evdock-sim/services"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

func newTestEngine(t *testing.T) *services.Engine {
	t.Helper()
	e, err := services.NewEngine(models.DefaultSimConfig(), 1)
	require.NoError(t, err)
	return e
}

// rowText - 한 줄을 문자열로 읽는다
func rowText(screen tcell.Screen, row int) string {
	cols, _ := screen.Size()
	var sb strings.Builder
	for x := 0; x < cols; x++ {
		r, _, _, _ := screen.GetContent(x, row)
		sb.WriteRune(r)
	}
	return sb.String()
}

func TestTerminalDrawsRobotAndStatus(t *testing.T) {
	screen := newTestScreen(t, 80, 24)
	e := newTestEngine(t)
	cfg := e.Config()
	snap := e.Snapshot()

	term := NewTerminal(screen)
	require.True(t, term.Draw(snap, cfg.Width, cfg.Height))
	assert.Greater(t, term.Transform().Scale, 0.0)

	x, y := term.cell(snap.Robot.Position)
	r, _, _, _ := screen.GetContent(x, y)
	assert.Equal(t, glyphRobot, r)

	x, y = term.cell(snap.Port)
	r, _, _, _ = screen.GetContent(x, y)
	assert.Equal(t, glyphPort, r)

	status := rowText(screen, 23)
	assert.Contains(t, status, "idle")
	assert.Contains(t, status, "paused")
	assert.Contains(t, status, "charge")
}

func TestTerminalSkipsTinyScreen(t *testing.T) {
	screen := newTestScreen(t, 80, 1)
	e := newTestEngine(t)
	cfg := e.Config()

	term := NewTerminal(screen)
	assert.False(t, term.Draw(e.Snapshot(), cfg.Width, cfg.Height))
}

package services

import (
	"encoding/json"
	"math"
	"testing"

	"evdock-sim/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signalMode(c *models.SimConfig) { c.ScanMode = models.ScanModeSignal }

func TestSignalScanReachesNavigation(t *testing.T) {
	e := newTestEngine(t, signalMode)
	e.Play()

	stages := []models.ScanStage{}
	runUntil(e, 30, func(e *Engine) bool {
		if e.Phase() == models.PhaseScan {
			st := e.Snapshot().ScanStage
			if len(stages) == 0 || stages[len(stages)-1] != st {
				stages = append(stages, st)
			}
		}
		return e.Phase() == models.PhaseNavigating
	})

	require.Equal(t, models.PhaseNavigating, e.Phase())
	assert.Equal(t, []models.ScanStage{models.ScanPulsing, models.ScanSignal, models.ScanPlanning}, stages)

	cfg := e.Config()
	assert.GreaterOrEqual(t, e.SimTime()+1e-9, cfg.MinScan+cfg.SignalDuration+cfg.PlanningDuration)
}

func TestSignalScanHonorsMinimumDuration(t *testing.T) {
	e := newTestEngine(t, func(c *models.SimConfig) {
		signalMode(c)
		c.MinScan = 5
	})
	e.Play()

	runUntil(e, 4.9, func(e *Engine) bool { return false })
	snap := e.Snapshot()
	assert.Equal(t, models.PhaseScan, snap.Phase)
	assert.Equal(t, models.ScanPulsing, snap.ScanStage)
	assert.Equal(t, 1.0, snap.ScanProgress, "both actors were reached by the pulse")
}

func TestDwellScanProgress(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Play()

	runUntil(e, 1.2, func(e *Engine) bool { return false })
	snap := e.Snapshot()
	assert.Equal(t, models.ScanPulsing, snap.ScanStage)
	assert.InDelta(t, 0.5, snap.ScanProgress, 0.05)
	assert.Greater(t, snap.PulseRadius, float64(pulseBaseRadius))

	runUntil(e, 10, func(e *Engine) bool { return e.Phase() != models.PhaseScan })
	assert.Equal(t, models.PhaseNavigating, e.Phase())
	assert.InDelta(t, e.Config().ScanDwell, e.SimTime(), frameDt+1e-9)
}

func TestSignalScanWaitsForUnreachedActor(t *testing.T) {
	// 펄스가 차량까지 닿지 않으면 주행으로 넘어가지 않는다
	e := newTestEngine(t, func(c *models.SimConfig) {
		signalMode(c)
		c.PulseMaxRadius = 50
	})
	e.Play()

	runUntil(e, 12, func(e *Engine) bool { return e.Phase() != models.PhaseScan })
	assert.Equal(t, models.PhaseScan, e.Phase())
	assert.Equal(t, models.ScanPulsing, e.Snapshot().ScanStage)
}

func TestScanProgressStaysFinite(t *testing.T) {
	// 검증을 거치지 않은 0 길이 단계도 진행도는 유한해야 한다
	e := newTestEngine(t, signalMode)
	e.cfg.SignalDuration = 0
	e.cfg.PlanningDuration = 0
	e.Play()

	for i := 0; i < 400 && e.Phase() == models.PhaseScan; i++ {
		e.Tick(frameDt)
		snap := e.Snapshot()
		require.False(t, math.IsNaN(snap.ScanProgress), "tick %d stage %s", i, snap.ScanStage)
		_, err := json.Marshal(snap)
		require.NoError(t, err)
	}

	assert.Equal(t, 1.0, ratio(0, 0))
	assert.Equal(t, 0.5, ratio(1, 2))
}

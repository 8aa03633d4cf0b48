package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"evdock-sim/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRewriter struct {
	text  string
	err   error
	calls int
}

func (f *fakeRewriter) Rewrite(_ context.Context, caption string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func fixedClock(start time.Time) (func() time.Time, func(time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func TestCaption(t *testing.T) {
	assert.Equal(t, "Anchors localization: Anchors localize the robot and the charging port.",
		Caption(models.PhaseChange{From: models.PhaseIdle, To: models.PhaseScan}))
	assert.Equal(t, "Charging: Connector seated. Charging the vehicle. (manual)",
		Caption(models.PhaseChange{To: models.PhaseCharging, Manual: true}))
	assert.Equal(t, "Idle. Press play to start docking.",
		Caption(models.PhaseChange{To: models.PhaseIdle}))
}

func TestNarratorCooldown(t *testing.T) {
	n := NewNarrator(nil, nil)
	now, advance := fixedClock(time.Unix(1000, 0))
	n.now = now
	ctx := context.Background()

	nar, ok := n.Narrate(ctx, models.PhaseChange{From: models.PhaseIdle, To: models.PhaseScan})
	require.True(t, ok)
	assert.Equal(t, "template", nar.Source)
	assert.Equal(t, models.PhaseScan, nar.Phase)

	_, ok = n.Narrate(ctx, models.PhaseChange{From: models.PhaseScan, To: models.PhaseNavigating})
	assert.False(t, ok, "low priority change inside the cooldown is skipped")

	_, ok = n.Narrate(ctx, models.PhaseChange{From: models.PhaseNavigating, To: models.PhaseDocking})
	assert.True(t, ok, "docking bypasses the cooldown")

	advance(3 * time.Second)
	_, ok = n.Narrate(ctx, models.PhaseChange{From: models.PhaseScan, To: models.PhaseNavigating})
	assert.True(t, ok)
}

func TestNarratorDisabled(t *testing.T) {
	n := NewNarrator(nil, nil)
	n.SetEnabled(false)
	_, ok := n.Narrate(context.Background(), models.PhaseChange{To: models.PhaseComplete})
	assert.False(t, ok)
}

func TestNarratorUsesRewriter(t *testing.T) {
	rw := &fakeRewriter{text: "The robot glides into the port."}
	n := NewNarrator(rw, nil)

	nar, ok := n.Narrate(context.Background(), models.PhaseChange{To: models.PhaseDocking})
	require.True(t, ok)
	assert.Equal(t, "llm", nar.Source)
	assert.Equal(t, "The robot glides into the port.", nar.Text)
	assert.Equal(t, 1, rw.calls)
}

func TestNarratorFallsBackOnRewriteError(t *testing.T) {
	rw := &fakeRewriter{err: errors.New("connection refused")}
	n := NewNarrator(rw, nil)

	ch := models.PhaseChange{To: models.PhaseCharging}
	nar, ok := n.Narrate(context.Background(), ch)
	require.True(t, ok)
	assert.Equal(t, "template", nar.Source)
	assert.Equal(t, Caption(ch), nar.Text)

	var disabled *LLMService
	n = NewNarrator(disabled, nil)
	nar, ok = n.Narrate(context.Background(), ch)
	require.True(t, ok)
	assert.Equal(t, "template", nar.Source)
}

func TestNarratorQueueEmits(t *testing.T) {
	var mu sync.Mutex
	var got []models.Narration
	n := NewNarrator(nil, func(nar models.Narration) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, nar)
	})
	n.SetCooldown(0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n.Start(ctx)

	n.Queue(models.PhaseChange{From: models.PhaseIdle, To: models.PhaseScan})
	n.Queue(models.PhaseChange{From: models.PhaseScan, To: models.PhaseNavigating})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 10*time.Millisecond)
}

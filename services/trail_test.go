package services

import (
	"testing"

	"evdock-sim/algorithms"
	"evdock-sim/models"

	"github.com/stretchr/testify/assert"
)

func TestTrailDropsOldest(t *testing.T) {
	tr := NewTrail(3)
	for i := 0; i < 5; i++ {
		tr.Push(algorithms.V2(float64(i), 0))
	}

	assert.Equal(t, 3, tr.Len())
	assert.Equal(t, []algorithms.Vec2{
		algorithms.V2(2, 0),
		algorithms.V2(3, 0),
		algorithms.V2(4, 0),
	}, tr.Points())

	tr.Clear()
	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Points())
}

func TestTrailMinimumCapacity(t *testing.T) {
	tr := NewTrail(0)
	tr.Push(algorithms.V2(1, 1))
	tr.Push(algorithms.V2(2, 2))
	assert.Equal(t, []algorithms.Vec2{algorithms.V2(2, 2)}, tr.Points())
}

func TestEngineTrailIsBounded(t *testing.T) {
	e := newTestEngine(t, func(c *models.SimConfig) { c.TrailCapacity = 50 })
	e.Play()
	runUntil(e, 15, func(e *Engine) bool { return false })

	assert.Len(t, e.Trail(), 50)
}

package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindPathStraight(t *testing.T) {
	g := NewGrid(10, 10, 10, Vec2{})

	path := g.FindPath(V2(5, 5), V2(95, 5))
	require.Len(t, path, 2, "open row simplifies to a single segment")
	assert.Equal(t, V2(5, 5), path[0])
	assert.Equal(t, V2(95, 5), path[1])
}

func TestFindPathAroundWall(t *testing.T) {
	g := NewGrid(10, 10, 10, Vec2{})
	for y := 0; y < 8; y++ {
		g.AddObstacle(5, y)
	}

	start, goal := V2(15, 15), V2(85, 15)
	path := g.FindPath(start, goal)
	require.NotNil(t, path)
	assert.Equal(t, start, path[0])
	assert.Equal(t, goal, path[len(path)-1])
	assert.Greater(t, PathLength(path), start.Dist(goal))

	for _, p := range path {
		x, y := g.WorldToCell(p)
		assert.False(t, g.IsObstacle(x, y), "waypoint %v lies in a blocked cell", p)
	}
}

func TestFindPathUnreachable(t *testing.T) {
	g := NewGrid(10, 10, 10, Vec2{})
	for y := 0; y < 10; y++ {
		g.AddObstacle(5, y)
	}
	assert.Nil(t, g.FindPath(V2(15, 15), V2(85, 15)))

	assert.Nil(t, g.FindPath(V2(55, 15), V2(85, 15)), "start inside a blocked cell")
	assert.Nil(t, g.FindPath(V2(-5, 15), V2(85, 15)), "start outside the grid")
}

func TestGridFromShapes(t *testing.T) {
	bounds := Rect{Max: V2(100, 100)}
	g := GridFromShapes(bounds, 10, []Shape{Circle{C: V2(50, 50), R: 10}}, 6)

	assert.Equal(t, 10, g.Width)
	assert.Equal(t, 10, g.Height)
	assert.True(t, g.IsObstacle(g.WorldToCell(V2(50, 50))))
	assert.False(t, g.IsObstacle(g.WorldToCell(V2(5, 5))))

	path := g.FindPath(V2(5, 55), V2(95, 55))
	require.NotNil(t, path)
	assert.Greater(t, len(path), 2, "path must bend around the obstacle")
}

func TestSimplifyPath(t *testing.T) {
	line := []Vec2{V2(0, 0), V2(1, 0.01), V2(2, 0), V2(3, 0)}
	assert.Equal(t, []Vec2{V2(0, 0), V2(3, 0)}, SimplifyPath(line, 0.5))

	corner := []Vec2{V2(0, 0), V2(5, 0), V2(10, 0), V2(10, 5), V2(10, 10)}
	assert.Equal(t, []Vec2{V2(0, 0), V2(10, 0), V2(10, 10)}, SimplifyPath(corner, 0.5))

	short := []Vec2{V2(0, 0), V2(1, 1)}
	assert.Equal(t, short, SimplifyPath(short, 0.5))
}

func TestPathLength(t *testing.T) {
	assert.Equal(t, 0.0, PathLength(nil))
	assert.InDelta(t, 20, PathLength([]Vec2{V2(0, 0), V2(10, 0), V2(10, 10)}), 1e-9)
}

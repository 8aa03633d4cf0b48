package services

import (
	"os"
	"path/filepath"
	"testing"

	"evdock-sim/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelLoaderFallsBackToPrimitive(t *testing.T) {
	ref := NewModelLoader("").Resolve("robot", "cylinder")
	assert.Equal(t, models.ModelPrimitive, ref.Kind)
	assert.Equal(t, "cylinder", ref.Primitive)

	var nilLoader *ModelLoader
	assert.Equal(t, models.ModelPrimitive, nilLoader.Resolve("car", "car").Kind)

	ref = NewModelLoader(t.TempDir()).Resolve("car", "car")
	assert.Equal(t, models.ModelPrimitive, ref.Kind)
}

func TestModelLoaderFindsFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "robot.glb"), []byte("glTF-binary"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "car.obj"), []byte("v 0 0 0"), 0o644))

	loader := NewModelLoader(dir)

	robot := loader.Resolve("robot", "cylinder")
	assert.Equal(t, models.ModelLoaded, robot.Kind)
	assert.Equal(t, "glb", robot.Format)
	assert.Equal(t, int64(11), robot.Bytes)

	car := loader.Resolve("car", "car")
	assert.Equal(t, "obj", car.Format)

	// 캐시된 결과 유지
	require.NoError(t, os.Remove(filepath.Join(dir, "robot.glb")))
	assert.Equal(t, robot, loader.Resolve("robot", "cylinder"))
}

func TestBuildScene(t *testing.T) {
	e := newTestEngine(t, nil)
	require.NoError(t, e.SetPhase(models.PhaseNavigating))
	snap := e.Snapshot()

	g := BuildScene(snap, e.Config(), NewModelLoader(""))
	assert.Equal(t, models.PhaseNavigating, g.Phase)
	assert.Equal(t, SceneScale, g.Scale)
	// 로봇 + 차량 + 장애물 5 + 앵커 4
	require.Len(t, g.Nodes, 11)
	assert.Equal(t, "robot", g.Nodes[0].ID)
	assert.InDelta(t, snap.Robot.Position.X*SceneScale, g.Nodes[0].Position.X, 1e-9)
	assert.InDelta(t, snap.Robot.Position.Y*SceneScale, g.Nodes[0].Position.Z, 1e-9)
	assert.Equal(t, "obstacle-0", g.Nodes[2].ID)
	assert.Equal(t, "anchor-3", g.Nodes[10].ID)
	assert.Len(t, g.Path, len(snap.Waypoints))
}

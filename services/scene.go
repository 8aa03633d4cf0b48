package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"evdock-sim/algorithms"
	"evdock-sim/models"
)

// 씬 단위 → 미터
const SceneScale = 0.025

// 노드 높이 (씬 단위)
const (
	robotHeight    = 8.0
	carHeight      = 28.0
	obstacleHeight = 20.0
	anchorHeight   = 40.0
	carLength      = 90.0
	carWidth       = 44.0
)

// 모델 파일 확장자 (우선순위 순)
var modelFormats = []string{"glb", "gltf", "obj"}

// ModelLoader - 역할별 3D 모델 파일을 찾는다. 없으면 기본 도형을 쓴다
type ModelLoader struct {
	dir   string
	mu    sync.Mutex
	cache map[string]models.ModelRef
}

// NewModelLoader - dir 가 비어 있으면 항상 기본 도형
func NewModelLoader(dir string) *ModelLoader {
	return &ModelLoader{dir: dir, cache: make(map[string]models.ModelRef)}
}

// Resolve - <dir>/<role>.{glb,gltf,obj} 를 찾아 Loaded, 없으면 Primitive
func (l *ModelLoader) Resolve(role, primitive string) models.ModelRef {
	if l == nil || l.dir == "" {
		return models.ModelRef{Kind: models.ModelPrimitive, Primitive: primitive}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if ref, ok := l.cache[role]; ok {
		return ref
	}

	ref := models.ModelRef{Kind: models.ModelPrimitive, Primitive: primitive}
	for _, ext := range modelFormats {
		path := filepath.Join(l.dir, role+"."+ext)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		ref = models.ModelRef{
			Kind:   models.ModelLoaded,
			URI:    filepath.ToSlash(path),
			Format: ext,
			Bytes:  info.Size(),
		}
		break
	}
	l.cache[role] = ref
	return ref
}

// BuildScene - 스냅샷을 3D 씬 그래프로 변환 (XZ 지면, y 위쪽)
func BuildScene(snap models.Snapshot, cfg models.SimConfig, loader *ModelLoader) models.SceneGraph {
	ground := func(p algorithms.Vec2, h float64) algorithms.Vec3 {
		return algorithms.Ground(p.Scale(SceneScale), h*SceneScale)
	}
	size := func(w, h, d float64) algorithms.Vec3 {
		return algorithms.Vec3{X: w, Y: h, Z: d}.Scale(SceneScale)
	}

	g := models.SceneGraph{
		Phase:  snap.Phase,
		Scale:  SceneScale,
		Charge: snap.Charge,
	}

	g.Nodes = append(g.Nodes,
		models.SceneNode{
			ID:       "robot",
			Role:     "robot",
			Position: ground(snap.Robot.Position, robotHeight/2),
			Size:     size(cfg.RobotRadius*2, robotHeight, cfg.RobotRadius*2),
			Heading:  snap.Robot.Heading,
			Model:    loader.Resolve("robot", "cylinder"),
		},
		models.SceneNode{
			ID:       "car",
			Role:     "car",
			Position: ground(snap.Car.Position, carHeight/2),
			Size:     size(carLength, carHeight, carWidth),
			Heading:  snap.Car.Heading,
			Model:    loader.Resolve("car", "car"),
		},
	)

	for i, o := range snap.Obstacles {
		prim := "cylinder"
		if o.Shape == models.ShapeBox {
			prim = "box"
		}
		g.Nodes = append(g.Nodes, models.SceneNode{
			ID:       fmt.Sprintf("obstacle-%d", i),
			Role:     "obstacle",
			Position: ground(o.Center, obstacleHeight/2),
			Size:     size(o.Radius*2, obstacleHeight, o.Radius*2),
			Model:    loader.Resolve("obstacle", prim),
		})
	}

	for i, a := range cfg.Anchors() {
		g.Nodes = append(g.Nodes, models.SceneNode{
			ID:       fmt.Sprintf("anchor-%d", i),
			Role:     "anchor",
			Position: ground(a, anchorHeight/2),
			Size:     size(4, anchorHeight, 4),
			Model:    loader.Resolve("anchor", "box"),
		})
	}

	path := snap.Waypoints
	if len(path) == 0 {
		path = snap.PredictedPath
	}
	for _, p := range path {
		g.Path = append(g.Path, ground(p, 0.5))
	}
	return g
}

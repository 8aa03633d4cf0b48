package models

import (
	"time"

	"evdock-sim/algorithms"
)

// ModelKind - 3D 노드 표현 방식 (기본 도형 / 불러온 모델)
type ModelKind string

const (
	ModelPrimitive ModelKind = "primitive"
	ModelLoaded    ModelKind = "loaded"
)

// ModelRef - 렌더러가 그대로 소비하는 태그드 모델 참조
type ModelRef struct {
	Kind      ModelKind `json:"kind"`
	Primitive string    `json:"primitive,omitempty"` // "cylinder", "box", "car"
	URI       string    `json:"uri,omitempty"`       // 로드된 에셋 경로
	Format    string    `json:"format,omitempty"`    // "gltf", "glb", "obj"
	Bytes     int64     `json:"bytes,omitempty"`
}

// SceneNode - 3D 씬 그래프 노드 (XZ 지면, y 높이)
type SceneNode struct {
	ID       string          `json:"id"`
	Role     string          `json:"role"` // "robot", "car", "obstacle", "anchor"
	Position algorithms.Vec3 `json:"position"`
	Size     algorithms.Vec3 `json:"size"`
	Heading  float64         `json:"heading"`
	Model    ModelRef        `json:"model"`
}

// SceneGraph - 3D 렌더러용 내보내기
type SceneGraph struct {
	Phase  Phase             `json:"phase"`
	Scale  float64           `json:"scale"` // 씬 단위 → 미터
	Nodes  []SceneNode       `json:"nodes"`
	Path   []algorithms.Vec3 `json:"path,omitempty"`
	Charge float64           `json:"charge"`
}

// ObstacleLayout - 랜덤/저장 장애물 배치
type ObstacleLayout struct {
	ID        string     `json:"id"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Obstacles []Obstacle `json:"obstacles"`
	Seed      int64      `json:"seed"`
	CreatedAt time.Time  `json:"created_at"`
}

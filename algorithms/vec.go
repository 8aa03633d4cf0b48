package algorithms

import "math"

// Epsilon - 0 길이 벡터 정규화 시 사용하는 최소 분모
const Epsilon = 1e-9

// Vec2 - 2D 위치/방향 벡터 (값 타입)
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V2 - Vec2 생성 헬퍼
func V2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{X: v.X * s, Y: v.Y * s} }

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// Len - 벡터 길이
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist - 두 점 사이 거리
func (v Vec2) Dist(o Vec2) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }

// Normalize - 단위 벡터 반환. 길이가 0에 가까우면 0 벡터를 돌려준다 (NaN 방지)
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l < Epsilon {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Left - 반시계 90° 회전
func (v Vec2) Left() Vec2 { return Vec2{X: -v.Y, Y: v.X} }

// Right - 시계 90° 회전
func (v Vec2) Right() Vec2 { return Vec2{X: v.Y, Y: -v.X} }

// Angle - x축 기준 각도 (라디안)
func (v Vec2) Angle() float64 { return math.Atan2(v.Y, v.X) }

// IsFinite - NaN/Inf 여부 검사
func (v Vec2) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Lerp - 선형 보간
func Lerp(a, b Vec2, t float64) Vec2 {
	return Vec2{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// FromAngle - 각도로부터 단위 벡터
func FromAngle(rad float64) Vec2 {
	return Vec2{X: math.Cos(rad), Y: math.Sin(rad)}
}

// Clamp - 스칼라 범위 제한. NaN 은 lo 로
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(hi, math.Max(lo, v))
}

// Rect - 축 정렬 사각형 (씬 경계)
type Rect struct {
	Min Vec2 `json:"min"`
	Max Vec2 `json:"max"`
}

// Clamp - 점을 사각형 안으로 제한
func (r Rect) Clamp(p Vec2) Vec2 {
	return Vec2{X: Clamp(p.X, r.Min.X, r.Max.X), Y: Clamp(p.Y, r.Min.Y, r.Max.Y)}
}

// Inset - 모든 변을 d 만큼 안쪽으로 줄인 사각형
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{Min: Vec2{X: r.Min.X + dx, Y: r.Min.Y + dy}, Max: Vec2{X: r.Max.X - dx, Y: r.Max.Y - dy}}
}

// Vec3 - 3D 씬 그래프용 벡터 (y가 높이)
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s} }

func (v Vec3) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Ground - 2D 평면 좌표를 XZ 지면 위 높이 h 의 3D 점으로 변환
func Ground(p Vec2, h float64) Vec3 {
	return Vec3{X: p.X, Y: h, Z: p.Y}
}

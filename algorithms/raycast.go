package algorithms

import "math"

// Shape - 레이 캐스트와 회피 필드가 공통으로 쓰는 장애물 형상
type Shape interface {
	// Center - 형상 중심
	Center() Vec2
	// Extent - 원은 반지름, 박스는 반폭(half-extent)
	Extent() float64
	// ClosestPoint - 형상 경계/내부에서 p 와 가장 가까운 점
	ClosestPoint(p Vec2) Vec2
	// Contains - 점이 형상 내부인지
	Contains(p Vec2) bool
	// RayHit - origin + dir*t 가 처음 닿는 양수 t
	RayHit(origin, dir Vec2) (float64, bool)
}

// Circle - 원형 장애물
type Circle struct {
	C Vec2
	R float64
}

func (c Circle) Center() Vec2    { return c.C }
func (c Circle) Extent() float64 { return c.R }

func (c Circle) Contains(p Vec2) bool { return p.Dist(c.C) < c.R }

func (c Circle) ClosestPoint(p Vec2) Vec2 {
	d := p.Sub(c.C)
	if d.Len() <= c.R {
		return p
	}
	return c.C.Add(d.Normalize().Scale(c.R))
}

func (c Circle) RayHit(origin, dir Vec2) (float64, bool) {
	return RayCircle(origin, dir, c.C, c.R)
}

// Box - 축 정렬 정사각 장애물 (3D 변형의 큐브를 위에서 본 모양)
type Box struct {
	C    Vec2
	Half float64
}

func (b Box) Center() Vec2    { return b.C }
func (b Box) Extent() float64 { return b.Half }

func (b Box) Min() Vec2 { return Vec2{X: b.C.X - b.Half, Y: b.C.Y - b.Half} }
func (b Box) Max() Vec2 { return Vec2{X: b.C.X + b.Half, Y: b.C.Y + b.Half} }

func (b Box) Contains(p Vec2) bool {
	return math.Abs(p.X-b.C.X) < b.Half && math.Abs(p.Y-b.C.Y) < b.Half
}

func (b Box) ClosestPoint(p Vec2) Vec2 {
	lo, hi := b.Min(), b.Max()
	return Vec2{X: Clamp(p.X, lo.X, hi.X), Y: Clamp(p.Y, lo.Y, hi.Y)}
}

func (b Box) RayHit(origin, dir Vec2) (float64, bool) {
	return RayAABB(origin, dir, b.Min(), b.Max())
}

// RayCircle - 판별식으로 레이-원 교차를 구한다. dir 은 단위 벡터여야 한다.
// 가장 가까운 양수 근을 반환한다 (원 내부에서 쏘면 먼 쪽 근).
func RayCircle(origin, dir, center Vec2, r float64) (float64, bool) {
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - r*r
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	if t := -b - sq; t > 0 {
		return t, true
	}
	if t := -b + sq; t > 0 {
		return t, true
	}
	return 0, false
}

// RayAABB - 슬랩(slab) 방식 레이-박스 교차
func RayAABB(origin, dir, lo, hi Vec2) (float64, bool) {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)

	axes := [2][4]float64{
		{origin.X, dir.X, lo.X, hi.X},
		{origin.Y, dir.Y, lo.Y, hi.Y},
	}
	for _, a := range axes {
		o, d, mn, mx := a[0], a[1], a[2], a[3]
		if d == 0 {
			d = 1e-6
		}
		inv := 1 / d
		t0 := (mn - o) * inv
		t1 := (mx - o) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tmin = math.Max(tmin, t0)
		tmax = math.Min(tmax, t1)
		if tmax < tmin {
			return 0, false
		}
	}

	if tmin > 0 {
		return tmin, true
	}
	if tmax > 0 {
		return tmax, true
	}
	return 0, false
}

// CastNearest - 모든 형상 중 가장 가까운 히트 거리. 없으면 maxRange, false
func CastNearest(origin, dir Vec2, shapes []Shape, maxRange float64) (float64, bool) {
	best := maxRange
	hit := false
	for _, s := range shapes {
		if t, ok := s.RayHit(origin, dir); ok && t < best {
			best = t
			hit = true
		}
	}
	return best, hit
}

// SegmentBlocked - a→b 직선 구간이 어떤 형상에 막히는지
func SegmentBlocked(a, b Vec2, shapes []Shape) bool {
	d := b.Sub(a)
	l := d.Len()
	if l < Epsilon {
		return false
	}
	dir := d.Scale(1 / l)
	for _, s := range shapes {
		if t, ok := s.RayHit(a, dir); ok && t < l {
			return true
		}
	}
	return false
}

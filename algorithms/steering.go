package algorithms

import "math"

// SteerParams - 회피 필드 조정값
type SteerParams struct {
	Speed       float64 // 목표 방향 속도 (units/s)
	Margin      float64 // 장애물 영향 반경 = 반지름 + Margin
	RepelGain   float64 // 반발력 계수
	TangentGain float64 // 접선(우회) 계수, 직선이 막히면 2배
	Bias        Vec2    // 목표 근접 시 추가되는 끌림 벡터
	StallNudge  float64 // 거의 멈췄을 때 접선 방향 보정량
	Side        Side    // 접선 방향 고정 (SideAuto 면 장애물마다 고름)
}

// Side - 반발 방향 기준 접선 회전 방향
type Side int

const (
	SideAuto  Side = 0
	SideLeft  Side = 1  // 반시계 90°
	SideRight Side = -1 // 시계 90°
)

// SteerResult - 한 틱의 조향 결과
type SteerResult struct {
	Velocity Vec2 `json:"velocity"`
	Repel    Vec2 `json:"repel"`
	Tangent  Vec2 `json:"tangent"`
	Blocked  bool `json:"blocked"` // 목표까지 직선이 막혔는지
}

// fieldSample - 형상별 반발 방향, 거리, 영향 반경
func fieldSample(s Shape, pos Vec2, margin float64) (Vec2, float64, float64) {
	switch sh := s.(type) {
	case Box:
		away := pos.Sub(sh.ClosestPoint(pos))
		d := math.Max(1e-4, away.Len())
		if sh.Contains(pos) {
			away = pos.Sub(sh.C)
		}
		return away.Normalize(), d, sh.Half + margin
	default:
		away := pos.Sub(s.Center())
		return away.Normalize(), away.Len(), s.Extent() + margin
	}
}

// ChooseSide - 반발 방향을 ±90° 회전한 두 후보 중 목표 방향과 더 잘 맞는 쪽.
// 정확히 대칭이면 왼쪽(반시계)을 고른다.
func ChooseSide(away, toTarget Vec2) Vec2 {
	left, right := away.Left(), away.Right()
	if right.Dot(toTarget) > left.Dot(toTarget) {
		return right
	}
	return left
}

// LatchSide - pref 방향과 더 잘 맞는 쪽으로 repel 기준 접선 방향을 정한다.
// repel 이 0 이면 SideAuto.
func LatchSide(repel, pref Vec2) Side {
	if repel.Len() < Epsilon {
		return SideAuto
	}
	if repel.Right().Dot(pref) > repel.Left().Dot(pref) {
		return SideRight
	}
	return SideLeft
}

// tangentFor - 고정 방향이 있으면 그쪽, 아니면 ChooseSide
func tangentFor(away, toTarget Vec2, side Side) Vec2 {
	switch side {
	case SideLeft:
		return away.Left()
	case SideRight:
		return away.Right()
	}
	return ChooseSide(away, toTarget)
}

// AvoidanceField - 영향 반경 안 장애물들의 반발/접선 합
func AvoidanceField(pos, toTarget Vec2, shapes []Shape, margin float64) (repel, tangent Vec2) {
	return avoidanceField(pos, toTarget, shapes, margin, SideAuto)
}

func avoidanceField(pos, toTarget Vec2, shapes []Shape, margin float64, side Side) (repel, tangent Vec2) {
	for _, s := range shapes {
		dir, d, influence := fieldSample(s, pos, margin)
		if d >= influence || d <= 1e-4 {
			continue
		}
		falloff := math.Pow(1-d/influence, 2)
		repel = repel.Add(dir.Scale(falloff))
		tangent = tangent.Add(tangentFor(dir, toTarget, side).Scale(falloff))
	}
	return repel, tangent
}

// Steer - 목표 끌림 + 장애물 반발 + 접선 우회를 합친 속도
func Steer(pos, goal Vec2, shapes []Shape, p SteerParams) SteerResult {
	toGoal := goal.Sub(pos)
	toTarget := toGoal.Normalize()

	repel, tangent := avoidanceField(pos, toTarget, shapes, p.Margin, p.Side)
	blocked := SegmentBlocked(pos, goal, shapes)

	tangentWeight := p.TangentGain
	if blocked {
		tangentWeight *= 2
	}

	v := toTarget.Scale(p.Speed).
		Add(repel.Scale(p.RepelGain)).
		Add(tangent.Scale(tangentWeight)).
		Add(p.Bias)

	if v.Len() < 1e-3 {
		v = v.Add(tangent.Scale(p.StallNudge))
	}

	return SteerResult{Velocity: v, Repel: repel, Tangent: tangent, Blocked: blocked}
}

// NearBias - 목표 주변 band 안에서 선형으로 커지는 끌림 (최대 maxBias)
func NearBias(pos, target Vec2, nearRadius, band, maxBias float64) Vec2 {
	d := pos.Dist(target)
	if band <= 0 || d >= nearRadius+band {
		return Vec2{}
	}
	t := Clamp((nearRadius+band-d)/band, 0, 1)
	return target.Sub(pos).Normalize().Scale(maxBias * t)
}

// clearance - 점과 형상들 사이 최소 여유 거리
func clearance(p Vec2, shapes []Shape) float64 {
	best := math.Inf(1)
	for _, s := range shapes {
		var d float64
		if s.Contains(p) {
			d = -1
		} else {
			d = p.Dist(s.ClosestPoint(p))
		}
		if d < best {
			best = d
		}
	}
	return best
}

// DetourProbe - 목표까지 직선이 막혔을 때 좌/우 측면 후보점을 찔러보고
// 여유가 더 큰 쪽의 측면 단위 벡터를 반환한다. 막히지 않았으면 false.
func DetourProbe(pos, goal Vec2, shapes []Shape, probeDist float64) (Vec2, bool) {
	if !SegmentBlocked(pos, goal, shapes) {
		return Vec2{}, false
	}
	fwd := goal.Sub(pos).Normalize()
	left, right := fwd.Left(), fwd.Right()

	probeL := pos.Add(fwd.Scale(probeDist)).Add(left.Scale(probeDist))
	probeR := pos.Add(fwd.Scale(probeDist)).Add(right.Scale(probeDist))

	cl, cr := clearance(probeL, shapes), clearance(probeR, shapes)
	if cr > cl {
		return right, true
	}
	return left, true
}

// ResolvePenetration - 적분 후 로봇 중심이 장애물 (반지름 + pad) 안이면 경계로 밀어낸다
func ResolvePenetration(pos Vec2, shapes []Shape, pad float64) Vec2 {
	for _, s := range shapes {
		switch sh := s.(type) {
		case Box:
			cp := sh.ClosestPoint(pos)
			away := pos.Sub(cp)
			if sh.Contains(pos) {
				pos = pushOutOfBox(pos, sh, pad)
				continue
			}
			if d := away.Len(); d < pad {
				pos = cp.Add(away.Normalize().Scale(pad))
			}
		default:
			minD := s.Extent() + pad
			away := pos.Sub(s.Center())
			if d := away.Len(); d < minD {
				dir := away.Normalize()
				if dir == (Vec2{}) {
					dir = Vec2{X: -1}
				}
				pos = s.Center().Add(dir.Scale(minD))
			}
		}
	}
	return pos
}

// pushOutOfBox - 가장 얕은 축으로 박스 밖으로 이동
func pushOutOfBox(p Vec2, b Box, pad float64) Vec2 {
	lo, hi := b.Min(), b.Max()
	dl, dr := p.X-lo.X, hi.X-p.X
	dt, db := p.Y-lo.Y, hi.Y-p.Y
	m := math.Min(math.Min(dl, dr), math.Min(dt, db))
	switch m {
	case dl:
		p.X = lo.X - pad
	case dr:
		p.X = hi.X + pad
	case dt:
		p.Y = lo.Y - pad
	default:
		p.Y = hi.Y + pad
	}
	return p
}

// BowedPath - from→to 를 n개 샘플로 보간하고 sin(πt)*bow 만큼 옆으로 휘게 한다
func BowedPath(from, to Vec2, n int, bow float64) []Vec2 {
	if n < 2 {
		return []Vec2{to}
	}
	side := to.Sub(from).Normalize().Left()
	pts := make([]Vec2, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		pts[i] = Lerp(from, to, t).Add(side.Scale(math.Sin(t*math.Pi) * bow))
	}
	return pts
}

// PredictPath - 필드를 고정 보폭으로 적분해 예상 경로를 만든다 (렌더링용)
func PredictPath(start, goal Vec2, shapes []Shape, margin, stepLen float64, maxSteps int, stopDist float64) []Vec2 {
	pts := make([]Vec2, 0, maxSteps+1)
	pts = append(pts, start)
	p := start
	for i := 0; i < maxSteps; i++ {
		toTarget := goal.Sub(p).Normalize()
		repel, _ := AvoidanceField(p, toTarget, shapes, margin)
		p = p.Add(toTarget.Scale(stepLen)).Add(repel.Scale(stepLen))
		pts = append(pts, p)
		if p.Dist(goal) < stopDist {
			break
		}
	}
	return pts
}

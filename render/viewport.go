package render

import (
	"math"

	"evdock-sim/algorithms"
)

// Viewport - 출력 표면 크기 (CSS 픽셀 또는 터미널 셀) 와 픽셀 비율
type Viewport struct {
	Width  float64
	Height float64
	DPR    float64 // 장치 픽셀 비율, 0 이면 1
}

// Transform - 씬 좌표 → 표면 좌표 (비율 유지, 가운데 정렬)
type Transform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
	PixelW  int // 백킹 버퍼 크기 (DPR 적용)
	PixelH  int
}

// Fit - 씬을 표면에 맞춘다. 크기가 0 이거나 유효하지 않으면 false (이번 프레임 건너뜀)
func (v Viewport) Fit(sceneW, sceneH float64) (Transform, bool) {
	if !(v.Width > 0) || !(v.Height > 0) || !(sceneW > 0) || !(sceneH > 0) {
		return Transform{}, false
	}
	if math.IsInf(v.Width, 0) || math.IsInf(v.Height, 0) {
		return Transform{}, false
	}
	dpr := v.DPR
	if !(dpr > 0) || math.IsInf(dpr, 0) {
		dpr = 1
	}

	pw, ph := v.Width*dpr, v.Height*dpr
	scale := math.Min(pw/sceneW, ph/sceneH)
	return Transform{
		Scale:   scale,
		OffsetX: (pw - sceneW*scale) / 2,
		OffsetY: (ph - sceneH*scale) / 2,
		PixelW:  int(math.Round(pw)),
		PixelH:  int(math.Round(ph)),
	}, true
}

// Apply - 씬 좌표를 표면 좌표로
func (t Transform) Apply(p algorithms.Vec2) algorithms.Vec2 {
	return algorithms.V2(t.OffsetX+p.X*t.Scale, t.OffsetY+p.Y*t.Scale)
}

// Invert - 표면 좌표(포인터 등)를 씬 좌표로
func (t Transform) Invert(p algorithms.Vec2) algorithms.Vec2 {
	if t.Scale == 0 {
		return algorithms.Vec2{}
	}
	return algorithms.V2((p.X-t.OffsetX)/t.Scale, (p.Y-t.OffsetY)/t.Scale)
}

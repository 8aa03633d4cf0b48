package render

import (
	"fmt"

	"evdock-sim/algorithms"
	"evdock-sim/models"

	"github.com/gdamore/tcell/v2"
)

// 터미널 셀은 세로가 가로의 약 2배
const cellAspect = 2.0

// 글리프
const (
	glyphRobot    = '@'
	glyphCar      = 'C'
	glyphPort     = '+'
	glyphObstacle = 'O'
	glyphAnchor   = 'A'
	glyphTrail    = '.'
	glyphRay      = '·'
	glyphRayHit   = 'x'
	glyphPath     = ':'
)

var (
	styleRobot    = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleCar      = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	stylePort     = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleObstacle = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleAnchor   = tcell.StyleDefault.Foreground(tcell.ColorPurple)
	styleTrail    = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleRay      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	stylePath     = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
)

// Terminal - 스냅샷을 tcell 화면에 그린다 (마지막 줄은 상태 표시줄)
type Terminal struct {
	screen tcell.Screen
	tr     Transform
}

func NewTerminal(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// Transform - 마지막으로 그린 프레임의 변환
func (t *Terminal) Transform() Transform { return t.tr }

// Draw - 한 프레임 그리기. 화면이 너무 작으면 false (그리지 않음)
func (t *Terminal) Draw(snap models.Snapshot, sceneW, sceneH float64) bool {
	cols, rows := t.screen.Size()
	if rows < 2 {
		return false
	}
	vp := Viewport{Width: float64(cols), Height: float64(rows-1) * cellAspect, DPR: 1}
	tr, ok := vp.Fit(sceneW, sceneH)
	if !ok {
		return false
	}
	t.tr = tr
	t.screen.Clear()

	for _, o := range snap.Obstacles {
		t.fill(o.ToShape(), glyphObstacle, styleObstacle, rows-1)
	}
	for _, r := range snap.Rays {
		t.line(r.From, r.To, glyphRay, styleRay)
		if r.Hit {
			t.put(r.To, glyphRayHit, styleRay)
		}
	}
	for _, p := range snap.PredictedPath {
		t.put(p, glyphPath, stylePath)
	}
	for _, p := range snap.Trail {
		t.put(p, glyphTrail, styleTrail)
	}
	for _, a := range snap.Anchors {
		t.put(a, glyphAnchor, styleAnchor)
	}
	for dx := -2.0; dx <= 2; dx++ {
		t.put(snap.Car.Position.Add(algorithms.V2(dx*8, 0)), glyphCar, styleCar)
	}
	t.put(snap.Port, glyphPort, stylePort)
	t.put(snap.Robot.Position, glyphRobot, styleRobot)

	t.status(snap, cols, rows-1)
	return true
}

func (t *Terminal) cell(p algorithms.Vec2) (int, int) {
	q := t.tr.Apply(p)
	return int(q.X), int(q.Y / cellAspect)
}

func (t *Terminal) put(p algorithms.Vec2, ch rune, style tcell.Style) {
	x, y := t.cell(p)
	cols, rows := t.screen.Size()
	if x < 0 || y < 0 || x >= cols || y >= rows-1 {
		return
	}
	t.screen.SetContent(x, y, ch, nil, style)
}

// line - 선분을 셀 단위로 샘플링해서 빈 칸에만 그린다
func (t *Terminal) line(a, b algorithms.Vec2, ch rune, style tcell.Style) {
	steps := int(a.Dist(b)*t.tr.Scale) + 1
	for i := 1; i < steps; i++ {
		p := algorithms.Lerp(a, b, float64(i)/float64(steps))
		x, y := t.cell(p)
		if prev, _, _, _ := t.screen.GetContent(x, y); prev != ' ' && prev != 0 {
			continue
		}
		t.put(p, ch, style)
	}
}

// fill - 형상 안쪽 셀 채우기 (셀 중심 기준)
func (t *Terminal) fill(s algorithms.Shape, ch rune, style tcell.Style, maxRow int) {
	c, ext := s.Center(), s.Extent()
	x0, y0 := t.cell(c.Sub(algorithms.V2(ext, ext)))
	x1, y1 := t.cell(c.Add(algorithms.V2(ext, ext)))
	drawn := false
	for y := max(0, y0); y <= y1 && y < maxRow; y++ {
		for x := max(0, x0); x <= x1; x++ {
			p := t.tr.Invert(algorithms.V2(float64(x)+0.5, (float64(y)+0.5)*cellAspect))
			if s.Contains(p) {
				t.screen.SetContent(x, y, ch, nil, style)
				drawn = true
			}
		}
	}
	// 셀보다 작은 장애물도 보이도록
	if !drawn {
		t.put(c, ch, style)
	}
}

func (t *Terminal) status(snap models.Snapshot, cols, row int) {
	state := "paused"
	if snap.Playing {
		state = "playing"
	}
	label := snap.Label
	if label == "" {
		label = string(snap.Phase)
	}
	line := fmt.Sprintf(" %s | %s | charge %3.0f%% | x%.2f | t=%.1fs | [space] play [r] reset [1-4] phase [+/-] speed [l] rays [q] quit",
		label, state, snap.Charge*100, snap.Speed, snap.SimTime)
	runes := []rune(line)
	for x := 0; x < cols; x++ {
		ch := ' '
		if x < len(runes) {
			ch = runes[x]
		}
		t.screen.SetContent(x, row, ch, nil, styleStatus)
	}
}

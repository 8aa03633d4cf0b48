package services

import (
	"errors"
	"fmt"
	"math"

	"evdock-sim/algorithms"
	"evdock-sim/models"
)

var (
	ErrNotEditable   = errors.New("simulation is running; pause to edit")
	ErrObstacleLimit = errors.New("obstacle limit reached")
	ErrNoObstacles   = errors.New("no obstacle to remove")
	ErrObstacleIndex = errors.New("obstacle index out of range")
)

// 속도 배율 범위
const (
	minSpeed = 0.1
	maxSpeed = 4.0
)

// Engine - 단계별 도킹 시뮬레이션 엔진.
// 한 번에 하나의 호출자만 상태를 바꾼다고 가정하며 내부 잠금은 없다.
// 서버에서는 Runner 가 잠금을 담당한다.
type Engine struct {
	cfg    models.SimConfig
	layout *LayoutGenerator

	robot     models.Actor
	car       models.Actor
	obstacles []models.Obstacle

	phase      models.Phase
	phaseStart float64 // 단계 진입 시점의 시뮬레이션 시각
	clock      float64 // 누적 시뮬레이션 시간 (초)
	charge     float64

	trail    *Trail
	playing  bool
	editMode bool
	showRays bool
	speed    float64

	// 주행 경로
	path       []algorithms.Vec2
	cursor     int
	goal       algorithms.Vec2
	detourUsed bool
	side       algorithms.Side // 직선이 막혀 있는 동안 유지하는 우회 방향

	scan    scanState
	changes []models.PhaseChange
}

// NewEngine - 설정 검증 후 기본 상태로 엔진 생성
func NewEngine(cfg models.SimConfig, seed int64) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:    cfg,
		layout: NewLayoutGenerator(seed),
		trail:  NewTrail(cfg.TrailCapacity),
	}
	e.restoreDefaults()
	return e, nil
}

// restoreDefaults - 모든 상태를 기본값으로
func (e *Engine) restoreDefaults() {
	e.robot = models.Actor{Position: e.cfg.RobotStart}
	e.car = models.Actor{Position: e.cfg.CarStart}
	e.obstacles = append([]models.Obstacle(nil), e.cfg.Obstacles...)
	e.phase = models.PhaseIdle
	e.phaseStart = 0
	e.clock = 0
	e.charge = 0
	e.trail.Clear()
	e.playing = false
	e.editMode = true
	e.showRays = true
	e.speed = 1
	e.path = nil
	e.cursor = 0
	e.goal = e.Port()
	e.detourUsed = false
	e.side = algorithms.SideAuto
	e.scan = scanState{}
	e.changes = nil
	e.layout.Reseed()
}

// Config - 현재 설정
func (e *Engine) Config() models.SimConfig { return e.cfg }

// ========================================
// 프레임 진행
// ========================================

// Tick - dt(초) 만큼 시뮬레이션을 진행한다. dt 는 MaxStep 으로 자르고 속도 배율을 곱한다.
// 일시정지 중이거나 dt 가 유효하지 않으면 아무것도 하지 않는다.
func (e *Engine) Tick(dt float64) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return
	}
	if !e.playing {
		return
	}
	dt = math.Min(dt, e.cfg.MaxStep)
	step := dt * e.speed
	e.clock += step

	switch e.phase {
	case models.PhaseScan:
		e.scan.advance(e)
	case models.PhaseNavigating, models.PhaseDocking:
		e.steer(step)
	case models.PhaseCharging:
		e.charge = math.Min(1, e.charge+step*e.cfg.ChargeRate)
	}

	if next, ok := e.nextPhase(); ok {
		e.enter(next, false)
	}
}

// steer - 회피 필드로 로봇 한 스텝 이동
func (e *Engine) steer(step float64) {
	port := e.Port()
	shapes := models.Shapes(e.obstacles)

	goal, speed := port, e.cfg.DockSpeed
	if e.phase == models.PhaseNavigating {
		goal, speed = e.pursuitGoal(shapes), e.cfg.NavigateSpeed
	}
	e.goal = goal

	res := algorithms.Steer(e.robot.Position, goal, shapes, algorithms.SteerParams{
		Speed:       speed,
		Margin:      e.cfg.ObstacleInfluenceMargin,
		RepelGain:   e.cfg.RepelGain,
		TangentGain: e.cfg.TangentGain,
		Bias:        algorithms.NearBias(e.robot.Position, port, e.cfg.TargetClear+16, e.cfg.NearBiasBand, e.cfg.NearBias),
		StallNudge:  e.cfg.StallNudge,
		Side:        e.side,
	})
	v := res.Velocity

	if !res.Blocked {
		e.side = algorithms.SideAuto
		e.detourUsed = false
	} else {
		pref := res.Tangent
		if e.cfg.Detour && !e.detourUsed {
			if side, ok := algorithms.DetourProbe(e.robot.Position, goal, shapes, e.cfg.DetourProbe); ok {
				v = v.Add(side.Scale(e.cfg.DetourGain))
				e.detourUsed = true
				pref = side
			}
		}
		// 한 번 고른 방향은 직선이 뚫릴 때까지 유지 (면 앞에서 좌우로 떨지 않게)
		if e.side == algorithms.SideAuto {
			e.side = algorithms.LatchSide(res.Repel, pref)
		}
	}

	move := v.Scale(step)
	// 도킹 중에는 포트를 지나치지 않는다
	if e.phase == models.PhaseDocking {
		if d := e.robot.Position.Dist(port); move.Len() > d {
			move = port.Sub(e.robot.Position)
		}
	}

	bounds := e.cfg.Bounds()
	next := bounds.Clamp(e.robot.Position.Add(move))
	next = algorithms.ResolvePenetration(next, shapes, e.cfg.RobotRadius)
	next = bounds.Clamp(next)
	if !next.IsFinite() {
		return
	}

	if delta := next.Sub(e.robot.Position); delta.Len() > 1e-9 {
		e.robot.Heading = delta.Angle()
	}
	e.robot.Position = next
	e.trail.Push(next)
}

// buildPath - 현재 로봇 위치에서 포트까지 휜 경로 샘플 생성
func (e *Engine) buildPath() {
	e.path = algorithms.BowedPath(e.robot.Position, e.Port(), e.cfg.PathSampleCount, e.cfg.PathBow)
	e.cursor = 0
}

// pursuitGoal - 가장 가까운 샘플에서 lookahead 만큼 앞선 샘플.
// 장애물 여유 안에 들어간 샘플은 건너뛴다 (마지막 샘플 = 포트는 제외).
func (e *Engine) pursuitGoal(shapes []algorithms.Shape) algorithms.Vec2 {
	if len(e.path) == 0 {
		return e.Port()
	}
	last := len(e.path) - 1

	best, bestD := e.cursor, e.robot.Position.Dist(e.path[e.cursor])
	window := min(last, e.cursor+max(1, e.cfg.PathLookahead)*4)
	for i := e.cursor + 1; i <= window; i++ {
		if d := e.robot.Position.Dist(e.path[i]); d < bestD {
			best, bestD = i, d
		}
	}
	e.cursor = best

	idx := min(last, e.cursor+e.cfg.PathLookahead)
	for idx < last && e.sampleBlocked(e.path[idx], shapes) {
		idx++
	}
	return e.path[idx]
}

func (e *Engine) sampleBlocked(p algorithms.Vec2, shapes []algorithms.Shape) bool {
	pad := e.cfg.RobotRadius * 2
	for _, s := range shapes {
		if s.Contains(p) || p.Dist(s.ClosestPoint(p)) < pad {
			return true
		}
	}
	return false
}

// ========================================
// 읽기
// ========================================

func (e *Engine) Phase() models.Phase { return e.phase }

func (e *Engine) Robot() models.Actor { return e.robot }

func (e *Engine) Car() models.Actor { return e.car }

// Port - 충전 포트 위치 (차량 중심 + 도킹 오프셋)
func (e *Engine) Port() algorithms.Vec2 { return e.car.Position.Add(e.cfg.PortOffset) }

// Obstacles - 장애물 복사본
func (e *Engine) Obstacles() []models.Obstacle {
	return append([]models.Obstacle(nil), e.obstacles...)
}

func (e *Engine) Charge() float64 { return e.charge }

func (e *Engine) Trail() []algorithms.Vec2 { return e.trail.Points() }

func (e *Engine) Playing() bool { return e.playing }

func (e *Engine) Speed() float64 { return e.speed }

func (e *Engine) EditMode() bool { return e.editMode }

func (e *Engine) ShowRays() bool { return e.showRays }

func (e *Engine) SimTime() float64 { return e.clock }

// Editable - 드래그/추가/삭제 가능 여부 (일시정지 중에만)
func (e *Engine) Editable() bool { return !e.playing }

// Rays - 현재 로봇 위치에서의 레인지파인더 선분
func (e *Engine) Rays() []models.RaySegment {
	return CastFan(e.robot.Position, models.Shapes(e.obstacles), e.cfg.RayCount(), e.cfg.RayRange)
}

// PredictedPath - 로봇 → 포트 예상 경로 (오버레이)
func (e *Engine) PredictedPath() []algorithms.Vec2 {
	return algorithms.PredictPath(e.robot.Position, e.Port(), models.Shapes(e.obstacles),
		e.cfg.ObstacleInfluenceMargin, 3.5, 160, e.cfg.DockThreshold)
}

// DrainChanges - 마지막 호출 이후의 단계 전이 목록을 꺼낸다
func (e *Engine) DrainChanges() []models.PhaseChange {
	out := e.changes
	e.changes = nil
	return out
}

// Snapshot - 렌더러가 한 프레임에 읽을 전체 상태
func (e *Engine) Snapshot() models.Snapshot {
	s := models.Snapshot{
		Phase:     e.phase,
		Robot:     e.robot,
		Car:       e.car,
		Port:      e.Port(),
		Obstacles: e.Obstacles(),
		Charge:    e.charge,
		Trail:     e.trail.Points(),
		Playing:   e.playing,
		EditMode:  e.editMode,
		ShowRays:  e.showRays,
		Speed:     e.speed,
		SimTime:   e.clock,
		Label:     models.PhaseLabel(e.phase),
	}

	switch e.phase {
	case models.PhaseScan:
		s.Anchors = e.cfg.Anchors()
		s.ScanStage, s.ScanProgress = e.scan.progress(e)
		s.PulseRadius = e.scan.pulse
		if e.cfg.ScanMode == models.ScanModeDwell || s.ScanStage == models.ScanPlanning {
			s.PredictedPath = e.PredictedPath()
		}
	case models.PhaseNavigating:
		s.PredictedPath = e.PredictedPath()
		s.Waypoints = append([]algorithms.Vec2(nil), e.path...)
		g := e.goal
		s.Goal = &g
	case models.PhaseDocking:
		s.PredictedPath = e.PredictedPath()
		g := e.Port()
		s.Goal = &g
	}

	if e.showRays && (e.phase == models.PhaseScan || e.phase.Moving()) {
		s.Rays = e.Rays()
	}
	return s
}

// ========================================
// 조작
// ========================================

// Play - 재생. idle 이면 scan 부터 시작
func (e *Engine) Play() {
	if e.phase == models.PhaseIdle {
		e.enter(models.PhaseScan, false)
	}
	e.playing = true
	e.editMode = false
}

// Pause - 일시정지
func (e *Engine) Pause() {
	e.playing = false
}

// Reset - 기본 상태로 복원. 사용자가 추가/이동한 장애물도 기본 배치로 돌아간다
func (e *Engine) Reset() {
	from := e.phase
	e.restoreDefaults()
	if from != models.PhaseIdle {
		e.changes = append(e.changes, models.PhaseChange{From: from, To: models.PhaseIdle, Manual: true})
	}
}

// SetPhase - 수동 단계 선택 (가드 조건 무시)
func (e *Engine) SetPhase(p models.Phase) error {
	phase, err := models.ParsePhase(string(p))
	if err != nil {
		return err
	}
	e.enter(phase, true)
	return nil
}

// SetSpeed - 속도 배율 (0.1 ~ 4 로 제한)
func (e *Engine) SetSpeed(s float64) {
	if math.IsNaN(s) {
		return
	}
	e.speed = algorithms.Clamp(s, minSpeed, maxSpeed)
}

// SetShowRays - 레인지파인더 표시 토글
func (e *Engine) SetShowRays(on bool) { e.showRays = on }

// SetEditMode - 편집 모드 진입 시 일시정지, 나오면 스캔부터 다시 재생
func (e *Engine) SetEditMode(on bool) {
	if on {
		e.editMode = true
		e.playing = false
		if e.phase == models.PhaseScan {
			e.scan = scanState{}
			e.phaseStart = e.clock
		}
		return
	}
	e.editMode = false
	e.enter(models.PhaseScan, true)
	e.playing = true
}

// MoveRobot - 로봇 드래그
func (e *Engine) MoveRobot(p algorithms.Vec2) error {
	if !e.Editable() {
		return ErrNotEditable
	}
	if !p.IsFinite() {
		return fmt.Errorf("invalid robot position")
	}
	pos := e.cfg.Bounds().Clamp(p)
	pos = algorithms.ResolvePenetration(pos, models.Shapes(e.obstacles), e.cfg.RobotRadius)
	e.robot.Position = e.cfg.Bounds().Clamp(pos)
	e.replan()
	return nil
}

// MoveCar - 차량 드래그. 포트가 옮겨지므로 모든 장애물에 여유를 다시 적용한다
func (e *Engine) MoveCar(p algorithms.Vec2) error {
	if !e.Editable() {
		return ErrNotEditable
	}
	if !p.IsFinite() {
		return fmt.Errorf("invalid car position")
	}
	e.car.Position = e.cfg.CarBounds().Clamp(p)
	for i, o := range e.obstacles {
		e.obstacles[i].Center = e.enforceTargetClear(o.Center, o.Radius)
	}
	e.replan()
	return nil
}

// MoveObstacle - 장애물 드래그
func (e *Engine) MoveObstacle(idx int, p algorithms.Vec2) error {
	if !e.Editable() {
		return ErrNotEditable
	}
	if idx < 0 || idx >= len(e.obstacles) {
		return fmt.Errorf("%w: %d", ErrObstacleIndex, idx)
	}
	e.obstacles[idx].Center = e.enforceTargetClear(p, e.obstacles[idx].Radius)
	e.replan()
	return nil
}

// AddObstacle - 장애물 추가. radius <= 0 이면 12~20 랜덤
func (e *Engine) AddObstacle(p algorithms.Vec2, radius float64) (int, error) {
	if !e.Editable() {
		return -1, ErrNotEditable
	}
	if len(e.obstacles) >= e.cfg.MaxObstacles {
		return -1, fmt.Errorf("%w (%d)", ErrObstacleLimit, e.cfg.MaxObstacles)
	}
	if radius <= 0 {
		radius = e.layout.RandomRadius()
	}
	e.obstacles = append(e.obstacles, models.Obstacle{
		Center: e.enforceTargetClear(p, radius),
		Radius: radius,
		Shape:  models.ShapeCircle,
	})
	e.replan()
	return len(e.obstacles) - 1, nil
}

// RemoveObstacleNear - 점에서 가장 가까운 장애물 삭제, 삭제된 인덱스 반환
func (e *Engine) RemoveObstacleNear(p algorithms.Vec2) (int, error) {
	if !e.Editable() {
		return -1, ErrNotEditable
	}
	if len(e.obstacles) == 0 {
		return -1, ErrNoObstacles
	}
	idx, best := -1, math.Inf(1)
	for i, o := range e.obstacles {
		if d := o.Center.Dist(p); d < best {
			idx, best = i, d
		}
	}
	e.obstacles = append(e.obstacles[:idx], e.obstacles[idx+1:]...)
	e.replan()
	return idx, nil
}

// SetObstacles - 배치 전체 교체 (랜덤 레이아웃 적용)
func (e *Engine) SetObstacles(obs []models.Obstacle) error {
	if !e.Editable() {
		return ErrNotEditable
	}
	if len(obs) > e.cfg.MaxObstacles {
		return fmt.Errorf("%w (%d)", ErrObstacleLimit, e.cfg.MaxObstacles)
	}
	e.obstacles = make([]models.Obstacle, len(obs))
	for i, o := range obs {
		if o.Shape == "" {
			o.Shape = models.ShapeCircle
		}
		o.Center = e.enforceTargetClear(o.Center, o.Radius)
		e.obstacles[i] = o
	}
	e.replan()
	return nil
}

// enforceTargetClear - 포트 주변 (반지름 + TargetClear) 밖으로 밀어내고 씬 안으로 제한
func (e *Engine) enforceTargetClear(center algorithms.Vec2, radius float64) algorithms.Vec2 {
	port := e.Port()
	v := center.Sub(port)
	minD := radius + e.cfg.TargetClear
	if d := v.Len(); d < minD {
		dir := v.Normalize()
		if dir == (algorithms.Vec2{}) {
			dir = algorithms.V2(-1, 0)
		}
		center = port.Add(dir.Scale(minD))
	}
	inner := algorithms.Rect{Max: algorithms.V2(e.cfg.Width, e.cfg.Height)}.Inset(10+radius, 10+radius)
	return inner.Clamp(center)
}

// replan - 주행 중 편집이 있었으면 경로를 다시 만든다
func (e *Engine) replan() {
	e.side = algorithms.SideAuto
	if e.phase == models.PhaseNavigating {
		e.buildPath()
	}
}

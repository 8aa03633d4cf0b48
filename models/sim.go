package models

import (
	"errors"
	"fmt"

	"evdock-sim/algorithms"
)

// ========================================
// 시뮬레이션 단계 (Phase)
// ========================================
type Phase string

const (
	PhaseIdle       Phase = "idle"       // 대기
	PhaseScan       Phase = "scan"       // 앵커 스캔 (위치 추정)
	PhaseNavigating Phase = "navigating" // SLAM 주행 (homing)
	PhaseDocking    Phase = "docking"    // 자석 도킹
	PhaseCharging   Phase = "charging"   // 충전
	PhaseComplete   Phase = "complete"   // 충전 완료
)

// PhaseOrder - 자동 재생 시 기대되는 단계 순서
var PhaseOrder = []Phase{PhaseIdle, PhaseScan, PhaseNavigating, PhaseDocking, PhaseCharging, PhaseComplete}

// ParsePhase - 문자열을 Phase로. "homing" 은 navigating 의 별칭
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "homing", "navigate":
		return PhaseNavigating, nil
	case "dock":
		return PhaseDocking, nil
	case "charge":
		return PhaseCharging, nil
	}
	for _, p := range PhaseOrder {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPhase, s)
}

// Moving - 로봇이 조향 중인 단계인지
func (p Phase) Moving() bool {
	return p == PhaseNavigating || p == PhaseDocking
}

// ScanStage - 신호 교환 스캔의 세부 단계
type ScanStage string

const (
	ScanPulsing  ScanStage = "pulsing"  // 앵커 펄스가 두 액터를 훑는 중
	ScanSignal   ScanStage = "signal"   // 포트 → 로봇 신호 전송
	ScanPlanning ScanStage = "planning" // 경로 표시
)

// 스캔 모드
const (
	ScanModeDwell  = "dwell"  // 고정 시간 후 주행
	ScanModeSignal = "signal" // 앵커 신호 교환 후 주행
)

// 장애물 형상
const (
	ShapeCircle = "circle"
	ShapeBox    = "box"
)

var (
	ErrUnknownPhase  = errors.New("unknown phase")
	ErrInvalidConfig = errors.New("invalid simulation config")
)

// ========================================
// 장애물 / 액터
// ========================================

// Obstacle - 원(반지름) 또는 정사각 박스(반폭). 식별자는 목록 인덱스
type Obstacle struct {
	Center algorithms.Vec2 `json:"center"`
	Radius float64         `json:"radius"` // 박스면 half-extent
	Shape  string          `json:"shape"`
}

// ToShape - 기하 연산용 형상으로 변환
func (o Obstacle) ToShape() algorithms.Shape {
	if o.Shape == ShapeBox {
		return algorithms.Box{C: o.Center, Half: o.Radius}
	}
	return algorithms.Circle{C: o.Center, R: o.Radius}
}

// Shapes - 장애물 목록 → 형상 목록
func Shapes(obs []Obstacle) []algorithms.Shape {
	out := make([]algorithms.Shape, len(obs))
	for i, o := range obs {
		out[i] = o.ToShape()
	}
	return out
}

// Actor - 로봇 또는 도킹 대상(차량)
type Actor struct {
	Position algorithms.Vec2 `json:"position"`
	Heading  float64         `json:"heading"` // 최근 이동 방향 (라디안)
}

// RaySegment - 레인지파인더 한 줄 (로봇 → 히트 지점)
type RaySegment struct {
	From algorithms.Vec2 `json:"from"`
	To   algorithms.Vec2 `json:"to"`
	Hit  bool            `json:"hit"`
}

// ========================================
// 시뮬레이션 설정 (변형들을 하나로 합친 조정값)
// ========================================
type SimConfig struct {
	// 씬
	Width       float64         `json:"width"`
	Height      float64         `json:"height"`
	RobotStart  algorithms.Vec2 `json:"robot_start"`
	CarStart    algorithms.Vec2 `json:"car_start"`
	PortOffset  algorithms.Vec2 `json:"port_offset"`  // 차량 중심 → 충전 포트
	Obstacles   []Obstacle      `json:"obstacles"`    // 기본 배치
	TargetClear float64         `json:"target_clear"` // 포트 주변 장애물 금지 여유
	RobotRadius float64         `json:"robot_radius"`

	// 조향
	NavigateSpeed           float64 `json:"navigate_speed"`
	DockSpeed               float64 `json:"dock_speed"`
	ObstacleInfluenceMargin float64 `json:"obstacle_influence_margin"`
	RepelGain               float64 `json:"repel_gain"`
	TangentGain             float64 `json:"tangent_gain"`
	StallNudge              float64 `json:"stall_nudge"`
	NearBias                float64 `json:"near_bias"`
	NearBiasBand            float64 `json:"near_bias_band"`
	Detour                  bool    `json:"detour"`
	DetourProbe             float64 `json:"detour_probe"`
	DetourGain              float64 `json:"detour_gain"`

	// 단계 전이
	ApproachRadius float64 `json:"approach_radius"` // navigating → docking
	DockThreshold  float64 `json:"dock_threshold"`  // docking → charging
	ChargeRate     float64 `json:"charge_rate"`     // 초당 충전량 (0..1)
	CompleteDwell  float64 `json:"complete_dwell_s"`
	AutoRestart    bool    `json:"auto_restart"`

	// 스캔
	ScanMode         string  `json:"scan_mode"`
	ScanDwell        float64 `json:"scan_dwell_s"`
	MinScan          float64 `json:"min_scan_s"`
	PulseCycle       float64 `json:"pulse_cycle_s"`
	PulseMaxRadius   float64 `json:"pulse_max_radius"`
	SignalDuration   float64 `json:"signal_duration_s"`
	PlanningDuration float64 `json:"planning_duration_s"`

	// 경로
	PathSampleCount int     `json:"path_sample_count"`
	PathBow         float64 `json:"path_bow"`
	PathLookahead   int     `json:"path_lookahead"`

	// 레인지파인더 / 기록
	MaxRays       int     `json:"max_rays"`
	RayRange      float64 `json:"ray_range"`
	ReducedMotion bool    `json:"reduced_motion"`
	TrailCapacity int     `json:"trail_capacity"`
	MaxObstacles  int     `json:"max_obstacles"`

	MaxStep float64 `json:"max_step_s"` // 프레임 dt 상한
}

// DefaultObstacles - 2D 캔버스 기본 장애물 배치
func DefaultObstacles() []Obstacle {
	return []Obstacle{
		{Center: algorithms.V2(160, 120), Radius: 14, Shape: ShapeCircle},
		{Center: algorithms.V2(230, 200), Radius: 16, Shape: ShapeCircle},
		{Center: algorithms.V2(300, 100), Radius: 14, Shape: ShapeCircle},
		{Center: algorithms.V2(120, 220), Radius: 15, Shape: ShapeCircle},
		{Center: algorithms.V2(380, 200), Radius: 16, Shape: ShapeCircle},
	}
}

// DefaultSimConfig - 기본 조정값 (520x340 씬 단위)
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Width:       520,
		Height:      340,
		RobotStart:  algorithms.V2(60, 180),
		CarStart:    algorithms.V2(420, 160),
		PortOffset:  algorithms.V2(-30, 0),
		Obstacles:   DefaultObstacles(),
		TargetClear: 34,
		RobotRadius: 6,

		NavigateSpeed:           48,
		DockSpeed:               26,
		ObstacleInfluenceMargin: 26,
		RepelGain:               160,
		TangentGain:             84,
		StallNudge:              30,
		NearBias:                20,
		NearBiasBand:            40,
		DetourProbe:             30,
		DetourGain:              40,

		ApproachRadius: 40,
		DockThreshold:  10,
		ChargeRate:     0.12,
		CompleteDwell:  3,

		ScanMode:         ScanModeDwell,
		ScanDwell:        2.4,
		MinScan:          1.8,
		PulseCycle:       3.2,
		PulseMaxRadius:   360,
		SignalDuration:   1.4,
		PlanningDuration: 1.2,

		PathSampleCount: 64,
		PathBow:         14,
		PathLookahead:   4,

		MaxRays:       48,
		RayRange:      140,
		TrailCapacity: 800,
		MaxObstacles:  8,

		MaxStep: 1.0 / 30,
	}
}

// Validate - 설정 검증
func (c SimConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: scene size must be positive", ErrInvalidConfig)
	case c.NavigateSpeed <= 0 || c.DockSpeed <= 0:
		return fmt.Errorf("%w: speeds must be positive", ErrInvalidConfig)
	case c.DockThreshold <= 0 || c.ApproachRadius <= c.DockThreshold:
		return fmt.Errorf("%w: approach_radius must exceed dock_threshold > 0", ErrInvalidConfig)
	case c.ObstacleInfluenceMargin <= 0:
		return fmt.Errorf("%w: obstacle_influence_margin must be positive", ErrInvalidConfig)
	case c.ChargeRate <= 0:
		return fmt.Errorf("%w: charge_rate must be positive", ErrInvalidConfig)
	case c.PathSampleCount < 2:
		return fmt.Errorf("%w: path_sample_count must be at least 2", ErrInvalidConfig)
	case c.MaxRays <= 0 || c.RayRange <= 0:
		return fmt.Errorf("%w: rangefinder needs rays and range", ErrInvalidConfig)
	case c.TrailCapacity <= 0:
		return fmt.Errorf("%w: trail_capacity must be positive", ErrInvalidConfig)
	case c.MaxObstacles < len(c.Obstacles):
		return fmt.Errorf("%w: %d default obstacles exceed max_obstacles %d", ErrInvalidConfig, len(c.Obstacles), c.MaxObstacles)
	case c.MaxStep <= 0:
		return fmt.Errorf("%w: max_step_s must be positive", ErrInvalidConfig)
	case c.PulseCycle <= 0 || c.PulseMaxRadius <= 0 || c.ScanDwell <= 0:
		return fmt.Errorf("%w: scan timings must be positive", ErrInvalidConfig)
	case c.SignalDuration <= 0 || c.PlanningDuration <= 0 || c.MinScan < 0:
		return fmt.Errorf("%w: signal/planning durations must be positive", ErrInvalidConfig)
	case c.CompleteDwell <= 0:
		return fmt.Errorf("%w: complete_dwell_s must be positive", ErrInvalidConfig)
	case c.PathLookahead < 0:
		return fmt.Errorf("%w: path_lookahead must not be negative", ErrInvalidConfig)
	case c.ScanMode != ScanModeDwell && c.ScanMode != ScanModeSignal:
		return fmt.Errorf("%w: scan_mode %q", ErrInvalidConfig, c.ScanMode)
	}
	return nil
}

// Bounds - 로봇 이동 가능 영역
func (c SimConfig) Bounds() algorithms.Rect {
	return algorithms.Rect{Max: algorithms.V2(c.Width, c.Height)}.Inset(10, 10)
}

// CarBounds - 차량 드래그 가능 영역
func (c SimConfig) CarBounds() algorithms.Rect {
	return algorithms.Rect{Max: algorithms.V2(c.Width, c.Height)}.Inset(40, 20)
}

// Anchors - 스캔용 고정 앵커 4개 (씬 모서리)
func (c SimConfig) Anchors() []algorithms.Vec2 {
	return []algorithms.Vec2{
		algorithms.V2(20, 20),
		algorithms.V2(c.Width-20, 20),
		algorithms.V2(20, c.Height-40),
		algorithms.V2(c.Width-20, c.Height-40),
	}
}

// RayCount - reduced motion 이면 절반
func (c SimConfig) RayCount() int {
	if c.ReducedMotion {
		return max(8, c.MaxRays/2)
	}
	return c.MaxRays
}

// ========================================
// 스냅샷 (렌더러가 한 프레임에 읽는 상태)
// ========================================
type Snapshot struct {
	Phase         Phase             `json:"phase"`
	ScanStage     ScanStage         `json:"scan_stage,omitempty"`
	ScanProgress  float64           `json:"scan_progress"` // 현재 세부 단계 진행도 0..1
	PulseRadius   float64           `json:"pulse_radius,omitempty"`
	Robot         Actor             `json:"robot"`
	Car           Actor             `json:"car"`
	Port          algorithms.Vec2   `json:"port"`
	Obstacles     []Obstacle        `json:"obstacles"`
	Anchors       []algorithms.Vec2 `json:"anchors,omitempty"`
	Charge        float64           `json:"charge"` // 0..1
	Trail         []algorithms.Vec2 `json:"trail"`
	Rays          []RaySegment      `json:"rays,omitempty"`
	PredictedPath []algorithms.Vec2 `json:"predicted_path,omitempty"`
	Waypoints     []algorithms.Vec2 `json:"waypoints,omitempty"`
	Goal          *algorithms.Vec2  `json:"goal,omitempty"`
	Playing       bool              `json:"playing"`
	EditMode      bool              `json:"edit_mode"`
	ShowRays      bool              `json:"show_rays"`
	Speed         float64           `json:"speed"`
	SimTime       float64           `json:"sim_time"` // 누적 시뮬레이션 시간 (초)
	Label         string            `json:"label"`
}

// PhaseLabel - 화면 표시용 단계 이름
func PhaseLabel(p Phase) string {
	switch p {
	case PhaseScan:
		return "Anchors localization"
	case PhaseNavigating:
		return "SLAM navigation"
	case PhaseDocking:
		return "Magnetic docking"
	case PhaseCharging:
		return "Charging"
	case PhaseComplete:
		return "Charge complete"
	default:
		return ""
	}
}

// PhaseChange - 단계 전이 기록
type PhaseChange struct {
	From    Phase   `json:"from"`
	To      Phase   `json:"to"`
	Manual  bool    `json:"manual"`
	SimTime float64 `json:"sim_time"`
}

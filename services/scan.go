package services

import (
	"math"

	"evdock-sim/algorithms"
	"evdock-sim/models"
)

// 펄스 시작 반지름
const pulseBaseRadius = 8

// scanState - 앵커 신호 교환 스캔 상태.
// 앵커 펄스가 로봇과 차량을 모두 훑으면 signal → planning 을 거쳐 주행으로 넘어간다.
type scanState struct {
	pulse      float64 // 현재 펄스 반지름
	cycle      int     // 현재 펄스 주기 번호
	robotHit   bool
	carHit     bool
	stage      models.ScanStage
	stageStart float64 // 세부 단계 진입 시각 (스캔 경과 기준)
	ready      bool
}

// advance - 스캔 경과 시간에 맞춰 펄스를 키우고 세부 단계를 진행한다
func (s *scanState) advance(e *Engine) {
	cfg := e.cfg
	tau := e.clock - e.phaseStart
	if s.stage == "" {
		s.stage = models.ScanPulsing
		s.pulse = pulseBaseRadius
	}

	prev := s.pulse
	cycle := int(math.Floor(tau / cfg.PulseCycle))
	frac := math.Mod(tau, cfg.PulseCycle) / cfg.PulseCycle
	s.pulse = pulseBaseRadius + frac*cfg.PulseMaxRadius

	if cfg.ScanMode != models.ScanModeSignal {
		s.cycle = cycle
		return
	}

	if s.stage == models.ScanPulsing {
		if cycle != s.cycle {
			// 주기 경계: 이전 주기의 꼬리를 처리한 뒤 표시를 초기화
			s.graze(e, prev, pulseBaseRadius+cfg.PulseMaxRadius)
			s.cycle = cycle
			if !(s.robotHit && s.carHit) {
				s.robotHit, s.carHit = false, false
			}
			s.graze(e, pulseBaseRadius, s.pulse)
		} else {
			s.graze(e, prev, s.pulse)
		}
		if s.robotHit && s.carHit && tau >= cfg.MinScan {
			s.stage = models.ScanSignal
			s.stageStart = tau
		}
		return
	}

	elapsed := tau - s.stageStart
	switch s.stage {
	case models.ScanSignal:
		if elapsed >= cfg.SignalDuration {
			s.stage = models.ScanPlanning
			s.stageStart = tau
		}
	case models.ScanPlanning:
		if elapsed >= cfg.PlanningDuration {
			s.ready = true
		}
	}
}

// graze - 반지름이 lo → hi 로 커지는 동안 앵커 펄스가 액터에 닿았는지 표시
func (s *scanState) graze(e *Engine, lo, hi float64) {
	if hi < lo {
		return
	}
	anchors := e.cfg.Anchors()
	s.robotHit = s.robotHit || reached(anchors, e.robot.Position, lo, hi)
	s.carHit = s.carHit || reached(anchors, e.Port(), lo, hi)
}

func reached(anchors []algorithms.Vec2, p algorithms.Vec2, lo, hi float64) bool {
	for _, a := range anchors {
		if d := a.Dist(p); d >= lo && d <= hi {
			return true
		}
	}
	return false
}

// progress - 현재 세부 단계와 진행도 (0..1)
func (s *scanState) progress(e *Engine) (models.ScanStage, float64) {
	tau := e.clock - e.phaseStart
	if e.cfg.ScanMode != models.ScanModeSignal {
		return models.ScanPulsing, ratio(tau, e.cfg.ScanDwell)
	}
	switch s.stage {
	case models.ScanSignal:
		return s.stage, ratio(tau-s.stageStart, e.cfg.SignalDuration)
	case models.ScanPlanning:
		return s.stage, ratio(tau-s.stageStart, e.cfg.PlanningDuration)
	}
	hits := 0
	if s.robotHit {
		hits++
	}
	if s.carHit {
		hits++
	}
	return models.ScanPulsing, float64(hits) / 2
}

// ratio - 경과/전체 진행도 (0..1). 전체가 0 이하면 이미 끝난 것으로 본다
func ratio(elapsed, total float64) float64 {
	if !(total > 0) {
		return 1
	}
	return algorithms.Clamp(elapsed/total, 0, 1)
}

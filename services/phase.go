package services

import (
	"evdock-sim/algorithms"
	"evdock-sim/models"
)

// nextPhase - 매 틱 한 번 평가되는 전이 가드. 전이가 없으면 false.
// 시간 전이는 "단계 진입 시각 + 대기 시간" 비교로 처리한다.
func (e *Engine) nextPhase() (models.Phase, bool) {
	elapsed := e.clock - e.phaseStart
	port := e.Port()

	switch e.phase {
	case models.PhaseScan:
		if e.cfg.ScanMode == models.ScanModeSignal {
			if e.scan.ready {
				return models.PhaseNavigating, true
			}
		} else if elapsed >= e.cfg.ScanDwell {
			return models.PhaseNavigating, true
		}

	case models.PhaseNavigating:
		if e.robot.Position.Dist(port) < e.cfg.ApproachRadius {
			return models.PhaseDocking, true
		}

	case models.PhaseDocking:
		if e.robot.Position.Dist(port) < e.cfg.DockThreshold {
			return models.PhaseCharging, true
		}

	case models.PhaseCharging:
		if e.charge >= 1 {
			return models.PhaseComplete, true
		}

	case models.PhaseComplete:
		if elapsed >= e.cfg.CompleteDwell {
			if e.cfg.AutoRestart {
				return models.PhaseScan, true
			}
			return models.PhaseIdle, true
		}
	}
	return "", false
}

// enter - 단계 진입 처리. manual 이면 사용자가 직접 고른 것
func (e *Engine) enter(next models.Phase, manual bool) {
	from := e.phase

	// 완료 후 자동 복귀: 로봇/차량 위치와 충전량 초기화 (장애물은 유지)
	if from == models.PhaseComplete && !manual {
		e.robot = models.Actor{Position: e.cfg.RobotStart}
		e.car = models.Actor{Position: e.cfg.CarStart}
		e.charge = 0
		e.trail.Clear()
		if next == models.PhaseIdle {
			e.playing = false
			e.editMode = true
		}
	}

	e.phase = next
	e.phaseStart = e.clock

	switch next {
	case models.PhaseIdle:
		e.charge = 0
		e.path = nil
	case models.PhaseScan:
		e.scan = scanState{}
	case models.PhaseNavigating:
		e.buildPath()
		e.detourUsed = false
		e.side = algorithms.SideAuto
	case models.PhaseDocking:
		e.goal = e.Port()
		e.detourUsed = false
		e.side = algorithms.SideAuto
	case models.PhaseCharging:
		e.charge = 0
	case models.PhaseComplete:
		e.charge = 1
	}

	e.changes = append(e.changes, models.PhaseChange{From: from, To: next, Manual: manual, SimTime: e.clock})
}

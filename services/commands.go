package services

import (
	"errors"
	"fmt"

	"evdock-sim/models"
)

// ErrBadCommand - 알 수 없는 액션이거나 필수 값 누락
var ErrBadCommand = errors.New("invalid command")

// ApplyCommand - 웹/CLI 명령을 엔진 조작으로 변환
func ApplyCommand(e *Engine, cmd models.Command) error {
	switch cmd.Action {
	case models.ActionPlay:
		e.Play()
	case models.ActionPause:
		e.Pause()
	case models.ActionReset:
		e.Reset()
	case models.ActionSetPhase:
		p, err := models.ParsePhase(cmd.Phase)
		if err != nil {
			return err
		}
		return e.SetPhase(p)
	case models.ActionSetSpeed:
		if cmd.Speed <= 0 {
			return fmt.Errorf("%w: speed must be positive", ErrBadCommand)
		}
		e.SetSpeed(cmd.Speed)
	case models.ActionShowRays:
		e.SetShowRays(enabled(cmd, !e.ShowRays()))
	case models.ActionEditMode:
		e.SetEditMode(enabled(cmd, !e.EditMode()))
	case models.ActionMoveRobot:
		if cmd.Point == nil {
			return fmt.Errorf("%w: point required", ErrBadCommand)
		}
		return e.MoveRobot(*cmd.Point)
	case models.ActionMoveCar:
		if cmd.Point == nil {
			return fmt.Errorf("%w: point required", ErrBadCommand)
		}
		return e.MoveCar(*cmd.Point)
	case models.ActionMoveObstacle:
		if cmd.Point == nil {
			return fmt.Errorf("%w: point required", ErrBadCommand)
		}
		return e.MoveObstacle(cmd.Index, *cmd.Point)
	case models.ActionAddObstacle:
		if cmd.Point == nil {
			return fmt.Errorf("%w: point required", ErrBadCommand)
		}
		_, err := e.AddObstacle(*cmd.Point, cmd.Radius)
		return err
	case models.ActionRemoveObstacle:
		if cmd.Point == nil {
			return fmt.Errorf("%w: point required", ErrBadCommand)
		}
		_, err := e.RemoveObstacleNear(*cmd.Point)
		return err
	default:
		return fmt.Errorf("%w: unknown action %q", ErrBadCommand, cmd.Action)
	}
	return nil
}

// enabled - Enable 이 없으면 토글
func enabled(cmd models.Command, toggle bool) bool {
	if cmd.Enable == nil {
		return toggle
	}
	return *cmd.Enable
}

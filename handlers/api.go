package handlers

import (
	"errors"

	"evdock-sim/models"
	"evdock-sim/services"

	"github.com/gofiber/fiber/v2"
)

// API - 핸들러가 쓰는 서비스 묶음
type API struct {
	Sessions *SessionManager
	Logs     *services.LogStore // DB 없으면 nil
	Layouts  *services.LayoutGenerator
	Models   *services.ModelLoader
	Cache    *services.SnapshotCache // Redis 없으면 nil
	Config   models.SimConfig
}

// errorStatus - 서비스 에러 → HTTP 상태 코드
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrNotEditable):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrObstacleLimit),
		errors.Is(err, services.ErrNoObstacles):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrObstacleIndex),
		errors.Is(err, services.ErrBadCommand),
		errors.Is(err, models.ErrUnknownPhase),
		errors.Is(err, models.ErrInvalidConfig):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func failErr(c *fiber.Ctx, err error) error {
	return fail(c, errorStatus(err), err.Error())
}

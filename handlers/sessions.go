package handlers

import (
	"errors"

	"evdock-sim/models"

	"github.com/gofiber/fiber/v2"
)

// HandleCreateSession - POST /api/sessions
func (a *API) HandleCreateSession(c *fiber.Ctx) error {
	// 부분 설정은 기본 설정 위에 덮어쓴다
	base := a.Sessions.BaseConfig()
	opts := SessionOptions{Config: &base}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&opts); err != nil {
			return fail(c, fiber.StatusBadRequest, "잘못된 요청 형식입니다")
		}
	}

	s, err := a.Sessions.Create(opts)
	if err != nil {
		return failErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"session":  s.Runner.Info(),
		"snapshot": s.Runner.Snapshot(),
	})
}

// HandleListSessions - GET /api/sessions
func (a *API) HandleListSessions(c *fiber.Ctx) error {
	sessions := a.Sessions.List()
	return c.JSON(fiber.Map{
		"success":  true,
		"count":    len(sessions),
		"sessions": sessions,
	})
}

// HandleGetSession - GET /api/sessions/:id
func (a *API) HandleGetSession(c *fiber.Ctx) error {
	id := c.Params("id")
	s, err := a.Sessions.Get(id)
	if err != nil {
		// 이 프로세스에 없는 세션은 Redis 의 마지막 스냅샷으로 응답 (읽기 전용)
		if a.Cache != nil && errors.Is(err, ErrSessionNotFound) {
			if snap, cerr := a.Cache.Get(c.UserContext(), id); cerr == nil {
				return c.JSON(fiber.Map{
					"success":  true,
					"cached":   true,
					"snapshot": snap,
				})
			}
		}
		return failErr(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"session":  s.Runner.Info(),
		"clients":  s.Hub.ClientCount(),
		"config":   s.Runner.Config(),
		"snapshot": s.Runner.Snapshot(),
	})
}

// HandleDeleteSession - DELETE /api/sessions/:id
func (a *API) HandleDeleteSession(c *fiber.Ctx) error {
	if err := a.Sessions.Delete(c.Params("id")); err != nil {
		return failErr(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleCommand - POST /api/sessions/:id/commands
func (a *API) HandleCommand(c *fiber.Ctx) error {
	id := c.Params("id")
	s, err := a.Sessions.Get(id)
	if err != nil {
		return failErr(c, err)
	}

	var cmd models.Command
	if err := c.BodyParser(&cmd); err != nil {
		return fail(c, fiber.StatusBadRequest, "잘못된 요청 형식입니다")
	}

	a.Sessions.Touch(id)
	snap, err := s.Runner.Apply(c.UserContext(), cmd)
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"snapshot": snap,
	})
}

// HandleGetScene - GET /api/sessions/:id/scene
func (a *API) HandleGetScene(c *fiber.Ctx) error {
	s, err := a.Sessions.Get(c.Params("id"))
	if err != nil {
		return failErr(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"scene":   s.Runner.Scene(a.Models),
	})
}

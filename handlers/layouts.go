package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type RandomLayoutRequest struct {
	Count     int    `json:"count"`
	SessionID string `json:"session_id,omitempty"` // 있으면 세션에 바로 적용
}

// HandleRandomLayout - POST /api/layouts/random
func (a *API) HandleRandomLayout(c *fiber.Ctx) error {
	var req RandomLayoutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "잘못된 요청 형식입니다")
		}
	}
	if req.Count <= 0 {
		req.Count = len(a.Config.Obstacles)
	}

	layout := a.Layouts.Generate(a.Config, req.Count)

	resp := fiber.Map{
		"success": true,
		"layout":  layout,
	}
	if req.SessionID != "" {
		s, err := a.Sessions.Get(req.SessionID)
		if err != nil {
			return failErr(c, err)
		}
		snap, err := s.Runner.ApplyLayout(c.UserContext(), layout.Obstacles)
		if err != nil {
			return failErr(c, err)
		}
		resp["snapshot"] = snap
	}
	return c.JSON(resp)
}

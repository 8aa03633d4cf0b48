package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// HandleGetRecentLogs - 최근 이벤트 로그 조회
func (a *API) HandleGetRecentLogs(c *fiber.Ctx) error {
	if a.Logs == nil {
		return fail(c, fiber.StatusServiceUnavailable, "이벤트 로그 DB가 설정되지 않았습니다")
	}

	sessionID := c.Query("session_id")
	eventType := c.Query("event_type")
	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	var (
		logs interface{}
		n    int
	)
	if eventType != "" {
		if sessionID == "" {
			return fail(c, fiber.StatusBadRequest, "event_type 조회에는 session_id 가 필요합니다")
		}
		rows, err := a.Logs.ByEventType(sessionID, eventType, limit)
		if err != nil {
			return fail(c, fiber.StatusInternalServerError, "Failed to fetch logs")
		}
		logs, n = rows, len(rows)
	} else {
		rows, err := a.Logs.Recent(sessionID, limit)
		if err != nil {
			return fail(c, fiber.StatusInternalServerError, "Failed to fetch logs")
		}
		logs, n = rows, len(rows)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   n,
		"logs":    logs,
	})
}

// HandleGetLogStats - 로그 통계 조회
func (a *API) HandleGetLogStats(c *fiber.Ctx) error {
	if a.Logs == nil {
		return fail(c, fiber.StatusServiceUnavailable, "이벤트 로그 DB가 설정되지 않았습니다")
	}

	hours, err := strconv.Atoi(c.Query("hours", "24"))
	if err != nil || hours <= 0 {
		hours = 24
	}

	stats, err := a.Logs.Stats(c.Query("session_id"), hours)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch stats")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}

package handlers

import (
	"log"

	"evdock-sim/algorithms"
	"evdock-sim/models"

	"github.com/gofiber/fiber/v2"
)

type PathfindingRequest struct {
	Start     algorithms.Vec2   `json:"start"`
	Goal      algorithms.Vec2   `json:"goal"`
	SessionID string            `json:"session_id,omitempty"` // 세션 장애물 사용
	Width     float64           `json:"width,omitempty"`
	Height    float64           `json:"height,omitempty"`
	Obstacles []models.Obstacle `json:"obstacles,omitempty"`
	CellSize  float64           `json:"cell_size,omitempty"`
	Margin    float64           `json:"margin,omitempty"`
}

type PathfindingResponse struct {
	Success bool              `json:"success"`
	Path    []algorithms.Vec2 `json:"path,omitempty"`
	Length  float64           `json:"length,omitempty"`
	Message string            `json:"message,omitempty"`
}

// HandlePathfinding - 장애물 격자 위 A* 경로
func (a *API) HandlePathfinding(c *fiber.Ctx) error {
	var req PathfindingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(PathfindingResponse{
			Success: false,
			Message: "잘못된 요청 형식입니다",
		})
	}

	width, height, obstacles := a.Config.Width, a.Config.Height, req.Obstacles
	if req.SessionID != "" {
		s, err := a.Sessions.Get(req.SessionID)
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(PathfindingResponse{Success: false, Message: err.Error()})
		}
		obstacles = s.Runner.Snapshot().Obstacles
	}
	if req.Width > 0 && req.Height > 0 {
		width, height = req.Width, req.Height
	}
	cellSize := req.CellSize
	if cellSize <= 0 {
		cellSize = 10
	}
	margin := req.Margin
	if margin <= 0 {
		margin = a.Config.RobotRadius
	}

	log.Printf("📍 경로 탐색 요청: (%.1f, %.1f) → (%.1f, %.1f), 장애물 %d개, 셀 %.1f",
		req.Start.X, req.Start.Y, req.Goal.X, req.Goal.Y, len(obstacles), cellSize)

	bounds := algorithms.Rect{Max: algorithms.V2(width, height)}
	grid := algorithms.GridFromShapes(bounds, cellSize, models.Shapes(obstacles), margin)

	path := grid.FindPath(req.Start, req.Goal)
	if path == nil {
		log.Printf("❌ 경로를 찾을 수 없습니다")
		return c.Status(fiber.StatusOK).JSON(PathfindingResponse{
			Success: false,
			Message: "경로를 찾을 수 없습니다",
		})
	}
	path = algorithms.SimplifyPath(path, cellSize*0.5)

	log.Printf("✅ 경로 탐색 성공: %d개 웨이포인트", len(path))
	return c.Status(fiber.StatusOK).JSON(PathfindingResponse{
		Success: true,
		Path:    path,
		Length:  algorithms.PathLength(path),
		Message: "경로 탐색 성공",
	})
}

package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
)

// NewApp - 미들웨어와 라우트가 연결된 fiber 앱
func NewApp(a *API, allowOrigins string, accessLog bool) *fiber.App {
	app := fiber.New(fiber.Config{AppName: "evdock-sim"})

	if accessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("EV 도킹 시뮬레이션 서버가 실행 중입니다.")
	})

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "OK",
			"sessions": a.Sessions.Statistics(),
			"time":     time.Now().Format(time.RFC3339),
		})
	})

	// 세션
	sessions := api.Group("/sessions")
	sessions.Post("/", a.HandleCreateSession)
	sessions.Get("/", a.HandleListSessions)
	sessions.Get("/:id", a.HandleGetSession)
	sessions.Delete("/:id", a.HandleDeleteSession)
	sessions.Post("/:id/commands", a.HandleCommand)
	sessions.Get("/:id/scene", a.HandleGetScene)

	// 배치 / 경로
	api.Post("/layouts/random", a.HandleRandomLayout)
	api.Post("/pathfinding", a.HandlePathfinding)

	// 로그 조회
	logsAPI := api.Group("/logs")
	logsAPI.Get("/recent", a.HandleGetRecentLogs)
	logsAPI.Get("/stats", a.HandleGetLogStats)

	// WebSocket
	app.Use("/websocket", RequireUpgrade)
	app.Get("/websocket/sim/:id", websocket.New(a.HandleSimWebSocket))

	return app
}

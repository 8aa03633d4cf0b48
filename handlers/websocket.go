package handlers

import (
	"context"
	"log"
	"time"

	"evdock-sim/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RequireUpgrade - WebSocket 업그레이드 요청만 통과
func RequireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleSimWebSocket - 세션 스트림. 서버는 snapshot/phase_change/narration 을 보내고
// 클라이언트는 command 메시지로 조작한다
func (a *API) HandleSimWebSocket(c *websocket.Conn) {
	id := c.Params("id")
	s, err := a.Sessions.Get(id)
	if err != nil {
		_ = c.WriteJSON(models.NewMessage(models.MessageTypeError, fiber.Map{"message": err.Error()}))
		_ = c.Close()
		return
	}

	if !s.Hub.Register(c) {
		_ = c.Close()
		return
	}
	defer s.Hub.Unregister(c)
	a.Sessions.Touch(id)

	// 연결 확인 + 현재 상태
	s.Hub.Send(c, models.NewMessage(models.MessageTypeSystemInfo, models.SystemInfo{
		SessionID:        id,
		ConnectedClients: s.Hub.ClientCount(),
		ServerTime:       time.Now(),
		Message:          "웹 클라이언트 연결됨",
	}))
	s.Hub.Send(c, models.NewMessage(models.MessageTypeSnapshot, s.Runner.Snapshot()))

	for {
		var msg models.CommandWire
		if err := c.ReadJSON(&msg); err != nil {
			log.Printf("웹 메시지 읽기 오류 [%s]: %v", id, err)
			break
		}

		if msg.Type != models.MessageTypeCommand {
			log.Printf("알 수 없는 메시지 타입: %s", msg.Type)
			s.Hub.Send(c, models.NewMessage(models.MessageTypeError, fiber.Map{"message": "unsupported message type: " + msg.Type}))
			continue
		}

		a.Sessions.Touch(id)
		if _, err := s.Runner.Apply(context.Background(), msg.Data); err != nil {
			s.Hub.Send(c, models.NewMessage(models.MessageTypeError, fiber.Map{
				"message": err.Error(),
				"action":  msg.Data.Action,
			}))
		}
	}
}

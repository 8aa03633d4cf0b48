package handlers

import (
	"context"
	"log"
	"sync"

	"evdock-sim/models"

	"github.com/gofiber/websocket/v2"
)

// outbound - 특정 연결 하나로 보내는 메시지
type outbound struct {
	conn *websocket.Conn
	msg  models.WebSocketMessage
}

// Hub - 세션 하나의 WebSocket 클라이언트 관리자.
// 모든 쓰기는 run 고루틴에서만 일어난다.
type Hub struct {
	sessionID  string
	clients    map[*websocket.Conn]bool
	broadcast  chan models.WebSocketMessage
	direct     chan outbound
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	count      int
	mutex      sync.RWMutex
}

// NewHub - 세션용 허브 생성
func NewHub(sessionID string) *Hub {
	return &Hub{
		sessionID:  sessionID,
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan models.WebSocketMessage, 100),
		direct:     make(chan outbound, 16),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
	}
}

// Start - 클라이언트 관리 루프. ctx 가 끝나면 모든 연결을 닫는다
func (h *Hub) Start(ctx context.Context) {
	go func() {
		defer close(h.done)
		for {
			select {
			case <-ctx.Done():
				h.closeAll()
				return
			case conn := <-h.register:
				h.clients[conn] = true
				h.setCount(len(h.clients))
				log.Printf("클라이언트 등록 [%s]: %s", h.sessionID, conn.RemoteAddr())
			case conn := <-h.unregister:
				h.drop(conn)
			case out := <-h.direct:
				if h.clients[out.conn] {
					h.write(out.conn, out.msg)
				}
			case msg := <-h.broadcast:
				for conn := range h.clients {
					h.write(conn, msg)
				}
			}
		}
	}()
}

func (h *Hub) write(conn *websocket.Conn, msg models.WebSocketMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("전송 실패 [%s]: %v", h.sessionID, err)
		h.drop(conn)
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	h.setCount(len(h.clients))
	_ = conn.Close()
	log.Printf("클라이언트 해제 [%s]: %s", h.sessionID, conn.RemoteAddr())
}

func (h *Hub) closeAll() {
	for conn := range h.clients {
		_ = conn.Close()
	}
	h.clients = map[*websocket.Conn]bool{}
	h.setCount(0)
}

func (h *Hub) setCount(n int) {
	h.mutex.Lock()
	h.count = n
	h.mutex.Unlock()
}

// Register - 연결 등록. 허브가 멈췄으면 false
func (h *Hub) Register(conn *websocket.Conn) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Unregister - 연결 해제
func (h *Hub) Unregister(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Send - 연결 하나에 전송
func (h *Hub) Send(conn *websocket.Conn, msg models.WebSocketMessage) {
	select {
	case h.direct <- outbound{conn: conn, msg: msg}:
	case <-h.done:
	}
}

// BroadcastMessage - 모든 클라이언트에 전송. 밀려 있으면 버린다 (스냅샷은 다음 프레임이 덮어쓴다)
func (h *Hub) BroadcastMessage(msg models.WebSocketMessage) {
	select {
	case h.broadcast <- msg:
	default:
		if msg.Type != models.MessageTypeSnapshot {
			log.Printf("⚠️ 브로드캐스트 큐 가득 참 [%s]: %s", h.sessionID, msg.Type)
		}
	}
}

// ClientCount - 접속 중인 클라이언트 수
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.count
}

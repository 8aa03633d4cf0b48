package models

import (
	"time"

	"evdock-sim/algorithms"
)

// ========================================
// 메시지 타입 상수
// ========================================
const (
	// Server → Web
	MessageTypeSnapshot    = "snapshot"     // 프레임 상태
	MessageTypePhaseChange = "phase_change" // 단계 전이
	MessageTypeNarration   = "narration"    // 단계 해설
	MessageTypeSystemInfo  = "system_info"  // 시스템 정보
	MessageTypeError       = "error"        // 명령 거부

	// Web → Server
	MessageTypeCommand = "command" // 시뮬레이션 조작
)

// ========================================
// 공통 WebSocket 메시지 형식
// ========================================
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"` // Unix timestamp (ms)
}

// NewMessage - 현재 시각으로 메시지 생성
func NewMessage(msgType string, data interface{}) WebSocketMessage {
	return WebSocketMessage{Type: msgType, Data: data, Timestamp: time.Now().UnixMilli()}
}

// ========================================
// 명령
// ========================================

// 명령 액션 상수
const (
	ActionPlay           = "play"
	ActionPause          = "pause"
	ActionReset          = "reset"
	ActionSetPhase       = "set_phase"
	ActionSetSpeed       = "set_speed"
	ActionShowRays       = "show_rays"
	ActionEditMode       = "edit_mode"
	ActionMoveRobot      = "move_robot"
	ActionMoveCar        = "move_car"
	ActionMoveObstacle   = "move_obstacle"
	ActionAddObstacle    = "add_obstacle"
	ActionRemoveObstacle = "remove_obstacle"
)

// Command - 웹/CLI 에서 들어오는 조작 명령
type Command struct {
	Action string           `json:"action"`
	Phase  string           `json:"phase,omitempty"`
	Speed  float64          `json:"speed,omitempty"`
	Enable *bool            `json:"enable,omitempty"`
	Point  *algorithms.Vec2 `json:"point,omitempty"`
	Index  int              `json:"index,omitempty"`
	Radius float64          `json:"radius,omitempty"`
}

// CommandWire - WebSocket 으로 들어온 명령 메시지 (Data 를 타입으로 받기 위함)
type CommandWire struct {
	Type string  `json:"type"`
	Data Command `json:"data"`
}

// ========================================
// 해설
// ========================================
type Narration struct {
	Text      string `json:"text"`
	Phase     Phase  `json:"phase"`
	Source    string `json:"source"` // "template" | "llm"
	Timestamp int64  `json:"timestamp"`
}

// ========================================
// 시스템 정보
// ========================================
type SystemInfo struct {
	SessionID        string    `json:"session_id"`
	ConnectedClients int       `json:"connected_clients"`
	ServerTime       time.Time `json:"server_time"`
	Message          string    `json:"message,omitempty"`
}

package models

import (
	"time"
)

// 이벤트 타입
const (
	EventPhaseChange = "phase_change"
	EventCommand     = "command"
	EventNarration   = "narration"
	EventSession     = "session"
)

// SimEventLog - 세션별 시뮬레이션 이벤트 로그
type SimEventLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	SessionID string    `gorm:"size:64;index" json:"session_id"`
	EventType string    `gorm:"size:32;index" json:"event_type"`

	// 단계
	FromPhase string  `gorm:"size:16" json:"from_phase"`
	ToPhase   string  `gorm:"size:16" json:"to_phase"`
	Manual    bool    `json:"manual"`
	SimTime   float64 `json:"sim_time"`

	// 로봇 상태
	RobotX float64 `json:"robot_x"`
	RobotY float64 `json:"robot_y"`
	Charge float64 `json:"charge"`

	// 명령
	Action string `gorm:"size:32" json:"action"`

	// 해설 / 원본
	Text     string `json:"text"`
	DataJSON string `json:"data_json"`
}

// LogStats - 세션 이벤트 통계
type LogStats struct {
	SessionID   string           `json:"session_id"`
	TotalLogs   int64            `json:"total_logs"`
	EventCounts map[string]int64 `json:"event_counts"`
	Since       time.Time        `json:"since"`
}

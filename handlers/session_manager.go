package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"evdock-sim/models"
	"evdock-sim/services"

	"github.com/google/uuid"
)

// ErrSessionNotFound - 없는 세션 ID
var ErrSessionNotFound = errors.New("session not found")

// Session - 엔진 러너와 WebSocket 허브 한 쌍
type Session struct {
	Runner *services.Runner
	Hub    *Hub

	cancel     context.CancelFunc
	lastActive time.Time
}

// SessionOptions - 세션 생성 시 선택 값
type SessionOptions struct {
	Config   *models.SimConfig `json:"config,omitempty"`
	Seed     int64             `json:"seed,omitempty"`
	AutoPlay bool              `json:"auto_play"`
}

// SessionManager - 시뮬레이션 세션 관리 (세션마다 독립된 엔진)
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	ctx       context.Context
	base      models.SimConfig
	frameRate int
	logs      *services.LogBuffer
	cache     *services.SnapshotCache
	rewriter  services.CaptionRewriter
}

// ManagerDeps - 세션이 공유하는 서비스
type ManagerDeps struct {
	BaseConfig models.SimConfig
	FrameRate  int
	Logs       *services.LogBuffer
	Cache      *services.SnapshotCache
	Rewriter   services.CaptionRewriter
}

// NewSessionManager - ctx 가 끝나면 모든 세션의 틱/허브가 멈춘다
func NewSessionManager(ctx context.Context, deps ManagerDeps) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*Session),
		ctx:       ctx,
		base:      deps.BaseConfig,
		frameRate: deps.FrameRate,
		logs:      deps.Logs,
		cache:     deps.Cache,
		rewriter:  deps.Rewriter,
	}
}

// BaseConfig - 세션 기본 설정 복사본 (요청 JSON 은 이 위에 덮어쓴다)
func (m *SessionManager) BaseConfig() models.SimConfig {
	cfg := m.base
	cfg.Obstacles = append([]models.Obstacle(nil), m.base.Obstacles...)
	return cfg
}

// Create - 새 세션 생성 후 틱 시작
func (m *SessionManager) Create(opts SessionOptions) (*Session, error) {
	cfg := m.BaseConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	engine, err := services.NewEngine(cfg, opts.Seed)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	hub := NewHub(id)
	runner := services.NewRunner(id, engine, services.RunnerOptions{
		FrameRate: m.frameRate,
		Broadcast: hub.BroadcastMessage,
		Rewriter:  m.rewriter,
		Logs:      m.logs,
		Cache:     m.cache,
	})

	ctx, cancel := context.WithCancel(m.ctx)
	hub.Start(ctx)
	runner.Start(ctx)

	s := &Session{Runner: runner, Hub: hub, cancel: cancel, lastActive: time.Now()}
	if opts.AutoPlay {
		if _, err := runner.Apply(ctx, models.Command{Action: models.ActionPlay}); err != nil {
			log.Printf("⚠️ 자동 재생 실패 [%s]: %v", id, err)
		}
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.logs.LogSession(id, "created")
	log.Printf("[Manager] Session created: %s\n", id)
	return s, nil
}

// Get - 세션 조회
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Touch - 마지막 활동 시각 갱신
func (m *SessionManager) Touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.lastActive = time.Now()
	}
}

// List - 생성 순서대로 세션 요약
func (m *SessionManager) List() []services.SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]services.SessionInfo, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Runner.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Delete - 세션 종료 및 제거
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	m.stop(id, s)
	m.logs.LogSession(id, "deleted")
	log.Printf("[Manager] Session removed: %s\n", id)
	return nil
}

func (m *SessionManager) stop(id string, s *Session) {
	s.Runner.Stop()
	s.cancel()
	if m.cache != nil {
		if err := m.cache.Delete(context.Background(), id); err != nil {
			log.Printf("❌ 스냅샷 캐시 삭제 실패: %v", err)
		}
	}
}

// Count - 세션 수
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupIdle - 클라이언트 없이 멈춘 채 timeout 이 지난 세션 정리
func (m *SessionManager) CleanupIdle(timeout time.Duration) int {
	now := time.Now()
	var stale []string

	m.mu.RLock()
	for id, s := range m.sessions {
		if s.Hub.ClientCount() == 0 && !s.Runner.Info().Playing && now.Sub(s.lastActive) > timeout {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range stale {
		if err := m.Delete(id); err == nil {
			log.Printf("[Manager] Session cleanup: %s (idle)\n", id)
		}
	}
	return len(stale)
}

// Shutdown - 모든 세션 종료
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for id, s := range sessions {
		m.stop(id, s)
	}
	log.Printf("🛑 세션 %d개 종료", len(sessions))
}

// Statistics - 세션 통계
func (m *SessionManager) Statistics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	playing, clients := 0, 0
	phases := map[models.Phase]int{}
	for _, s := range m.sessions {
		info := s.Runner.Info()
		if info.Playing {
			playing++
		}
		phases[info.Phase]++
		clients += s.Hub.ClientCount()
	}
	return map[string]interface{}{
		"total_sessions": len(m.sessions),
		"playing":        playing,
		"clients":        clients,
		"phases":         phases,
	}
}

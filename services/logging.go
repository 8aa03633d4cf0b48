package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"evdock-sim/models"

	"gorm.io/gorm"
)

// LogBuffer - 이벤트 로그 버퍼 (비동기 일괄 저장)
type LogBuffer struct {
	db        *gorm.DB
	logs      []models.SimEventLog
	mu        sync.Mutex
	flushSize int           // 일괄 저장 크기
	flushTime time.Duration // 자동 플러시 시간
	stopChan  chan struct{}
	doneChan  chan struct{}
	stopOnce  sync.Once
}

// NewLogBuffer - 로그 버퍼 생성. db 가 nil 이면 기록만 하고 저장하지 않는다
func NewLogBuffer(db *gorm.DB, flushSize int, flushInterval time.Duration) *LogBuffer {
	if flushSize <= 0 {
		flushSize = 50
	}
	if flushInterval <= 0 {
		flushInterval = 10 * time.Second
	}
	return &LogBuffer{
		db:        db,
		logs:      make([]models.SimEventLog, 0, flushSize*2),
		flushSize: flushSize,
		flushTime: flushInterval,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

// Start - 자동 플러시 고루틴 시작
func (lb *LogBuffer) Start() {
	go lb.autoFlush()
	log.Printf("✅ 로깅 시스템 초기화 완료 (flushSize: %d, flushInterval: %v)", lb.flushSize, lb.flushTime)
}

// autoFlush - 주기적 로그 저장
func (lb *LogBuffer) autoFlush() {
	defer close(lb.doneChan)
	ticker := time.NewTicker(lb.flushTime)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lb.Flush()
		case <-lb.stopChan:
			lb.Flush() // 종료 시 남은 로그 저장
			return
		}
	}
}

// Add - 버퍼에 추가. 크기가 차면 즉시 플러시
func (lb *LogBuffer) Add(entry models.SimEventLog) {
	if lb == nil {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	lb.mu.Lock()
	lb.logs = append(lb.logs, entry)
	size := len(lb.logs)
	lb.mu.Unlock()

	if size >= lb.flushSize {
		go lb.Flush()
	}
}

// Pending - 아직 저장되지 않은 로그 수
func (lb *LogBuffer) Pending() int {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return len(lb.logs)
}

// Flush - 버퍼의 모든 로그를 DB에 저장
func (lb *LogBuffer) Flush() {
	lb.mu.Lock()
	if len(lb.logs) == 0 {
		lb.mu.Unlock()
		return
	}
	logsToSave := make([]models.SimEventLog, len(lb.logs))
	copy(logsToSave, lb.logs)
	lb.logs = lb.logs[:0]
	lb.mu.Unlock()

	if lb.db == nil {
		return
	}
	if err := lb.db.CreateInBatches(logsToSave, 100).Error; err != nil {
		log.Printf("❌ 로그 저장 실패: %v", err)
		return
	}
	log.Printf("💾 로그 %d개 저장 완료", len(logsToSave))
}

// Stop - 남은 로그를 저장하고 자동 플러시 종료
func (lb *LogBuffer) Stop() {
	lb.stopOnce.Do(func() {
		close(lb.stopChan)
		<-lb.doneChan
		log.Println("🛑 로깅 시스템 종료")
	})
}

// ========================================
// 이벤트별 기록
// ========================================

// LogPhaseChange - 단계 전이 기록
func (lb *LogBuffer) LogPhaseChange(sessionID string, ch models.PhaseChange, robot models.Actor, charge float64) {
	lb.Add(models.SimEventLog{
		SessionID: sessionID,
		EventType: models.EventPhaseChange,
		FromPhase: string(ch.From),
		ToPhase:   string(ch.To),
		Manual:    ch.Manual,
		SimTime:   ch.SimTime,
		RobotX:    robot.Position.X,
		RobotY:    robot.Position.Y,
		Charge:    charge,
	})
}

// LogCommand - 명령 기록
func (lb *LogBuffer) LogCommand(sessionID string, cmd models.Command, phase models.Phase) {
	dataJSON, _ := json.Marshal(cmd)
	lb.Add(models.SimEventLog{
		SessionID: sessionID,
		EventType: models.EventCommand,
		ToPhase:   string(phase),
		Action:    cmd.Action,
		DataJSON:  string(dataJSON),
	})
}

// LogNarration - 해설 기록
func (lb *LogBuffer) LogNarration(sessionID string, n models.Narration) {
	lb.Add(models.SimEventLog{
		SessionID: sessionID,
		EventType: models.EventNarration,
		ToPhase:   string(n.Phase),
		Text:      n.Text,
		Action:    n.Source,
	})
}

// LogSession - 세션 생성/삭제 기록
func (lb *LogBuffer) LogSession(sessionID, action string) {
	lb.Add(models.SimEventLog{
		SessionID: sessionID,
		EventType: models.EventSession,
		Action:    action,
	})
}

// ========================================
// 조회
// ========================================

// LogStore - 저장된 이벤트 로그 조회
type LogStore struct {
	db *gorm.DB
}

func NewLogStore(db *gorm.DB) *LogStore {
	return &LogStore{db: db}
}

// Recent - 세션의 최근 로그 (sessionID 가 비면 전체)
func (s *LogStore) Recent(sessionID string, limit int) ([]models.SimEventLog, error) {
	var logs []models.SimEventLog
	q := s.db.Order("created_at DESC, id DESC")
	if sessionID != "" {
		q = q.Where("session_id = ?", sessionID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&logs).Error
	return logs, err
}

// ByEventType - 이벤트 타입별 로그
func (s *LogStore) ByEventType(sessionID, eventType string, limit int) ([]models.SimEventLog, error) {
	var logs []models.SimEventLog
	err := s.db.Where("session_id = ? AND event_type = ?", sessionID, eventType).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// Stats - 최근 hours 시간의 로그 통계
func (s *LogStore) Stats(sessionID string, hours int) (models.LogStats, error) {
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	stats := models.LogStats{SessionID: sessionID, Since: since, EventCounts: map[string]int64{}}

	base := func() *gorm.DB {
		q := s.db.Model(&models.SimEventLog{}).Where("created_at >= ?", since)
		if sessionID != "" {
			q = q.Where("session_id = ?", sessionID)
		}
		return q
	}

	if err := base().Count(&stats.TotalLogs).Error; err != nil {
		return stats, err
	}

	var eventCounts []struct {
		EventType string
		Count     int64
	}
	if err := base().Select("event_type, COUNT(*) as count").Group("event_type").Scan(&eventCounts).Error; err != nil {
		return stats, err
	}
	for _, ec := range eventCounts {
		stats.EventCounts[ec.EventType] = ec.Count
	}
	return stats, nil
}

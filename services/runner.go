package services

import (
	"context"
	"log"
	"sync"
	"time"

	"evdock-sim/models"
)

// RunnerOptions - 러너 연결 대상. 모두 선택 사항
type RunnerOptions struct {
	FrameRate int                           // 초당 틱 수 (기본 30)
	Broadcast func(models.WebSocketMessage) // WebSocket 전송
	Rewriter  CaptionRewriter               // 해설 LLM
	Logs      *LogBuffer                    // 이벤트 로그
	Cache     *SnapshotCache                // Redis 스냅샷 캐시
}

// SessionInfo - 세션 목록용 요약
type SessionInfo struct {
	ID        string       `json:"id"`
	Phase     models.Phase `json:"phase"`
	Label     string       `json:"label"`
	Playing   bool         `json:"playing"`
	Charge    float64      `json:"charge"`
	SimTime   float64      `json:"sim_time"`
	CreatedAt time.Time    `json:"created_at"`
}

// Runner - 엔진 하나를 고정 주기로 돌리는 세션 러너.
// 틱/명령/조회 모두 mu 를 잡으므로 엔진을 바꾸는 쪽은 항상 하나다.
type Runner struct {
	ID        string
	CreatedAt time.Time

	engine   *Engine
	mu       sync.Mutex
	opts     RunnerOptions
	narrator *Narrator

	frame     int
	snapEvery int
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewRunner - 러너 생성 (아직 돌지 않음)
func NewRunner(id string, engine *Engine, opts RunnerOptions) *Runner {
	if opts.FrameRate <= 0 {
		opts.FrameRate = 30
	}
	r := &Runner{
		ID:        id,
		CreatedAt: time.Now(),
		engine:    engine,
		opts:      opts,
		snapEvery: max(1, opts.FrameRate/15), // 스냅샷은 약 15fps
	}
	r.narrator = NewNarrator(opts.Rewriter, r.emitNarration)
	return r
}

// Narrator - 해설기 (쿨다운 조정 등)
func (r *Runner) Narrator() *Narrator { return r.narrator }

// Start - 틱 고루틴 시작
func (r *Runner) Start(parent context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(parent)
	r.running = true
	r.cancel = cancel
	r.done = make(chan struct{})
	r.mu.Unlock()

	r.narrator.Start(ctx)
	go r.loop(ctx)
	log.Printf("🚀 시뮬레이션 세션 시작: %s (%dHz)", r.ID, r.opts.FrameRate)
}

// Stop - 틱 중지. 대기 중인 해설은 버린다
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	cancel()
	<-done
	log.Printf("🛑 시뮬레이션 세션 중지: %s", r.ID)
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)
	interval := time.Second / time.Duration(r.opts.FrameRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Step(ctx, now.Sub(last).Seconds())
			last = now
		}
	}
}

// Step - dt 초 진행하고 전이/스냅샷을 내보낸다
func (r *Runner) Step(ctx context.Context, dt float64) {
	r.mu.Lock()
	r.engine.Tick(dt)
	changes := r.engine.DrainChanges()
	r.frame++
	var snap *models.Snapshot
	if r.frame%r.snapEvery == 0 || len(changes) > 0 {
		s := r.engine.Snapshot()
		snap = &s
	}
	r.mu.Unlock()

	r.publish(ctx, changes, snap)
}

// Apply - 명령 적용 후 최신 스냅샷 반환
func (r *Runner) Apply(ctx context.Context, cmd models.Command) (models.Snapshot, error) {
	r.mu.Lock()
	err := ApplyCommand(r.engine, cmd)
	phase := r.engine.Phase()
	changes := r.engine.DrainChanges()
	snap := r.engine.Snapshot()
	r.mu.Unlock()

	if err != nil {
		log.Printf("⚠️ 명령 거부 [%s] %s: %v", r.ID, cmd.Action, err)
		return snap, err
	}
	r.opts.Logs.LogCommand(r.ID, cmd, phase)
	r.publish(ctx, changes, &snap)
	return snap, nil
}

// ApplyLayout - 장애물 배치 교체 (일시정지 중에만)
func (r *Runner) ApplyLayout(ctx context.Context, obs []models.Obstacle) (models.Snapshot, error) {
	r.mu.Lock()
	err := r.engine.SetObstacles(obs)
	snap := r.engine.Snapshot()
	r.mu.Unlock()

	if err != nil {
		return snap, err
	}
	r.publish(ctx, nil, &snap)
	return snap, nil
}

// Snapshot - 현재 상태
func (r *Runner) Snapshot() models.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Snapshot()
}

// Config - 세션 엔진 설정
func (r *Runner) Config() models.SimConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Config()
}

// Scene - 3D 씬 그래프
func (r *Runner) Scene(loader *ModelLoader) models.SceneGraph {
	r.mu.Lock()
	defer r.mu.Unlock()
	return BuildScene(r.engine.Snapshot(), r.engine.Config(), loader)
}

// Info - 세션 요약
func (r *Runner) Info() SessionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return SessionInfo{
		ID:        r.ID,
		Phase:     r.engine.Phase(),
		Label:     models.PhaseLabel(r.engine.Phase()),
		Playing:   r.engine.Playing(),
		Charge:    r.engine.Charge(),
		SimTime:   r.engine.SimTime(),
		CreatedAt: r.CreatedAt,
	}
}

// publish - 전이 로그/해설/캐시/브로드캐스트 (잠금 밖에서 호출)
func (r *Runner) publish(ctx context.Context, changes []models.PhaseChange, snap *models.Snapshot) {
	for _, ch := range changes {
		log.Printf("🔄 [%s] %s → %s (t=%.2fs)", r.ID, ch.From, ch.To, ch.SimTime)
		if snap != nil {
			r.opts.Logs.LogPhaseChange(r.ID, ch, snap.Robot, snap.Charge)
		}
		r.broadcast(models.NewMessage(models.MessageTypePhaseChange, ch))
		r.narrator.Queue(ch)
		if r.opts.Cache != nil {
			if err := r.opts.Cache.PublishPhase(ctx, r.ID, ch); err != nil {
				log.Printf("❌ 단계 전이 발행 실패: %v", err)
			}
		}
	}

	if snap == nil {
		return
	}
	r.broadcast(models.NewMessage(models.MessageTypeSnapshot, snap))
	if r.opts.Cache != nil {
		if err := r.opts.Cache.Put(ctx, r.ID, *snap); err != nil {
			log.Printf("❌ 스냅샷 캐시 실패: %v", err)
		}
	}
}

func (r *Runner) emitNarration(n models.Narration) {
	r.opts.Logs.LogNarration(r.ID, n)
	r.broadcast(models.NewMessage(models.MessageTypeNarration, n))
}

func (r *Runner) broadcast(msg models.WebSocketMessage) {
	if r.opts.Broadcast != nil {
		r.opts.Broadcast(msg)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"evdock-sim/models"
)

// ErrLLMDisabled - Ollama 미설정
var ErrLLMDisabled = errors.New("llm disabled")

// CaptionRewriter - 템플릿 해설을 다시 써 주는 대상 (Ollama 또는 테스트 대역)
type CaptionRewriter interface {
	Rewrite(ctx context.Context, caption string) (string, error)
}

// 단계별 해설 우선순위 (높을수록 중요)
var phasePriority = map[models.Phase]int{
	models.PhaseComplete:   100,
	models.PhaseCharging:   90,
	models.PhaseDocking:    80,
	models.PhaseNavigating: 70,
	models.PhaseScan:       60,
	models.PhaseIdle:       10,
}

// 이 값 이상이면 쿨다운을 무시한다
const urgentPriority = 80

// Narrator - 단계 전이마다 화면 해설을 만든다.
// 템플릿 문장을 기본으로 하고 rewriter 가 있으면 LLM 으로 다듬는다.
type Narrator struct {
	rewriter CaptionRewriter
	emit     func(models.Narration)

	cooldown time.Duration
	lastAt   time.Time
	enabled  bool
	now      func() time.Time
	mu       sync.Mutex

	queue chan models.PhaseChange
}

// NewNarrator - 해설기 생성. rewriter 는 nil 가능
func NewNarrator(rewriter CaptionRewriter, emit func(models.Narration)) *Narrator {
	return &Narrator{
		rewriter: rewriter,
		emit:     emit,
		cooldown: 2 * time.Second,
		enabled:  true,
		now:      time.Now,
		queue:    make(chan models.PhaseChange, 16),
	}
}

// SetCooldown - 해설 간격 설정
func (n *Narrator) SetCooldown(d time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cooldown = d
}

// SetEnabled - 해설 켜기/끄기
func (n *Narrator) SetEnabled(on bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = on
}

// Start - 큐 처리 고루틴. ctx 가 끝나면 남은 해설은 버린다
func (n *Narrator) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ch := <-n.queue:
				if nar, ok := n.Narrate(ctx, ch); ok && ctx.Err() == nil && n.emit != nil {
					n.emit(nar)
				}
			}
		}
	}()
}

// Queue - 단계 전이를 큐에 넣는다 (가득 차면 버림)
func (n *Narrator) Queue(ch models.PhaseChange) {
	select {
	case n.queue <- ch:
	default:
		log.Printf("⚠️ 해설 큐 가득 참, 이벤트 무시: %s → %s", ch.From, ch.To)
	}
}

// Narrate - 전이 하나에 대한 해설을 동기적으로 만든다.
// 비활성 상태이거나 쿨다운 중이면 false (우선순위가 높은 전이는 쿨다운 무시).
func (n *Narrator) Narrate(ctx context.Context, ch models.PhaseChange) (models.Narration, bool) {
	n.mu.Lock()
	if !n.enabled {
		n.mu.Unlock()
		return models.Narration{}, false
	}
	now := n.now()
	if phasePriority[ch.To] < urgentPriority && now.Sub(n.lastAt) < n.cooldown {
		n.mu.Unlock()
		return models.Narration{}, false
	}
	n.lastAt = now
	n.mu.Unlock()

	nar := models.Narration{
		Text:      Caption(ch),
		Phase:     ch.To,
		Source:    "template",
		Timestamp: now.UnixMilli(),
	}
	if n.rewriter == nil {
		return nar, true
	}

	text, err := n.rewriter.Rewrite(ctx, nar.Text)
	switch {
	case err == nil && text != "":
		nar.Text, nar.Source = text, "llm"
	case err != nil && !errors.Is(err, ErrLLMDisabled):
		log.Printf("❌ 해설 생성 실패, 템플릿 사용: %v", err)
	}
	return nar, true
}

// Caption - 단계 전이 템플릿 문장
func Caption(ch models.PhaseChange) string {
	label := models.PhaseLabel(ch.To)
	var text string
	switch ch.To {
	case models.PhaseIdle:
		return "Idle. Press play to start docking."
	case models.PhaseScan:
		text = "Anchors localize the robot and the charging port."
	case models.PhaseNavigating:
		text = "The robot plans a path and weaves around obstacles."
	case models.PhaseDocking:
		text = "Final approach. Magnets pull the connector into place."
	case models.PhaseCharging:
		text = "Connector seated. Charging the vehicle."
	case models.PhaseComplete:
		text = "Charging complete."
	default:
		text = string(ch.To)
	}
	if ch.Manual {
		text += " (manual)"
	}
	if label == "" {
		return text
	}
	return fmt.Sprintf("%s: %s", label, text)
}

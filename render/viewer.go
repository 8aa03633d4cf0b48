package render

import (
	"context"
	"time"

	"evdock-sim/models"
	"evdock-sim/services"

	"github.com/gdamore/tcell/v2"
)

// 숫자 키 → 단계
var phaseKeys = map[rune]models.Phase{
	'1': models.PhaseScan,
	'2': models.PhaseNavigating,
	'3': models.PhaseDocking,
	'4': models.PhaseCharging,
}

const speedStep = 0.25

// Viewer - 로컬 엔진을 터미널에서 돌려 보는 뷰어
type Viewer struct {
	screen    tcell.Screen
	term      *Terminal
	engine    *services.Engine
	frameRate int
}

func NewViewer(screen tcell.Screen, engine *services.Engine, frameRate int) *Viewer {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &Viewer{
		screen:    screen,
		term:      NewTerminal(screen),
		engine:    engine,
		frameRate: frameRate,
	}
}

// HandleEvent - 키 입력 처리. 종료하면 false
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch r := ev.Rune(); r {
		case 'q':
			return false
		case ' ':
			if v.engine.Playing() {
				v.engine.Pause()
			} else {
				v.engine.Play()
			}
		case 'r':
			v.engine.Reset()
		case '+', '=':
			v.engine.SetSpeed(v.engine.Speed() + speedStep)
		case '-':
			v.engine.SetSpeed(v.engine.Speed() - speedStep)
		case 'l':
			v.engine.SetShowRays(!v.engine.ShowRays())
		default:
			if p, ok := phaseKeys[r]; ok {
				_ = v.engine.SetPhase(p)
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// Frame - dt 만큼 진행하고 다시 그린다
func (v *Viewer) Frame(dt float64) {
	v.engine.Tick(dt)
	v.engine.DrainChanges()
	cfg := v.engine.Config()
	if v.term.Draw(v.engine.Snapshot(), cfg.Width, cfg.Height) {
		v.screen.Show()
	}
}

// Run - 이벤트/프레임 루프. q 또는 ctx 종료 시 반환
func (v *Viewer) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(v.frameRate))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-eventChan:
			if !v.HandleEvent(ev) {
				return
			}
		case now := <-ticker.C:
			v.Frame(now.Sub(last).Seconds())
			last = now
		}
	}
}

package services

import "evdock-sim/algorithms"

// Trail - 최근 로봇 위치를 고정 용량으로 보관하는 링 버퍼 (렌더링 전용)
type Trail struct {
	buf   []algorithms.Vec2
	start int
	size  int
}

// NewTrail - 용량 capacity 의 트레일 생성
func NewTrail(capacity int) *Trail {
	if capacity < 1 {
		capacity = 1
	}
	return &Trail{buf: make([]algorithms.Vec2, capacity)}
}

// Push - 위치 추가. 가득 차면 가장 오래된 점을 버린다
func (t *Trail) Push(p algorithms.Vec2) {
	if t.size < len(t.buf) {
		t.buf[(t.start+t.size)%len(t.buf)] = p
		t.size++
		return
	}
	t.buf[t.start] = p
	t.start = (t.start + 1) % len(t.buf)
}

// Points - 오래된 순서대로 복사본 반환
func (t *Trail) Points() []algorithms.Vec2 {
	out := make([]algorithms.Vec2, t.size)
	for i := 0; i < t.size; i++ {
		out[i] = t.buf[(t.start+i)%len(t.buf)]
	}
	return out
}

func (t *Trail) Len() int { return t.size }

// Clear - 비우기
func (t *Trail) Clear() {
	t.start = 0
	t.size = 0
}

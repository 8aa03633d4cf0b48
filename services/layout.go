package services

import (
	"math/rand"
	"sync"
	"time"

	"evdock-sim/algorithms"
	"evdock-sim/models"

	"github.com/google/uuid"
)

// 추가 장애물 반지름 범위
const (
	obstacleRadiusMin = 12
	obstacleRadiusMax = 20
)

// LayoutGenerator - 랜덤 장애물 배치 생성기
type LayoutGenerator struct {
	mu   sync.Mutex
	seed int64
	rng  *rand.Rand
}

// NewLayoutGenerator - seed 가 0 이면 현재 시각으로 시드
func NewLayoutGenerator(seed int64) *LayoutGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &LayoutGenerator{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// Seed - 생성에 쓰인 시드
func (lg *LayoutGenerator) Seed() int64 { return lg.seed }

// Reseed - 처음 시드로 되돌린다 (리셋 후 동일 동작 보장)
func (lg *LayoutGenerator) Reseed() {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	lg.rng = rand.New(rand.NewSource(lg.seed))
}

// RandomRadius - 더블클릭 추가 시 쓰는 12..20 정수 반지름
func (lg *LayoutGenerator) RandomRadius() float64 {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	return float64(obstacleRadiusMin + lg.rng.Intn(obstacleRadiusMax-obstacleRadiusMin+1))
}

// Generate - 로봇 시작점과 충전 포트를 피해 count 개의 원형 장애물을 배치한다
func (lg *LayoutGenerator) Generate(cfg models.SimConfig, count int) models.ObstacleLayout {
	if count > cfg.MaxObstacles {
		count = cfg.MaxObstacles
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()

	// 경계에서 안전한 여백 (10%)
	minX, maxX := cfg.Width*0.1, cfg.Width*0.9
	minY, maxY := cfg.Height*0.1, cfg.Height*0.9
	port := cfg.CarStart.Add(cfg.PortOffset)

	obstacles := make([]models.Obstacle, 0, count)
	for attempt := 0; len(obstacles) < count && attempt < count*50; attempt++ {
		r := float64(obstacleRadiusMin + lg.rng.Intn(obstacleRadiusMax-obstacleRadiusMin+1))
		c := algorithms.V2(minX+lg.rng.Float64()*(maxX-minX), minY+lg.rng.Float64()*(maxY-minY))

		if c.Dist(port) < r+cfg.TargetClear || c.Dist(cfg.RobotStart) < r+cfg.ObstacleInfluenceMargin {
			continue
		}
		if c.Dist(cfg.CarStart) < r+40 {
			continue
		}
		overlap := false
		for _, o := range obstacles {
			if c.Dist(o.Center) < r+o.Radius+cfg.RobotRadius*2 {
				overlap = true
				break
			}
		}
		if overlap {
			continue
		}
		obstacles = append(obstacles, models.Obstacle{Center: c, Radius: r, Shape: models.ShapeCircle})
	}

	return models.ObstacleLayout{
		ID:        uuid.New().String(),
		Width:     cfg.Width,
		Height:    cfg.Height,
		Obstacles: obstacles,
		Seed:      lg.seed,
		CreatedAt: time.Now(),
	}
}

package services

import (
	"math"

	"evdock-sim/algorithms"
	"evdock-sim/models"
)

// CastFan - origin 에서 count 개의 레이를 균등 각도로 쏘아 가장 가까운 히트까지의 선분을 만든다.
// 시각화 전용이며 프레임 간에 보관하지 않는다.
func CastFan(origin algorithms.Vec2, shapes []algorithms.Shape, count int, maxRange float64) []models.RaySegment {
	if count <= 0 || maxRange <= 0 {
		return nil
	}
	rays := make([]models.RaySegment, count)
	for i := 0; i < count; i++ {
		ang := float64(i) / float64(count) * 2 * math.Pi
		dir := algorithms.FromAngle(ang)
		t, hit := algorithms.CastNearest(origin, dir, shapes, maxRange)
		rays[i] = models.RaySegment{
			From: origin,
			To:   origin.Add(dir.Scale(t)),
			Hit:  hit,
		}
	}
	return rays
}

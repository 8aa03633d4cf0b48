package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"evdock-sim/models"
)

const (
	// 키 패턴: evdock:snapshot:{session_id}
	snapshotKeyPrefix  = "evdock:snapshot:"
	phaseChannelPrefix = "evdock:phase:"
	defaultSnapshotTTL = 30 * time.Second
)

// ErrSnapshotNotFound - 캐시에 스냅샷 없음 (만료 포함)
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotCache - 세션별 최신 스냅샷을 Redis 에 보관하고 단계 전이를 발행한다.
// 다른 프로세스(대시보드 등)가 서버 메모리 없이 상태를 읽을 수 있게 한다.
type SnapshotCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewSnapshotCache - ttl 이 0 이하면 기본 30초
func NewSnapshotCache(client redis.UniversalClient, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = defaultSnapshotTTL
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

// NewRedisClient - 주소로 클라이언트 생성 후 PING 확인
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis 연결 실패 (%s): %w", addr, err)
	}
	return client, nil
}

func snapshotKey(sessionID string) string { return snapshotKeyPrefix + sessionID }

// PhaseChannel - 세션의 단계 전이 pub/sub 채널 이름
func PhaseChannel(sessionID string) string { return phaseChannelPrefix + sessionID }

// Put - 최신 스냅샷 저장 (TTL 갱신)
func (c *SnapshotCache) Put(ctx context.Context, sessionID string, snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKey(sessionID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot in Redis: %w", err)
	}
	return nil
}

// Get - 최신 스냅샷 조회
func (c *SnapshotCache) Get(ctx context.Context, sessionID string) (models.Snapshot, error) {
	var snap models.Snapshot
	data, err := c.client.Get(ctx, snapshotKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return snap, fmt.Errorf("%w: %s", ErrSnapshotNotFound, sessionID)
		}
		return snap, fmt.Errorf("failed to get snapshot from Redis: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// Delete - 세션 종료 시 스냅샷 삭제
func (c *SnapshotCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, snapshotKey(sessionID)).Err()
}

// PublishPhase - 단계 전이 발행
func (c *SnapshotCache) PublishPhase(ctx context.Context, sessionID string, ch models.PhaseChange) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("failed to marshal phase change: %w", err)
	}
	return c.client.Publish(ctx, PhaseChannel(sessionID), data).Err()
}

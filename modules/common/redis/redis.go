package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sevaroy/TTITI/modules/common/config"
)

const (
	// RunQueueKey - 워커가 BRPop으로 대기하는 런 큐
	RunQueueKey = "runs:queue"

	runPayloadPrefix = "runs:payload:"
	runCancelPrefix  = "runs:cancelled:"

	payloadTTL    = 1 * time.Hour
	cancelFlagTTL = 1 * time.Hour
)

// Connect - Redis 연결 생성
func Connect(cfg *config.Config) *redis.Client {
	log.Printf("🔌 Connecting to Redis: %s", cfg.GetRedisAddr())

	// TLS 설정 (InsecureSkipVerify 추가)
	var tlsConfig *tls.Config
	if cfg.RedisUseTLS {
		tlsConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: true, // Render.com Redis용
		}
	}

	// Redis 클라이언트 생성
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		TLSConfig:    tlsConfig,
		DB:           0,                // 기본 DB
		DialTimeout:  10 * time.Second, // 타임아웃 늘림
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// 연결 테스트
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Printf("🔍 Testing Redis connection...")
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("❌ Redis ping failed: %v", err)
		return nil
	}

	return rdb
}

// EnqueueRun - 런 페이로드를 저장하고 큐에 등록, 대기 순번 반환
func EnqueueRun(ctx context.Context, rdb *redis.Client, runID string, payload []byte) (int64, error) {
	if err := rdb.Set(ctx, runPayloadPrefix+runID, payload, payloadTTL).Err(); err != nil {
		return 0, fmt.Errorf("failed to store run payload: %w", err)
	}

	queueLen, err := rdb.LPush(ctx, RunQueueKey, runID).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue run: %w", err)
	}

	return queueLen, nil
}

// FetchRunPayload - 큐에서 꺼낸 런의 페이로드 조회 (조회 후 삭제)
func FetchRunPayload(ctx context.Context, rdb *redis.Client, runID string) ([]byte, error) {
	payload, err := rdb.Get(ctx, runPayloadPrefix+runID).Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to load run payload: %w", err)
	}

	// 한 번 소비되면 더 이상 필요 없음
	rdb.Del(ctx, runPayloadPrefix+runID)

	return payload, nil
}

// SetRunCancelled - 런 취소 플래그 설정
func SetRunCancelled(rdb *redis.Client, runID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return rdb.Set(ctx, runCancelPrefix+runID, "1", cancelFlagTTL).Err()
}

// IsRunCancelled - 런 취소 여부 확인
func IsRunCancelled(rdb *redis.Client, runID string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := rdb.Exists(ctx, runCancelPrefix+runID).Result()
	if err != nil {
		log.Printf("⚠️ [Redis] Failed to check cancel flag for %s: %v", runID, err)
		return false
	}
	return exists > 0
}

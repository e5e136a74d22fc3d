package worker

import (
	"context"
	"log"
	"time"

	"github.com/sevaroy/TTITI/modules/common/config"
	redisClient "github.com/sevaroy/TTITI/modules/common/redis"
	"github.com/sevaroy/TTITI/modules/sticker"
)

// StartWorker - Redis Queue Worker 시작
func StartWorker(registry *sticker.Registry, notify sticker.ProgressNotifier) {
	log.Println("🔄 Redis Queue Worker starting...")

	cfg := config.GetConfig()

	// Redis 연결
	rdb := redisClient.Connect(cfg)
	if rdb == nil {
		log.Fatal("❌ Failed to connect to Redis")
		return
	}
	log.Println("✅ Redis connected successfully")

	// Queue 감시 시작
	log.Printf("👀 Watching queue: %s", redisClient.RunQueueKey)

	ctx := context.Background()

	// 무한 루프로 Queue 감시
	for {
		// 런 받기 (BRPOP - Blocking Right Pop)
		result, err := rdb.BRPop(ctx, 0, redisClient.RunQueueKey).Result()
		if err != nil {
			log.Printf("❌ Redis BRPOP error: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		// result[0]은 큐 이름, result[1]이 실제 run_id
		runID := result[1]
		log.Printf("🎯 Received new run: %s", runID)

		// 런 처리 (goroutine으로 비동기)
		go sticker.ProcessRun(ctx, rdb, registry, notify, runID)
	}
}

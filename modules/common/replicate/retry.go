package replicate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

// PredictWithRetry - 429 에러 시 재시도하는 헬퍼 함수
// 최대 3번 시도, 429가 아닌 에러는 바로 반환
func PredictWithRetry(ctx context.Context, client *Client, modelID string, input interface{}) (json.RawMessage, error) {
	const maxRetries = 3
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			log.Printf("   🔄 [Replicate Retry] Attempt %d/%d for %s", attempt, maxRetries, modelID)
		}

		output, err := client.Predict(ctx, modelID, input)
		if err == nil {
			return output, nil
		}

		lastErr = err

		// 429가 아닌 다른 에러면 바로 반환 (재시도 안 함)
		if !is429Error(err) {
			return nil, err
		}

		log.Printf("⚠️  [Replicate Retry] Rate limit (429) on attempt %d/%d", attempt, maxRetries)

		// 마지막 시도가 아니면 2초 대기 후 재시도
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}

	return nil, fmt.Errorf("all %d attempts exhausted, last error: %w", maxRetries, lastErr)
}

// is429Error - 429 Rate Limit 에러인지 확인
func is429Error(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(strings.ToLower(errStr), "rate limit") ||
		strings.Contains(strings.ToLower(errStr), "quota")
}

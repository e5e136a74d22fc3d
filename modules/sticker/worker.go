package sticker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sevaroy/TTITI/modules/common/config"
	"github.com/sevaroy/TTITI/modules/common/fallback"
	"github.com/sevaroy/TTITI/modules/common/model"
	redisutil "github.com/sevaroy/TTITI/modules/common/redis"
	"github.com/sevaroy/TTITI/modules/common/utils"
)

// ProgressNotifier - 런 진행 이벤트를 외부(웹소켓 허브)로 전달
type ProgressNotifier func(runID string, completed, total int64, status string)

// ProcessRun - 큐에서 꺼낸 런 하나를 끝까지 처리
func ProcessRun(ctx context.Context, rdb *redis.Client, registry *Registry, notify ProgressNotifier, runID string) {
	log.Printf("🚀 [Sticker] Processing run: %s", runID)

	if notify == nil {
		notify = func(string, int64, int64, string) {}
	}

	// Redis에 파킹된 페이로드 로드
	payload, err := redisutil.FetchRunPayload(ctx, rdb, runID)
	if err != nil {
		log.Printf("❌ [Sticker] Failed to load payload for run %s: %v", runID, err)
		return
	}

	var submission model.RunSubmission
	if err := json.Unmarshal(payload, &submission); err != nil {
		log.Printf("❌ [Sticker] Invalid payload for run %s: %v", runID, err)
		return
	}

	params := normalizeParams(&submission)
	images := decodeImages(submission.Images)

	store := NewResultStore()
	progress := NewProgress(TotalUnits(len(images), params.Quantity))

	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()

	state := registry.Create(runID, params, store, progress, cancelRun)

	if len(images) == 0 {
		log.Printf("❌ [Sticker] Run %s has no decodable images", runID)
		state.SetStatus(model.StatusFailed)
		notify(runID, 0, 0, model.StatusFailed)
		return
	}

	state.SetStatus(model.StatusProcessing)
	notify(runID, 0, TotalUnits(len(images), params.Quantity), model.StatusProcessing)

	service := NewService()
	if service == nil {
		log.Printf("❌ [Sticker] Run %s aborted: service unavailable", runID)
		state.SetStatus(model.StatusFailed)
		notify(runID, 0, TotalUnits(len(images), params.Quantity), model.StatusFailed)
		return
	}

	cfg := config.GetConfig()
	cancelled := func() bool {
		return runCtx.Err() != nil || redisutil.IsRunCancelled(rdb, runID)
	}

	pipeline := NewPipeline(service, service, cfg.MaxParallelImages).
		WithProgressCallback(func(completed, total int64) {
			notify(runID, completed, total, model.StatusProcessing)
		})

	if err := pipeline.Run(runCtx, images, params, store, progress, cancelled); err != nil {
		log.Printf("❌ [Sticker] Run %s failed: %v", runID, err)
		state.SetStatus(model.StatusFailed)
		completed, total := progress.Snapshot()
		notify(runID, completed, total, model.StatusFailed)
		return
	}

	// 최종 상태 집계
	finalStatus := finalRunStatus(store, cancelled())
	state.SetStatus(finalStatus)

	completed, total := progress.Snapshot()
	notify(runID, completed, total, finalStatus)
	log.Printf("✅ [Sticker] Run %s finished: %s (%d/%d units)", runID, finalStatus, completed, total)
}

// finalRunStatus - 이미지별 결과에서 런 종료 상태 결정
// 하나도 완료되지 않으면 failed, 취소 플래그가 있으면 user_cancelled
func finalRunStatus(store *ResultStore, wasCancelled bool) string {
	if wasCancelled {
		return model.StatusUserCancelled
	}

	completedCount := 0
	for _, r := range store.Results() {
		if r.State == StateCompleted {
			completedCount++
		}
	}

	if completedCount == 0 {
		return model.StatusFailed
	}
	return model.StatusCompleted
}

// normalizeParams - 제출 파라미터를 허용 범위로 보정
func normalizeParams(submission *model.RunSubmission) RunParameters {
	return RunParameters{
		Prompt:       strings.TrimSpace(submission.Prompt),
		Temperature:  fallback.ClampFloat(submission.Temperature, 0.7, 0.1, 1.0),
		Steps:        fallback.ClampInt(submission.Steps, 3, 1, 4),
		Quantity:     fallback.ClampInt(submission.Quantity, 1, 1, 4),
		AspectRatio:  fallback.SafeAspectRatio(submission.AspectRatio),
		StickerMode:  submission.StickerMode,
		StickerStyle: strings.TrimSpace(submission.StickerStyle),
	}
}

// decodeImages - 업로드 이미지를 디코딩해 PNG로 정규화
// 디코딩 불가능한 항목은 건너뜀
func decodeImages(submitted []model.SubmittedImage) []InputImage {
	images := make([]InputImage, 0, len(submitted))

	for i, img := range submitted {
		raw, err := base64.StdEncoding.DecodeString(extractBase64Data(img.Data))
		if err != nil {
			log.Printf("⚠️ [Sticker] Failed to decode image %d (%s): %v", i, img.Name, err)
			continue
		}

		pngData, err := utils.NormalizeToPNG(raw)
		if err != nil {
			log.Printf("⚠️ [Sticker] Failed to normalize image %d (%s): %v", i, img.Name, err)
			continue
		}

		images = append(images, InputImage{
			ID:   uuid.New().String(),
			Name: fallback.SafeString(img.Name, "image"),
			Data: pngData,
		})
	}

	return images
}

// extractBase64Data - data URL 접두사 제거
func extractBase64Data(data string) string {
	if idx := strings.Index(data, ";base64,"); idx >= 0 {
		return data[idx+len(";base64,"):]
	}
	return data
}

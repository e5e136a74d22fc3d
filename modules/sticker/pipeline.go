package sticker

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Describer - 비전 모델로 이미지 설명을 얻는 능력
type Describer interface {
	Describe(ctx context.Context, imageData []byte, prompt string, temperature float64) (string, error)
}

// Synthesizer - 텍스트 프롬프트로 이미지를 합성하는 능력
type Synthesizer interface {
	Synthesize(ctx context.Context, prompt string, count, steps int, aspectRatio string) ([]SynthesizedImage, error)
}

// ProgressFunc - 진행 유닛 완료 시마다 호출되는 훅
type ProgressFunc func(completed, total int64)

// ErrNoImages - 입력 이미지 없이 런을 시작한 경우
var ErrNoImages = fmt.Errorf("at least one input image is required")

// Pipeline - 이미지별 설명→합성 2단계 배치 파이프라인
// 이미지 간 실패는 격리됨: 한 이미지가 실패해도 나머지는 계속 진행
type Pipeline struct {
	describer   Describer
	synthesizer Synthesizer
	maxParallel int
	onProgress  ProgressFunc
}

// NewPipeline - 파이프라인 생성
func NewPipeline(describer Describer, synthesizer Synthesizer, maxParallel int) *Pipeline {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Pipeline{
		describer:   describer,
		synthesizer: synthesizer,
		maxParallel: maxParallel,
	}
}

// WithProgressCallback - 진행률 훅 등록 (웹소켓 브로드캐스트용)
func (pl *Pipeline) WithProgressCallback(fn ProgressFunc) *Pipeline {
	pl.onProgress = fn
	return pl
}

// Run - 배치 실행. 모든 이미지 처리(또는 취소)까지 블록
// cancelled가 true를 반환하면 새 이미지 작업을 더 이상 시작하지 않음
func (pl *Pipeline) Run(ctx context.Context, images []InputImage, params RunParameters, store *ResultStore, progress *Progress, cancelled func() bool) error {
	if len(images) == 0 {
		return ErrNoImages
	}
	if cancelled == nil {
		cancelled = func() bool { return false }
	}

	for _, img := range images {
		store.Init(img)
	}

	descPrompt := BuildDescriptionPrompt(params.Prompt, params.StickerMode, params.StickerStyle)
	aspectRatio := params.EffectiveAspectRatio()

	log.Printf("🎨 [Pipeline] Starting batch: %d images × (1 description + %d synthesis), parallel=%d",
		len(images), params.Quantity, pl.maxParallel)

	sem := make(chan struct{}, pl.maxParallel)
	var wg sync.WaitGroup

	for _, img := range images {
		// 취소되면 새 작업 시작 중단 (진행 중인 작업은 마무리됨)
		if cancelled() || ctx.Err() != nil {
			log.Printf("🛑 [Pipeline] Cancelled - skipping remaining images")
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(img InputImage) {
			defer wg.Done()
			defer func() { <-sem }()
			pl.processImage(ctx, img, params, descPrompt, aspectRatio, store, progress, cancelled)
		}(img)
	}

	wg.Wait()

	completed, total := progress.Snapshot()
	log.Printf("✅ [Pipeline] Batch finished: %d/%d units", completed, total)
	return nil
}

// processImage - 이미지 하나의 상태 머신
// pending → describing → described → synthesizing → completed
// 실패는 describing/synthesizing에서만 발생, 같은 상태를 다시 밟지 않음
func (pl *Pipeline) processImage(ctx context.Context, img InputImage, params RunParameters, descPrompt, aspectRatio string, store *ResultStore, progress *Progress, cancelled func() bool) {
	if cancelled() || ctx.Err() != nil {
		// pending 그대로 남김
		return
	}

	store.SetState(img.ID, StateDescribing)
	description, err := pl.describer.Describe(ctx, img.Data, descPrompt, params.Temperature)
	if err != nil {
		// 설명 실패 → 해당 이미지의 합성 유닛은 시도/집계되지 않음
		log.Printf("❌ [Pipeline] Describe failed for %s: %v", img.ID, err)
		store.SetFailed(img.ID, fmt.Sprintf("describe failed: %v", err))
		return
	}

	store.SetDescription(img.ID, description)
	progress.Add(1)
	pl.notifyProgress(progress)
	log.Printf("📝 [Pipeline] Described %s (%d chars)", img.ID, len(description))

	if cancelled() || ctx.Err() != nil {
		// 설명만 남기고 중단
		return
	}

	synthPrompt := BuildSynthesisPrompt(description, params.StickerMode, params.StickerStyle)
	store.SetState(img.ID, StateSynthesizing)

	stickers, err := pl.synthesizer.Synthesize(ctx, synthPrompt, params.Quantity, params.Steps, aspectRatio)
	if err != nil {
		log.Printf("❌ [Pipeline] Synthesis failed for %s: %v", img.ID, err)
		store.SetFailed(img.ID, fmt.Sprintf("synthesis failed: %v", err))
		return
	}

	store.SetStickers(img.ID, stickers)
	progress.Add(int64(params.Quantity))
	pl.notifyProgress(progress)
	log.Printf("✅ [Pipeline] Completed %s: %d stickers", img.ID, len(stickers))
}

func (pl *Pipeline) notifyProgress(progress *Progress) {
	if pl.onProgress == nil {
		return
	}
	completed, total := progress.Snapshot()
	pl.onProgress(completed, total)
}

// TotalUnits - 진행률 총량 계산: Σ(설명 1 + 이미지당 합성 수)
func TotalUnits(imageCount, quantity int) int64 {
	return int64(imageCount) * int64(1+quantity)
}

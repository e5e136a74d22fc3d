package sticker

import (
	"context"
	"fmt"
	"log"

	"github.com/sevaroy/TTITI/modules/common/config"
	"github.com/sevaroy/TTITI/modules/common/utils"
	fluxschnell "github.com/sevaroy/TTITI/modules/submodule/flux-schnell"
	"github.com/sevaroy/TTITI/modules/submodule/gemini"
	"github.com/sevaroy/TTITI/modules/submodule/gemma"
)

// Service - 파이프라인에 꽂히는 실서비스 Describer/Synthesizer
// 설명 백엔드는 설정으로 라우팅 (replicate/gemma 또는 gemini)
type Service struct {
	gemma  *gemma.Service
	gemini *gemini.Service
	flux   *fluxschnell.Service
}

func NewService() *Service {
	cfg := config.GetConfig()

	flux := fluxschnell.NewService()
	if flux == nil {
		log.Println("❌ [Sticker] Synthesis backend unavailable")
		return nil
	}

	svc := &Service{flux: flux}

	switch cfg.DescribeBackend {
	case "gemini":
		svc.gemini = gemini.NewService()
		if svc.gemini == nil {
			log.Println("❌ [Sticker] Gemini describe backend unavailable")
			return nil
		}
	default:
		svc.gemma = gemma.NewService()
		if svc.gemma == nil {
			log.Println("❌ [Sticker] Gemma describe backend unavailable")
			return nil
		}
	}

	log.Printf("✅ [Sticker] Service initialized (describe backend: %s)", cfg.DescribeBackend)
	return svc
}

// Describe - 설정된 백엔드로 이미지 설명 생성
func (s *Service) Describe(ctx context.Context, imageData []byte, prompt string, temperature float64) (string, error) {
	if s.gemini != nil {
		return s.gemini.Describe(ctx, imageData, prompt, temperature)
	}
	return s.gemma.Describe(ctx, &gemma.DescribeRequest{
		ImageData:   imageData,
		Prompt:      prompt,
		Temperature: temperature,
	})
}

// Synthesize - 이미지 합성 후 각 결과를 다운로드하고 WebP로 변환
// 하나라도 다운로드에 실패하면 합성 전체를 실패로 처리
func (s *Service) Synthesize(ctx context.Context, prompt string, count, steps int, aspectRatio string) ([]SynthesizedImage, error) {
	urls, err := s.flux.Generate(ctx, &fluxschnell.GenerateRequest{
		Prompt:      prompt,
		Count:       count,
		Steps:       steps,
		AspectRatio: aspectRatio,
	})
	if err != nil {
		return nil, err
	}

	stickers := make([]SynthesizedImage, 0, len(urls))
	for i, url := range urls {
		pngData, err := s.flux.DownloadImageFromURL(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to download sticker %d: %w", i, err)
		}

		data := pngData
		mimeType := "image/png"
		if webpData, err := utils.ConvertPNGToWebP(pngData, 90); err != nil {
			// 변환 실패 시 PNG 원본 그대로 제공
			log.Printf("⚠️ [Sticker] WebP conversion failed for sticker %d, keeping PNG: %v", i, err)
		} else {
			data = webpData
			mimeType = "image/webp"
		}

		stickers = append(stickers, SynthesizedImage{
			Ordinal:  i,
			URL:      url,
			Data:     data,
			MimeType: mimeType,
		})
	}

	return stickers, nil
}

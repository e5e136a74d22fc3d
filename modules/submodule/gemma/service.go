package gemma

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sevaroy/TTITI/modules/common/config"
	"github.com/sevaroy/TTITI/modules/common/replicate"
	"github.com/sevaroy/TTITI/modules/common/utils"
)

// Service - Replicate gemma-3-27b-it 설명 서비스
type Service struct {
	client *replicate.Client
}

func NewService() *Service {
	cfg := config.GetConfig()

	if cfg.ReplicateAPIToken == "" {
		log.Println("⚠️ [Gemma] REPLICATE_API_TOKEN not configured")
		return nil
	}

	log.Println("✅ [Gemma] Service initialized")
	return &Service{
		client: replicate.New(cfg.ReplicateAPIToken, cfg.ReplicateAPIURL),
	}
}

// Describe - 이미지 설명 생성
// 모델은 텍스트 조각 배열을 반환하며 도착 순서대로 이어붙임
func (s *Service) Describe(ctx context.Context, req *DescribeRequest) (string, error) {
	cfg := config.GetConfig()

	log.Printf("📝 [Gemma] Describing image (%d bytes, temp: %.2f)", len(req.ImageData), req.Temperature)

	input := PredictionInput{
		Image:        "data:image/png;base64," + utils.ConvertImageToBase64(req.ImageData),
		Prompt:       req.Prompt,
		Temperature:  req.Temperature,
		MaxNewTokens: defaultMaxNewTokens,
		TopP:         defaultTopP,
	}

	output, err := replicate.PredictWithRetry(ctx, s.client, cfg.DescribeModel, input)
	if err != nil {
		return "", fmt.Errorf("gemma request failed: %w", err)
	}

	text, err := replicate.TextOutput(output)
	if err != nil {
		return "", fmt.Errorf("gemma output invalid: %w", err)
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemma returned empty description")
	}

	log.Printf("✅ [Gemma] Description generated (%d chars)", len(text))
	return text, nil
}

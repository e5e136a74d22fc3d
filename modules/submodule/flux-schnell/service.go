package fluxschnell

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sevaroy/TTITI/modules/common/config"
	"github.com/sevaroy/TTITI/modules/common/replicate"
)

// Service - Replicate flux-schnell 합성 서비스
type Service struct {
	client     *replicate.Client
	httpClient *http.Client
}

func NewService() *Service {
	cfg := config.GetConfig()

	if cfg.ReplicateAPIToken == "" {
		log.Println("⚠️ [FluxSchnell] REPLICATE_API_TOKEN not configured")
		return nil
	}

	log.Println("✅ [FluxSchnell] Service initialized")
	return &Service{
		client:     replicate.New(cfg.ReplicateAPIToken, cfg.ReplicateAPIURL),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Generate - flux-schnell로 이미지 합성, 모델 출력 순서대로 URL 반환
// 성공 시 URL 수는 정확히 req.Count
func (s *Service) Generate(ctx context.Context, req *GenerateRequest) ([]string, error) {
	cfg := config.GetConfig()

	aspectRatio := req.AspectRatio
	if aspectRatio == "" {
		aspectRatio = "1:1"
	}

	log.Printf("🎨 [FluxSchnell] Generating %d image(s) - steps: %d, aspect: %s, prompt: %s",
		req.Count, req.Steps, aspectRatio, truncateString(req.Prompt, 50))

	input := PredictionInput{
		Prompt:            req.Prompt,
		NumOutputs:        req.Count,
		AspectRatio:       aspectRatio,
		OutputFormat:      "png",
		NumInferenceSteps: req.Steps,
	}

	output, err := replicate.PredictWithRetry(ctx, s.client, cfg.SynthesisModel, input)
	if err != nil {
		return nil, fmt.Errorf("flux-schnell request failed: %w", err)
	}

	urls, err := replicate.URLOutput(output)
	if err != nil {
		return nil, fmt.Errorf("flux-schnell output invalid: %w", err)
	}

	if len(urls) != req.Count {
		return nil, fmt.Errorf("expected %d images, got %d", req.Count, len(urls))
	}

	log.Printf("✅ [FluxSchnell] Generated %d image(s)", len(urls))
	return urls, nil
}

// DownloadImageFromURL - URL에서 이미지 다운로드
func (s *Service) DownloadImageFromURL(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

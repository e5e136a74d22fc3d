package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/sevaroy/TTITI/modules/common/config"
)

// Service - Gemini 기반 설명 서비스 (DESCRIBE_BACKEND=gemini)
type Service struct {
	genaiClient *genai.Client
}

func NewService() *Service {
	cfg := config.GetConfig()

	if cfg.GeminiAPIKey == "" {
		log.Println("⚠️ [Gemini] GEMINI_API_KEY not configured")
		return nil
	}

	// Genai 클라이언트 초기화
	ctx := context.Background()
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Printf("❌ [Gemini] Failed to create Genai client: %v", err)
		return nil
	}

	log.Println("✅ [Gemini] Service initialized")
	return &Service{
		genaiClient: genaiClient,
	}
}

// Describe - 이미지 설명 생성
// 429 에러는 최대 3번 재시도, 후보 파트의 텍스트를 순서대로 이어붙임
func (s *Service) Describe(ctx context.Context, imageData []byte, prompt string, temperature float64) (string, error) {
	cfg := config.GetConfig()

	log.Printf("📝 [Gemini] Describing image (%d bytes, model: %s)", len(imageData), cfg.GeminiModel)

	content := &genai.Content{
		Parts: []*genai.Part{
			genai.NewPartFromBytes(imageData, "image/png"),
			genai.NewPartFromText(prompt),
		},
	}

	const maxRetries = 3
	var result *genai.GenerateContentResponse
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, lastErr = s.genaiClient.Models.GenerateContent(
			ctx,
			cfg.GeminiModel,
			[]*genai.Content{content},
			&genai.GenerateContentConfig{
				Temperature: floatPtr(temperature),
			},
		)
		if lastErr == nil {
			break
		}

		// 429가 아닌 다른 에러면 바로 반환
		if !is429Error(lastErr) {
			return "", fmt.Errorf("gemini request failed: %w", lastErr)
		}

		log.Printf("⚠️  [Gemini] Rate limit (429) on attempt %d/%d", attempt, maxRetries)
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("gemini request failed after %d attempts: %w", maxRetries, lastErr)
	}

	// 후보에서 텍스트 추출
	var sb strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned empty description")
	}

	log.Printf("✅ [Gemini] Description generated (%d chars)", len(text))
	return text, nil
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

func floatPtr(f float64) *float32 {
	f32 := float32(f)
	return &f32
}

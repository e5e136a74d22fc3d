package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Client - Replicate Predictions API 클라이언트
type Client struct {
	httpClient *http.Client
	apiToken   string
	baseURL    string
	pollDelay  time.Duration
}

// New - 클라이언트 생성
func New(apiToken, baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiToken:   apiToken,
		baseURL:    strings.TrimRight(baseURL, "/"),
		pollDelay:  2 * time.Second,
	}
}

// Predict - 예측 생성 후 종료 상태까지 폴링, 모델 output 반환
func (c *Client) Predict(ctx context.Context, modelID string, input interface{}) (json.RawMessage, error) {
	pred, err := c.createPrediction(ctx, modelID, input)
	if err != nil {
		return nil, err
	}

	// Prefer: wait로 대부분 동기 완료되지만 긴 예측은 폴링 필요
	for !pred.IsTerminal() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollDelay):
		}

		pred, err = c.getPrediction(ctx, pred.ID)
		if err != nil {
			return nil, err
		}
	}

	if pred.Status != StatusSucceeded {
		return nil, fmt.Errorf("prediction %s ended with status %s: %v", pred.ID, pred.Status, pred.Error)
	}

	log.Printf("✅ [Replicate] Prediction %s succeeded (model: %s)", pred.ID, modelID)
	return pred.Output, nil
}

// createPrediction - POST /models/{model}/predictions
func (c *Client) createPrediction(ctx context.Context, modelID string, input interface{}) (*PredictionResponse, error) {
	body, err := json.Marshal(PredictionRequest{Input: input})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal prediction input: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s/predictions", c.baseURL, modelID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "wait=60")

	return c.do(req)
}

// getPrediction - GET /predictions/{id}
func (c *Client) getPrediction(ctx context.Context, predictionID string) (*PredictionResponse, error) {
	url := fmt.Sprintf("%s/predictions/%s", c.baseURL, predictionID)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*PredictionResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("replicate API error (status %d): %s", resp.StatusCode, truncateString(string(respBody), 200))
	}

	var pred PredictionResponse
	if err := json.Unmarshal(respBody, &pred); err != nil {
		return nil, fmt.Errorf("failed to parse prediction response: %w", err)
	}

	return &pred, nil
}

// TextOutput - 텍스트 모델 output 파싱 (문자열 또는 조각 배열을 도착 순서대로 이어붙임)
func TextOutput(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("empty model output")
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single, nil
	}

	var fragments []string
	if err := json.Unmarshal(raw, &fragments); err != nil {
		return "", fmt.Errorf("unexpected text output shape: %s", truncateString(string(raw), 100))
	}

	return strings.Join(fragments, ""), nil
}

// URLOutput - 이미지 모델 output 파싱 (순서 유지)
func URLOutput(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty model output")
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, nil
	}

	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		return nil, fmt.Errorf("unexpected image output shape: %s", truncateString(string(raw), 100))
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("model returned no images")
	}

	return urls, nil
}

// truncateString - 로그/에러용 문자열 자르기
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

package replicate

import "encoding/json"

// PredictionRequest - 예측 생성 요청 본문
type PredictionRequest struct {
	Input interface{} `json:"input"`
}

// PredictionResponse - Replicate 예측 응답
type PredictionResponse struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  interface{}     `json:"error"`
	URLs   PredictionURLs  `json:"urls"`
}

// PredictionURLs - 폴링/취소 엔드포인트
type PredictionURLs struct {
	Get    string `json:"get"`
	Cancel string `json:"cancel"`
}

// 예측 상태 값
const (
	StatusStarting   = "starting"
	StatusProcessing = "processing"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
	StatusCanceled   = "canceled"
)

// IsTerminal - 예측이 종료 상태인지 확인
func (p *PredictionResponse) IsTerminal() bool {
	switch p.Status {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

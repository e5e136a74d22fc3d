package gemma

// DescribeRequest - 이미지 설명 요청
type DescribeRequest struct {
	ImageData   []byte  `json:"-"` // PNG 바이너리
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
}

// PredictionInput - gemma-3-27b-it 입력 파라미터 (Replicate)
type PredictionInput struct {
	Image        string  `json:"image"` // data URL
	Prompt       string  `json:"prompt"`
	Temperature  float64 `json:"temperature"`
	MaxNewTokens int     `json:"max_new_tokens"`
	TopP         float64 `json:"top_p"`
}

// 샘플링 기본값
const (
	defaultMaxNewTokens = 512
	defaultTopP         = 0.95
)

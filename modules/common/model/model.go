package model

// RunSubmission - POST /api/runs 요청 본문이자 Redis에 파킹되는 페이로드
type RunSubmission struct {
	Prompt       string           `json:"prompt"`
	Temperature  float64          `json:"temperature"`
	Steps        int              `json:"steps"`
	Quantity     int              `json:"quantity"` // 입력 이미지당 생성 수
	AspectRatio  string           `json:"aspect-ratio"`
	StickerMode  bool             `json:"sticker-mode"`
	StickerStyle string           `json:"sticker-style"`
	Images       []SubmittedImage `json:"images"`
}

// SubmittedImage - 업로드된 입력 이미지 (base64 또는 data URL)
type SubmittedImage struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

const (
	StatusPending       = "pending"
	StatusProcessing    = "processing"
	StatusCompleted     = "completed"
	StatusFailed        = "failed"
	StatusUserCancelled = "user_cancelled"
)

package fluxschnell

// GenerateRequest - 이미지 합성 요청
type GenerateRequest struct {
	Prompt      string `json:"prompt"`
	Count       int    `json:"count"`        // num_outputs (1~4)
	Steps       int    `json:"steps"`        // num_inference_steps (1~4)
	AspectRatio string `json:"aspect_ratio"` // 기본 1:1
}

// PredictionInput - flux-schnell 입력 파라미터 (Replicate)
type PredictionInput struct {
	Prompt            string `json:"prompt"`
	NumOutputs        int    `json:"num_outputs"`
	AspectRatio       string `json:"aspect_ratio"`
	OutputFormat      string `json:"output_format"`
	NumInferenceSteps int    `json:"num_inference_steps"`
}

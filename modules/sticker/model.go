package sticker

import "sync/atomic"

// 이미지별 파이프라인 상태
const (
	StatePending      = "pending"
	StateDescribing   = "describing"
	StateDescribed    = "described"
	StateSynthesizing = "synthesizing"
	StateCompleted    = "completed"
	StateFailed       = "failed"
)

// InputImage - 디코딩 완료된 입력 이미지 (PNG 정규화됨)
type InputImage struct {
	ID   string
	Name string
	Data []byte
}

// RunParameters - 정규화된 런 파라미터
type RunParameters struct {
	Prompt       string
	Temperature  float64
	Steps        int
	Quantity     int // 입력 이미지당 합성 수
	AspectRatio  string
	StickerMode  bool
	StickerStyle string
}

// EffectiveAspectRatio - 스티커 모드는 항상 1:1 강제
func (p RunParameters) EffectiveAspectRatio() string {
	if p.StickerMode {
		return "1:1"
	}
	return p.AspectRatio
}

// SynthesizedImage - 합성 결과 한 장 (모델 출력 순서 유지)
type SynthesizedImage struct {
	Ordinal  int
	URL      string
	Data     []byte
	MimeType string
}

// ImageResult - 입력 이미지 하나의 파이프라인 결과
type ImageResult struct {
	ImageID     string
	Name        string
	State       string
	Description string
	Stickers    []SynthesizedImage
	FailReason  string
}

// Progress - 런 진행률 (설명 1 + 이미지당 합성 수)
type Progress struct {
	completed atomic.Int64
	total     int64
}

// NewProgress - 진행률 카운터 생성
func NewProgress(total int64) *Progress {
	return &Progress{total: total}
}

// Add - 완료 유닛 추가
func (p *Progress) Add(n int64) {
	p.completed.Add(n)
}

// Snapshot - 현재 진행률 조회
func (p *Progress) Snapshot() (completed, total int64) {
	return p.completed.Load(), p.total
}

package sticker

import "sync"

// ResultStore - 런 하나에 스코프된 인메모리 결과 저장소
// 이미지별 쓰기는 고유 키로만 일어나므로 런 간 간섭 없음
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]*ImageResult
	order   []string // 입력 순서 유지
}

// NewResultStore - 빈 저장소 생성 (런마다 새로 만듦)
func NewResultStore() *ResultStore {
	return &ResultStore{
		results: make(map[string]*ImageResult),
	}
}

// Init - 입력 이미지 등록 (같은 ID 재등록 시 이전 결과 덮어씀)
func (s *ResultStore) Init(img InputImage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.results[img.ID]; !exists {
		s.order = append(s.order, img.ID)
	}
	s.results[img.ID] = &ImageResult{
		ImageID: img.ID,
		Name:    img.Name,
		State:   StatePending,
	}
}

// SetState - 상태 전이 기록
func (s *ResultStore) SetState(imageID, state string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.results[imageID]; ok {
		r.State = state
	}
}

// SetDescription - 설명 저장 및 described 전이
func (s *ResultStore) SetDescription(imageID, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.results[imageID]; ok {
		r.Description = description
		r.State = StateDescribed
	}
}

// SetStickers - 합성 결과 저장 및 completed 전이
func (s *ResultStore) SetStickers(imageID string, stickers []SynthesizedImage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.results[imageID]; ok {
		r.Stickers = stickers
		r.State = StateCompleted
	}
}

// SetFailed - 실패 기록 (이미 저장된 설명은 유지)
func (s *ResultStore) SetFailed(imageID, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.results[imageID]; ok {
		r.State = StateFailed
		r.FailReason = reason
	}
}

// Get - 이미지 하나의 결과 조회 (복사본)
func (s *ResultStore) Get(imageID string) (ImageResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.results[imageID]
	if !ok {
		return ImageResult{}, false
	}
	return *r, true
}

// Results - 입력 순서대로 전체 결과 조회 (복사본)
func (s *ResultStore) Results() []ImageResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ImageResult, 0, len(s.order))
	for _, id := range s.order {
		if r, ok := s.results[id]; ok {
			out = append(out, *r)
		}
	}
	return out
}

// Sticker - 이미지의 n번째 합성 결과 조회
func (s *ResultStore) Sticker(imageID string, ordinal int) (SynthesizedImage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.results[imageID]
	if !ok || ordinal < 0 || ordinal >= len(r.Stickers) {
		return SynthesizedImage{}, false
	}
	return r.Stickers[ordinal], true
}

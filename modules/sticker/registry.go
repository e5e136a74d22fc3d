package sticker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sevaroy/TTITI/modules/common/model"
)

// RunState - 레지스트리에 보관되는 런 단위 상태
type RunState struct {
	RunID     string
	Params    RunParameters
	Store     *ResultStore
	Progress  *Progress
	CreatedAt time.Time

	mu     sync.RWMutex
	status string
	cancel context.CancelFunc
}

// Status - 현재 런 상태 조회
func (rs *RunState) Status() string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.status
}

// SetStatus - 런 상태 갱신
func (rs *RunState) SetStatus(status string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.status = status
}

// IsTerminal - 런이 종료 상태인지 확인
func (rs *RunState) IsTerminal() bool {
	switch rs.Status() {
	case model.StatusCompleted, model.StatusFailed, model.StatusUserCancelled:
		return true
	}
	return false
}

// Registry - 런 ID → 런 상태 인메모리 레지스트리
// 재시작 시 사라짐 (결과 영속화 없음)
type Registry struct {
	mu   sync.RWMutex
	runs map[string]*RunState
}

// NewRegistry - 레지스트리 생성
func NewRegistry() *Registry {
	return &Registry{
		runs: make(map[string]*RunState),
	}
}

// Create - 런 상태 등록
func (r *Registry) Create(runID string, params RunParameters, store *ResultStore, progress *Progress, cancel context.CancelFunc) *RunState {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := &RunState{
		RunID:     runID,
		Params:    params,
		Store:     store,
		Progress:  progress,
		CreatedAt: time.Now(),
		status:    model.StatusPending,
		cancel:    cancel,
	}
	r.runs[runID] = state
	return state
}

// Get - 런 상태 조회
func (r *Registry) Get(runID string) (*RunState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.runs[runID]
	return state, ok
}

// Cancel - 런 컨텍스트 취소 (종료된 런은 무시)
func (r *Registry) Cancel(runID string) bool {
	state, ok := r.Get(runID)
	if !ok || state.IsTerminal() {
		return false
	}

	state.mu.Lock()
	cancel := state.cancel
	state.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return true
}

// StartCleanupRoutine - 오래된 런 정리 (1시간마다, 24시간 경과분 삭제)
func (r *Registry) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			r.cleanup(24 * time.Hour)
		}
	}()
}

func (r *Registry) cleanup(maxAge time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for runID, state := range r.runs {
		if time.Since(state.CreatedAt) > maxAge {
			delete(r.runs, runID)
			removed++
		}
	}

	if removed > 0 {
		log.Printf("🧹 [Registry] Cleaned up %d old run(s), %d remaining", removed, len(r.runs))
	}
}

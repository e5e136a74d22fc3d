package sticker

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/sevaroy/TTITI/modules/common/config"
	"github.com/sevaroy/TTITI/modules/common/model"
	redisutil "github.com/sevaroy/TTITI/modules/common/redis"
)

// Handler - 런 제출/조회/취소 API 핸들러
type Handler struct {
	rdb      *redis.Client
	registry *Registry
}

// CreateRunResponse - POST /api/runs 응답
type CreateRunResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	RunID         string `json:"run_id,omitempty"`
	Queue         string `json:"queue,omitempty"`
	QueuePosition int64  `json:"queuePosition,omitempty"`
}

// RunStatusResponse - GET /api/runs/{runId} 응답
type RunStatusResponse struct {
	RunID    string              `json:"run_id"`
	Status   string              `json:"status"`
	Params   RunParamsPayload    `json:"params"`
	Progress RunProgressPayload  `json:"progress"`
	Images   []ImageStatusResult `json:"images"`
}

// RunParamsPayload - 정규화된 런 파라미터 (제출값 기준, 스티커 모드의 1:1 강제는 합성 시점 적용)
type RunParamsPayload struct {
	Prompt       string  `json:"prompt"`
	Temperature  float64 `json:"temperature"`
	Steps        int     `json:"steps"`
	Quantity     int     `json:"quantity"`
	AspectRatio  string  `json:"aspect-ratio"`
	StickerMode  bool    `json:"sticker-mode"`
	StickerStyle string  `json:"sticker-style,omitempty"`
}

// RunProgressPayload - 진행률 (완료 유닛 / 전체 유닛)
type RunProgressPayload struct {
	Completed int64 `json:"completed"`
	Total     int64 `json:"total"`
}

// ImageStatusResult - 이미지별 상태
type ImageStatusResult struct {
	ImageID      string `json:"image_id"`
	Name         string `json:"name"`
	State        string `json:"state"`
	Description  string `json:"description,omitempty"`
	StickerCount int    `json:"sticker_count"`
	FailReason   string `json:"fail_reason,omitempty"`
}

// NewHandler - 핸들러 생성
func NewHandler(registry *Registry) *Handler {
	cfg := config.GetConfig()

	rdb := redisutil.Connect(cfg)
	if rdb == nil {
		log.Println("❌ [Sticker] Failed to connect to Redis")
		return nil
	}

	log.Println("✅ [Sticker] Handler initialized with Redis connection")
	return &Handler{
		rdb:      rdb,
		registry: registry,
	}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/runs", h.HandleCreateRun).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/runs/{runId}", h.HandleRunStatus).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/runs/{runId}/stickers/{imageId}/{ordinal}", h.HandleSticker).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/runs/{runId}/cancel", h.HandleCancelRun).Methods("POST", "OPTIONS")
	log.Println("✅ [Sticker] Routes registered: /api/runs")
}

// HandleCreateRun - POST /api/runs
// 페이로드를 Redis에 파킹하고 런 ID를 큐에 등록
func (h *Handler) HandleCreateRun(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var submission model.RunSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		log.Printf("❌ [Sticker] Invalid request: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(CreateRunResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	// 이미지 없이는 런을 시작하지 않음
	if len(submission.Images) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(CreateRunResponse{
			Success: false,
			Error:   "at least one image is required",
		})
		return
	}

	runID := uuid.New().String()

	payload, err := json.Marshal(submission)
	if err != nil {
		log.Printf("❌ [Sticker] Failed to marshal submission: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(CreateRunResponse{
			Success: false,
			Error:   "Failed to serialize run payload",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	queuePos, err := redisutil.EnqueueRun(ctx, h.rdb, runID, payload)
	if err != nil {
		log.Printf("❌ [Sticker] Enqueue failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(CreateRunResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	log.Printf("📥 [Sticker] Run %s enqueued (%d images, position: %d)", runID, len(submission.Images), queuePos)

	json.NewEncoder(w).Encode(CreateRunResponse{
		Success:       true,
		Message:       "Run enqueued successfully",
		RunID:         runID,
		Queue:         redisutil.RunQueueKey,
		QueuePosition: queuePos,
	})
}

// HandleRunStatus - GET /api/runs/{runId}
func (h *Handler) HandleRunStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	runID := mux.Vars(r)["runId"]

	state, ok := h.registry.Get(runID)
	if !ok {
		http.Error(w, `{"error": "run not found"}`, http.StatusNotFound)
		return
	}

	completed, total := state.Progress.Snapshot()

	resp := RunStatusResponse{
		RunID:  runID,
		Status: state.Status(),
		Params: RunParamsPayload{
			Prompt:       state.Params.Prompt,
			Temperature:  state.Params.Temperature,
			Steps:        state.Params.Steps,
			Quantity:     state.Params.Quantity,
			AspectRatio:  state.Params.AspectRatio,
			StickerMode:  state.Params.StickerMode,
			StickerStyle: state.Params.StickerStyle,
		},
		Progress: RunProgressPayload{
			Completed: completed,
			Total:     total,
		},
	}

	for _, result := range state.Store.Results() {
		resp.Images = append(resp.Images, ImageStatusResult{
			ImageID:      result.ImageID,
			Name:         result.Name,
			State:        result.State,
			Description:  result.Description,
			StickerCount: len(result.Stickers),
			FailReason:   result.FailReason,
		})
	}

	json.NewEncoder(w).Encode(resp)
}

// HandleSticker - GET /api/runs/{runId}/stickers/{imageId}/{ordinal}
// 합성된 스티커 바이너리 제공 (WebP)
func (h *Handler) HandleSticker(w http.ResponseWriter, r *http.Request) {
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	vars := mux.Vars(r)
	runID := vars["runId"]
	imageID := vars["imageId"]

	ordinal, err := strconv.Atoi(vars["ordinal"])
	if err != nil {
		http.Error(w, `{"error": "invalid sticker ordinal"}`, http.StatusBadRequest)
		return
	}

	state, ok := h.registry.Get(runID)
	if !ok {
		http.Error(w, `{"error": "run not found"}`, http.StatusNotFound)
		return
	}

	sticker, ok := state.Store.Sticker(imageID, ordinal)
	if !ok || len(sticker.Data) == 0 {
		http.Error(w, `{"error": "sticker not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", sticker.MimeType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(sticker.Data)
}

// HandleCancelRun - POST /api/runs/{runId}/cancel
func (h *Handler) HandleCancelRun(w http.ResponseWriter, r *http.Request) {
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	runID := mux.Vars(r)["runId"]
	log.Printf("🛑 [Sticker] Cancel requested for run: %s", runID)

	// 1. Redis에 취소 플래그 설정 (워커가 새 이미지 작업 시작을 중단)
	if err := redisutil.SetRunCancelled(h.rdb, runID); err != nil {
		log.Printf("❌ [Sticker] Failed to set cancel flag: %v", err)
		http.Error(w, `{"error": "Failed to set cancel flag"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	// 2. 진행 중인 런이면 컨텍스트도 취소
	state, ok := h.registry.Get(runID)
	if ok && state.IsTerminal() {
		log.Printf("⚠️ [Sticker] Run already %s: %s", state.Status(), runID)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "Run already " + state.Status(),
			"run_id":  runID,
			"status":  state.Status(),
		})
		return
	}

	h.registry.Cancel(runID)
	log.Printf("✅ [Sticker] Cancel flag set for run: %s", runID)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Cancel request sent. Run will stop after in-flight images.",
		"run_id":  runID,
	})
}

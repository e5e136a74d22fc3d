package sticker

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/sevaroy/TTITI/modules/common/model"
)

func newTestHandler(registry *Registry) (*Handler, *mux.Router) {
	h := &Handler{registry: registry}
	r := mux.NewRouter()
	r.HandleFunc("/api/runs/{runId}", h.HandleRunStatus).Methods("GET")
	r.HandleFunc("/api/runs/{runId}/stickers/{imageId}/{ordinal}", h.HandleSticker).Methods("GET")
	return h, r
}

func TestHandleRunStatusIncludesParams(t *testing.T) {
	registry := NewRegistry()

	store := NewResultStore()
	store.Init(InputImage{ID: "img-1", Name: "fox.png"})
	store.SetDescription("img-1", "A red fox.")

	params := RunParameters{
		Prompt:       "describe this",
		Temperature:  0.7,
		Steps:        3,
		Quantity:     2,
		AspectRatio:  "16:9",
		StickerMode:  true,
		StickerStyle: StyleCuteCartoon,
	}

	state := registry.Create("run-1", params, store, NewProgress(TotalUnits(1, 2)), nil)
	state.SetStatus(model.StatusProcessing)

	_, router := newTestHandler(registry)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/runs/run-1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp RunStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if resp.Status != model.StatusProcessing {
		t.Errorf("expected processing status, got %s", resp.Status)
	}
	// 제출된 파라미터가 그대로 노출됨 (1:1 강제는 합성 시점 적용)
	if resp.Params.AspectRatio != "16:9" {
		t.Errorf("expected submitted aspect ratio preserved, got %q", resp.Params.AspectRatio)
	}
	if !resp.Params.StickerMode || resp.Params.StickerStyle != StyleCuteCartoon {
		t.Errorf("expected sticker params exposed, got %+v", resp.Params)
	}
	if resp.Params.Quantity != 2 || resp.Params.Steps != 3 {
		t.Errorf("unexpected params: %+v", resp.Params)
	}
	if resp.Progress.Total != 3 {
		t.Errorf("expected total 3, got %d", resp.Progress.Total)
	}
	if len(resp.Images) != 1 || resp.Images[0].Description != "A red fox." {
		t.Errorf("unexpected images payload: %+v", resp.Images)
	}
}

func TestHandleRunStatusUnknownRun(t *testing.T) {
	_, router := newTestHandler(NewRegistry())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/runs/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleStickerServesBytes(t *testing.T) {
	registry := NewRegistry()

	store := NewResultStore()
	store.Init(InputImage{ID: "img-1"})
	store.SetStickers("img-1", []SynthesizedImage{
		{Ordinal: 0, Data: []byte("webp-bytes"), MimeType: "image/webp"},
	})
	registry.Create("run-1", RunParameters{}, store, NewProgress(1), nil)

	_, router := newTestHandler(registry)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/runs/run-1/stickers/img-1/0", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/webp" {
		t.Errorf("expected image/webp, got %q", got)
	}
	if rec.Body.String() != "webp-bytes" {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}

	// 범위 밖 ordinal은 404
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/runs/run-1/stickers/img-1/1", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing ordinal, got %d", rec.Code)
	}
}

package sticker

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"testing"

	"github.com/sevaroy/TTITI/modules/common/model"
)

func TestNormalizeParams(t *testing.T) {
	params := normalizeParams(&model.RunSubmission{
		Prompt:      "  describe this  ",
		Temperature: 3.5,
		Steps:       0,
		Quantity:    9,
		AspectRatio: "21:9",
	})

	if params.Prompt != "describe this" {
		t.Errorf("prompt not trimmed: %q", params.Prompt)
	}
	if params.Temperature != 1.0 {
		t.Errorf("expected temperature clamped to 1.0, got %v", params.Temperature)
	}
	if params.Steps != 3 {
		t.Errorf("expected default steps 3, got %d", params.Steps)
	}
	if params.Quantity != 4 {
		t.Errorf("expected quantity clamped to 4, got %d", params.Quantity)
	}
	if params.AspectRatio != "1:1" {
		t.Errorf("expected aspect ratio fallback 1:1, got %q", params.AspectRatio)
	}
}

func TestDecodeImages(t *testing.T) {
	// 1x1 PNG 생성
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("failed to build test PNG: %v", err)
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())

	images := decodeImages([]model.SubmittedImage{
		{Name: "plain.png", Data: encoded},
		{Name: "  ", Data: "data:image/png;base64," + encoded},
		{Name: "broken", Data: "%%%not-base64%%%"},
	})

	if len(images) != 2 {
		t.Fatalf("expected 2 decoded images, got %d", len(images))
	}
	if images[1].Name != "image" {
		t.Errorf("expected name fallback for blank name, got %q", images[1].Name)
	}
	for _, img := range images {
		if img.ID == "" {
			t.Error("expected generated image id")
		}
		if len(img.Data) == 0 {
			t.Errorf("%s: expected decoded bytes", img.Name)
		}
	}
	if images[0].ID == images[1].ID {
		t.Error("expected unique image ids")
	}
}

func TestExtractBase64Data(t *testing.T) {
	if got := extractBase64Data("data:image/jpeg;base64,abc123"); got != "abc123" {
		t.Errorf("expected stripped data URL, got %q", got)
	}
	if got := extractBase64Data("abc123"); got != "abc123" {
		t.Errorf("expected passthrough, got %q", got)
	}
}

func TestFinalRunStatus(t *testing.T) {
	store := NewResultStore()
	store.Init(InputImage{ID: "a"})
	store.Init(InputImage{ID: "b"})

	store.SetFailed("a", "describe failed")
	store.SetFailed("b", "describe failed")
	if got := finalRunStatus(store, false); got != model.StatusFailed {
		t.Errorf("expected failed when nothing completed, got %s", got)
	}

	store.SetStickers("b", []SynthesizedImage{{Ordinal: 0}})
	if got := finalRunStatus(store, false); got != model.StatusCompleted {
		t.Errorf("expected completed with partial success, got %s", got)
	}

	if got := finalRunStatus(store, true); got != model.StatusUserCancelled {
		t.Errorf("expected user_cancelled, got %s", got)
	}
}

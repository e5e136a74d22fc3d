package replicate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestPredictSynchronousSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/google-deepmind/gemma-3-27b-it/predictions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header: %q", got)
		}
		fmt.Fprint(w, `{"id":"p1","status":"succeeded","output":["A red"," fox."]}`)
	}))
	defer server.Close()

	client := New("test-token", server.URL)
	output, err := client.Predict(context.Background(), "google-deepmind/gemma-3-27b-it", map[string]interface{}{"prompt": "hi"})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	text, err := TextOutput(output)
	if err != nil {
		t.Fatalf("TextOutput failed: %v", err)
	}
	if text != "A red fox." {
		t.Errorf("expected joined fragments, got %q", text)
	}
}

func TestPredictPollsUntilTerminal(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			fmt.Fprint(w, `{"id":"p2","status":"processing"}`)
		default:
			if r.URL.Path != "/predictions/p2" {
				t.Errorf("unexpected poll path: %s", r.URL.Path)
			}
			fmt.Fprint(w, `{"id":"p2","status":"succeeded","output":["https://example.com/out.png"]}`)
		}
	}))
	defer server.Close()

	client := New("test-token", server.URL)
	client.pollDelay = time.Millisecond

	output, err := client.Predict(context.Background(), "black-forest-labs/flux-schnell", nil)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	urls, err := URLOutput(output)
	if err != nil {
		t.Fatalf("URLOutput failed: %v", err)
	}
	if len(urls) != 1 || urls[0] != "https://example.com/out.png" {
		t.Errorf("unexpected urls: %v", urls)
	}
}

func TestPredictFailedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"p3","status":"failed","error":"NSFW content detected"}`)
	}))
	defer server.Close()

	client := New("test-token", server.URL)
	_, err := client.Predict(context.Background(), "black-forest-labs/flux-schnell", nil)
	if err == nil {
		t.Fatal("expected error for failed prediction")
	}
}

func TestPredictWithRetryRecoversFrom429(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"detail":"rate limit exceeded"}`)
			return
		}
		fmt.Fprint(w, `{"id":"p4","status":"succeeded","output":"done"}`)
	}))
	defer server.Close()

	client := New("test-token", server.URL)
	output, err := PredictWithRetry(context.Background(), client, "google-deepmind/gemma-3-27b-it", nil)
	if err != nil {
		t.Fatalf("PredictWithRetry failed: %v", err)
	}

	text, err := TextOutput(output)
	if err != nil {
		t.Fatalf("TextOutput failed: %v", err)
	}
	if text != "done" {
		t.Errorf("unexpected output: %q", text)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestPredictWithRetryStopsOnHardError(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":"authentication failed"}`)
	}))
	defer server.Close()

	client := New("bad-token", server.URL)
	_, err := PredictWithRetry(context.Background(), client, "google-deepmind/gemma-3-27b-it", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected no retry on auth error, got %d calls", calls.Load())
	}
}

func TestTextOutputShapes(t *testing.T) {
	text, err := TextOutput(json.RawMessage(`"plain string"`))
	if err != nil || text != "plain string" {
		t.Errorf("string output: got %q, err %v", text, err)
	}

	if _, err := TextOutput(nil); err == nil {
		t.Error("expected error for empty output")
	}

	if _, err := TextOutput(json.RawMessage(`{"oops":1}`)); err == nil {
		t.Error("expected error for object output")
	}
}

func TestURLOutputEmptyList(t *testing.T) {
	if _, err := URLOutput(json.RawMessage(`[]`)); err == nil {
		t.Error("expected error for empty url list")
	}
}

package fallback

import "testing"

func TestSafeString(t *testing.T) {
	if got := SafeString("  hello ", "fallback"); got != "hello" {
		t.Errorf("expected trimmed value, got %q", got)
	}
	if got := SafeString("   ", "fallback"); got != "fallback" {
		t.Errorf("expected fallback for blank input, got %q", got)
	}
}

func TestClampInt(t *testing.T) {
	tests := []struct {
		name  string
		value int
		want  int
	}{
		{"zero uses default", 0, 3},
		{"below min", -2, 1},
		{"above max", 10, 4},
		{"in range", 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampInt(tt.value, 3, 1, 4); got != tt.want {
				t.Errorf("ClampInt(%d) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestClampFloat(t *testing.T) {
	if got := ClampFloat(0, 0.7, 0.1, 1.0); got != 0.7 {
		t.Errorf("expected default 0.7, got %v", got)
	}
	if got := ClampFloat(5.0, 0.7, 0.1, 1.0); got != 1.0 {
		t.Errorf("expected clamp to 1.0, got %v", got)
	}
	if got := ClampFloat(0.05, 0.7, 0.1, 1.0); got != 0.1 {
		t.Errorf("expected clamp to 0.1, got %v", got)
	}
}

func TestSafeAspectRatio(t *testing.T) {
	if got := SafeAspectRatio("16:9"); got != "16:9" {
		t.Errorf("expected 16:9, got %q", got)
	}
	if got := SafeAspectRatio("21:9"); got != "1:1" {
		t.Errorf("expected 1:1 fallback, got %q", got)
	}
	if got := SafeAspectRatio(""); got != "1:1" {
		t.Errorf("expected 1:1 fallback for empty, got %q", got)
	}
}

package sticker

import (
	"strings"
	"testing"
)

func TestBuildDescriptionPromptPassthrough(t *testing.T) {
	base := "Describe this image in detail."
	if got := BuildDescriptionPrompt(base, false, StyleCuteCartoon); got != base {
		t.Errorf("expected unchanged prompt, got %q", got)
	}
}

func TestBuildDescriptionPromptStickerMode(t *testing.T) {
	base := "Describe this image in detail."

	for _, style := range []string{
		StyleCuteCartoon, StyleMinimalLine, StyleExpressive,
		StyleAnimalCharacter, StyleFoodPersonified,
	} {
		t.Run(style, func(t *testing.T) {
			got := BuildDescriptionPrompt(base, true, style)
			if !strings.HasPrefix(got, base) {
				t.Errorf("expected base prompt prefix, got %q", got)
			}
			instruction := styleInstructions[style]
			if !strings.HasSuffix(got, instruction) {
				t.Errorf("expected %s instruction suffix", style)
			}
			if got == base {
				t.Error("expected appended instruction")
			}
		})
	}
}

func TestBuildDescriptionPromptUnknownStyle(t *testing.T) {
	got := BuildDescriptionPrompt("base", true, "vaporwave")
	if !strings.HasSuffix(got, genericStyleInstruction) {
		t.Errorf("expected generic instruction for unknown style, got %q", got)
	}

	// 스타일 미지정도 동일
	if got2 := BuildDescriptionPrompt("base", true, ""); got2 != got {
		t.Errorf("expected same fallback for empty style")
	}
}

func TestBuildSynthesisPromptPassthrough(t *testing.T) {
	desc := "A red fox sitting on a rock."
	if got := BuildSynthesisPrompt(desc, false, ""); got != desc {
		t.Errorf("expected unchanged description, got %q", got)
	}
}

func TestBuildSynthesisPromptKeyElements(t *testing.T) {
	got := BuildSynthesisPrompt("A red fox. It is jumping over a log.", true, StyleCuteCartoon)

	if !strings.HasPrefix(got, "A red fox - ") {
		t.Errorf("expected key-elements anchor before template, got %q", got)
	}
	if !strings.Contains(got, "cute cartoon") {
		t.Errorf("expected style label in template, got %q", got)
	}
	if strings.Contains(got, "jumping") {
		t.Errorf("expected only first sentence as anchor, got %q", got)
	}
}

func TestExtractKeyElements(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ascii full stop", "A red fox. It is jumping.", "A red fox"},
		{"cjk full stop", "赤いキツネ。跳んでいる。", "赤いキツネ"},
		{"exclamation", "A happy dog! Very fluffy.", "A happy dog"},
		{"no delimiter", "a sleeping cat curled on a sofa", "a sleeping cat curled on a sofa"},
		{"whitespace only", "   ", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractKeyElements(tt.in); got != tt.want {
				t.Errorf("extractKeyElements(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildSynthesisPromptEmptyDescription(t *testing.T) {
	got := BuildSynthesisPrompt("   ", true, "")
	if !strings.HasPrefix(got, " - ") {
		t.Errorf("expected empty anchor without error, got %q", got)
	}
}

func TestBuildSynthesisPromptUnknownStyleUsesDefaultLabel(t *testing.T) {
	got := BuildSynthesisPrompt("A mug", true, "unknown-style")
	if !strings.Contains(got, defaultStyleLabel) {
		t.Errorf("expected default style label, got %q", got)
	}
}

package sticker

import (
	"fmt"
	"strings"
)

// 스티커 스타일 키
const (
	StyleCuteCartoon     = "cute-cartoon"
	StyleMinimalLine     = "minimal-line"
	StyleExpressive      = "expressive"
	StyleAnimalCharacter = "animal-character"
	StyleFoodPersonified = "food-personified"
)

// styleInstructions - 스타일별 설명 프롬프트 지시문
// 공통 뼈대: 주 피사체 식별 → 특징(외형/표정/포즈) 묘사 → 정체성 유지하며 스타일 변환
var styleInstructions = map[string]string{
	StyleCuteCartoon: "First identify the main subject of this image. Describe its distinguishing features in detail: appearance, expression, and pose. Then explain how to redraw it as a cute cartoon character with rounded shapes, bold outlines, and soft pastel colors, keeping the subject clearly recognizable.",

	StyleMinimalLine: "First identify the main subject of this image. Describe its distinguishing features in detail: appearance, expression, and pose. Then explain how to reduce it to a minimal line drawing using a few clean continuous strokes, keeping the subject clearly recognizable.",

	StyleExpressive: "First identify the main subject of this image. Describe its distinguishing features in detail: appearance, expression, and pose. Then explain how to redraw it with an exaggerated, highly expressive emotion (joy, surprise, determination) while keeping the subject clearly recognizable.",

	StyleAnimalCharacter: "First identify the main subject of this image. Describe its distinguishing features in detail: appearance, expression, and pose. Then explain how to reimagine it as an adorable animal mascot character that carries over the subject's defining traits, keeping the original identity clearly recognizable.",

	StyleFoodPersonified: "First identify the main subject of this image. Describe its distinguishing features in detail: appearance, expression, and pose. Then explain how to personify it as a charming food character with a face and limbs, keeping the subject's defining traits clearly recognizable.",
}

// genericStyleInstruction - 알 수 없는 스타일 기본값
const genericStyleInstruction = "First identify the main subject of this image. Describe its distinguishing features in detail: appearance, expression, and pose. Then explain how to convert it into a design suitable for sticker use, keeping the subject clearly recognizable."

// styleLabels - 합성 프롬프트에 들어갈 스타일 표기
var styleLabels = map[string]string{
	StyleCuteCartoon:     "cute cartoon",
	StyleMinimalLine:     "minimal line art",
	StyleExpressive:      "expressive cartoon",
	StyleAnimalCharacter: "animal character",
	StyleFoodPersonified: "personified food character",
}

const defaultStyleLabel = "cute cartoon"

// synthesisTemplate - 스티커 합성 프롬프트 고정 템플릿
const synthesisTemplate = "A sticker of the exact same subject as described, redrawn in %s style. Preserve the subject's identity and distinguishing features. Simple, clear design on a plain or transparent background. Expressive and easy to read at small sizes. Digital art suitable for chat stickers."

// BuildDescriptionPrompt - 설명 단계 프롬프트 조합
// 스티커 모드가 아니면 기본 프롬프트 그대로 통과
func BuildDescriptionPrompt(basePrompt string, stickerMode bool, stickerStyle string) string {
	if !stickerMode {
		return basePrompt
	}

	instruction, ok := styleInstructions[stickerStyle]
	if !ok {
		instruction = genericStyleInstruction
	}

	return basePrompt + "\n\n" + instruction
}

// BuildSynthesisPrompt - 합성 단계 프롬프트 조합
// 스티커 모드면 설명의 핵심 요소를 앵커로 고정 템플릿을 붙임
func BuildSynthesisPrompt(description string, stickerMode bool, stickerStyle string) string {
	if !stickerMode {
		return description
	}

	label, ok := styleLabels[stickerStyle]
	if !ok {
		label = defaultStyleLabel
	}

	keyElements := extractKeyElements(description)
	return fmt.Sprintf("%s - %s", keyElements, fmt.Sprintf(synthesisTemplate, label))
}

// extractKeyElements - 첫 문장 구분자 앞까지를 핵심 요소로 추출
// 구분자가 없으면 전체 텍스트 사용
func extractKeyElements(description string) string {
	description = strings.TrimSpace(description)

	for i, r := range description {
		switch r {
		case '.', '!', '?', '。', '！', '？', '．':
			return strings.TrimSpace(description[:i])
		}
	}

	return description
}

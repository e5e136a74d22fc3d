package fallback

import (
	"strings"
)

var allowedAspectRatios = map[string]bool{
	"1:1":  true,
	"16:9": true,
	"9:16": true,
	"4:3":  true,
	"3:4":  true,
}

// SafeString returns a trimmed string or the provided fallback.
func SafeString(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}

// ClampInt substitutes the default for a zero value and clamps into [min, max].
func ClampInt(value, def, min, max int) int {
	if value == 0 {
		value = def
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClampFloat substitutes the default for a zero value and clamps into [min, max].
func ClampFloat(value, def, min, max float64) float64 {
	if value == 0 {
		value = def
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// SafeAspectRatio accepts only known ratios, anything else falls back to 1:1.
func SafeAspectRatio(value string) string {
	value = strings.TrimSpace(value)
	if allowedAspectRatios[value] {
		return value
	}
	return "1:1"
}

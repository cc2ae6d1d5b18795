package language

import (
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// Auto is the source token that asks for per-cell language detection.
const Auto = "auto"

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// IsAuto reports whether token requests detection.
func IsAuto(token string) bool {
	return strings.EqualFold(strings.TrimSpace(token), Auto)
}

// Detect returns the lowercase ISO 639-1 code of text, or "" when the text
// is too short or the detector is not confident.
func Detect(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letters := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < 6 {
		return ""
	}

	detected, ok := getDetector().DetectLanguageOf(sample)
	if !ok {
		return ""
	}

	code := strings.ToLower(detected.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build()
	})
	return detector
}

package language

import "testing"

func TestIsAuto(t *testing.T) {
	for _, token := range []string{"auto", "AUTO", " Auto "} {
		if !IsAuto(token) {
			t.Errorf("IsAuto(%q) = false, want true", token)
		}
	}
	if IsAuto("en") {
		t.Error("IsAuto(en) = true, want false")
	}
}

func TestDetect_ShortInput(t *testing.T) {
	tests := []string{"", "   ", "ok", "12345678", "a b c"}
	for _, text := range tests {
		if got := Detect(text); got != "" {
			t.Errorf("Detect(%q) = %q, want empty", text, got)
		}
	}
}

func TestDetect_Sentences(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping language model load in short mode")
	}

	tests := []struct {
		text string
		want string
	}{
		{"The quick brown fox jumps over the lazy dog near the river bank", "en"},
		{"Le renard brun rapide saute par-dessus le chien paresseux", "fr"},
		{"Der schnelle braune Fuchs springt über den faulen Hund", "de"},
	}

	for _, tt := range tests {
		if got := Detect(tt.text); got != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

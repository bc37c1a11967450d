package langdetect

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		text string
		want Language
	}{
		{"bagaimana cara upload dokumen sih", Indonesian},
		{"gimana kok gak bisa", Indonesian},
		{"what can you do for me", English},
		{"how would the chatbot answer", English},
		{"hello", English}, // no hits either way defaults to English
	}

	for _, tt := range tests {
		if got := Detect(tt.text); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

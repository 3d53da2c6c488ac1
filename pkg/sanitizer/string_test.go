package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  John's Salon  ", "John's Salon"},
		{"multiple spaces between words", "John's    Salon", "John's Salon"},
		{"tabs and newlines", "John's\t\nSalon", "John's Salon"},
		{"empty string", "", ""},
		{"only whitespace", "   \t\n  ", ""},
		{"preserve special characters", " Café & Spa™ ", "Café & Spa™"},
		{"hebrew characters", " תספורת יוסי ", "תספורת יוסי"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := TrimAndNormalize(tt.want); again != tt.want {
				t.Errorf("not idempotent: %q -> %q", tt.want, again)
			}
		})
	}
}

func TestNormalizeNotes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "window seat please", "window seat please"},
		{"keeps line breaks", "line one\nline   two", "line one\nline two"},
		{"windows line endings", "a\r\nb", "a\nb"},
		{"drops control characters", "bell\a here\x00", "bell here"},
		{"trims blank edge lines", "\n\n  hello \n\n", "hello"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeNotes(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeNotes(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeNotes(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

package sanitizer

import "testing"

func TestSanitizeFreeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims edges", "  hello  ", "hello"},
		{"collapses spaces", "too   many    spaces", "too many spaces"},
		{"strips control chars", "clean\x00me\x1f", "cleanme"},
		{"keeps newlines", "line one\nline two", "line one\nline two"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFreeText(tt.input); got != tt.want {
				t.Errorf("SanitizeFreeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeAddress(t *testing.T) {
	got := SanitizeAddress("12 Main St\nSuite 4\nSpringfield")
	want := "12 Main St, Suite 4, Springfield"
	if got != want {
		t.Errorf("SanitizeAddress = %q, want %q", got, want)
	}
}

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already e164", "+12025550123", "+12025550123"},
		{"us without prefix", "202-555-0123", "+12025550123"},
		{"garbage", "not a phone", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePhone(tt.input); got != tt.want {
				t.Errorf("SanitizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"enforces https", "http://meet.example.com/room", "https://meet.example.com/room"},
		{"adds scheme", "meet.example.com/room", "https://meet.example.com/room"},
		{"lowercases host", "https://Meet.Example.COM/room", "https://meet.example.com/room"},
		{"drops tracking params", "https://meet.example.com/room?utm_source=mail&id=7", "https://meet.example.com/room?id=7"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeURL(tt.input); got != tt.want {
				t.Errorf("SanitizeURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

package sqlite

import "testing"

func TestSkipLeadingNoise(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "  \n\t ", ""},
		{"statement untouched", "SELECT 1", "SELECT 1"},
		{"leading whitespace", "  SELECT 1", "SELECT 1"},
		{"stray semicolons", ";; SELECT 1", "SELECT 1"},
		{"semicolons only", " ; ; ", ""},
		{"line comment then statement", "-- note\nSELECT 1", "SELECT 1"},
		{"line comment at end", "-- trailing note", ""},
		{"block comment then statement", "/* header */ SELECT 1", "SELECT 1"},
		{"block comment only", "/* tail */", ""},
		{"mixed noise", "; -- a\n /* b */ ;SELECT 1", "SELECT 1"},
		{"unterminated block comment", "/* oops", "/* oops"},
		{"dashes inside statement", "SELECT 'a--b'", "SELECT 'a--b'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := skipLeadingNoise(tt.in); got != tt.want {
				t.Errorf("skipLeadingNoise(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

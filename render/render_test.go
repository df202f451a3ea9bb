package render

import (
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		width    int
		expected []string
	}{
		{"fits", "hello world", 20, []string{"hello world"}},
		{"exact width", "abcdef", 6, []string{"abcdef"}},
		{"empty line", "", 10, []string{""}},
		{"break at space", "hello world foo bar", 11, []string{"hello world", "foo bar"}},
		{"break inside piece", "one two three four", 10, []string{"one two", "three four"}},
		{"keeps indentation", "    indented code block", 12, []string{"    indented", "code block"}},
		{"keeps inner runs", "  col1    col2    col3", 12, []string{"  col1", "col2    col3"}},
		{"long word cut", "supercalifragilistic", 10, []string{"supercalif", "ragilistic"}},
		{"wide runes", "日本語テキスト", 6, []string{"日本語", "テキス", "ト"}},
		{"wide rune at odd width", "日本語", 5, []string{"日本", "語"}},
		{"no width", "abc", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Wrap(tt.text, tt.width)
			if len(result) != len(tt.expected) {
				t.Errorf("got %d lines, expected %d lines\ngot: %q\nexpected: %q",
					len(result), len(tt.expected), result, tt.expected)
				return
			}
			for i, line := range result {
				if line != tt.expected[i] {
					t.Errorf("line %d: got %q, expected %q", i, line, tt.expected[i])
				}
				if w := StringWidth(line); w > tt.width {
					t.Errorf("line %d is %d cells wide, limit %d", i, w, tt.width)
				}
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		width    int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hi", 2, "hi"},
		{"hello", 3, "hel"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := Truncate(tt.input, tt.width)
			if result != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, expected %q",
					tt.input, tt.width, result, tt.expected)
			}
		})
	}
}

func TestTruncateWide(t *testing.T) {
	tests := []struct {
		input    string
		width    int
		expected string
	}{
		{"日本語", 2, "日"},
		{"日本語", 3, "日"},
		{"日本語漢字", 7, "日本..."},
		{"日本語", 6, "日本語"},
		{"abc", 0, ""},
		{"abc", -2, ""},
	}

	for _, tt := range tests {
		if got := Truncate(tt.input, tt.width); got != tt.expected {
			t.Errorf("Truncate(%q, %d) = %q, expected %q", tt.input, tt.width, got, tt.expected)
		}
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Welcome to Floodgap", "Welcome to Floodgap"},
		{"ansi colour", "\033[1;31mred\033[0m text", "red text"},
		{"tab", "a\tb", "a b"},
		{"bell and cr", "ring\a\r", "ring"},
		{"unicode kept", "café ☕", "café ☕"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

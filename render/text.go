package render

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "..."

// StringWidth returns the number of terminal cells s occupies.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate shortens s to at most width cells, marking the cut with an
// ellipsis when there is room for one.
func Truncate(s string, width int) string {
	switch {
	case width <= 0:
		return ""
	case runewidth.StringWidth(s) <= width:
		return s
	case width <= len(ellipsis):
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, ellipsis)
}

// Wrap splits one line into pieces no wider than width cells. Whitespace
// inside a piece is kept as written, so indentation and column alignment
// survive. Breaks prefer the last space of a piece; a run without spaces is
// cut at the width.
func Wrap(line string, width int) []string {
	if width <= 0 {
		return nil
	}
	if runewidth.StringWidth(line) <= width {
		return []string{line}
	}

	var (
		out   []string
		cur   []rune
		cells int
	)
	for _, r := range line {
		w := runewidth.RuneWidth(r)
		if cells+w > width && len(cur) > 0 {
			if r == ' ' {
				out = append(out, strings.TrimRight(string(cur), " "))
				cur, cells = nil, 0
				continue
			}
			head, tail := splitAtSpace(cur)
			out = append(out, string(head))
			cur = append([]rune(nil), tail...)
			cells = runewidth.StringWidth(string(cur))
		}
		cur = append(cur, r)
		cells += w
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}

// splitAtSpace breaks a full piece after its last space that follows some
// text. Leading indentation is never a break point.
func splitAtSpace(piece []rune) (head, tail []rune) {
	for i := len(piece) - 1; i > 0; i-- {
		if piece[i] != ' ' {
			continue
		}
		head = []rune(strings.TrimRight(string(piece[:i]), " "))
		if len(head) == 0 || strings.TrimSpace(string(head)) == "" {
			break
		}
		return head, piece[i+1:]
	}
	return piece, nil
}

// Clean makes server-supplied text safe to print: terminal escape sequences
// and control characters are dropped and tabs become single spaces.
func Clean(s string) string {
	var sb strings.Builder
	inEscape := false

	for _, r := range s {
		if r == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}
		switch {
		case r == '\t':
			sb.WriteByte(' ')
		case unicode.IsControl(r):
		default:
			sb.WriteRune(r)
		}
	}

	return sb.String()
}

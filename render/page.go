// Package render prints navigator snapshots as plain text.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"burrow/document"
	"burrow/navigator"
	"burrow/omnibox"
)

const (
	selectedMarker = "> "
	plainMarker    = "  "
	truncatedNote  = "[response truncated]"
)

// Options control page output.
type Options struct {
	Width      int  // 0 = detect from the writer
	TypePrefix bool // show [D], [T] ... before menu items
	Numbers    bool // show item indexes for selectable menu items
	Header     bool // print the address and status above the page
}

// Printer writes snapshots to an io.Writer.
type Printer struct {
	w     io.Writer
	opts  Options
	width int
}

// NewPrinter creates a printer for w.
func NewPrinter(w io.Writer, opts Options) *Printer {
	width := opts.Width
	if width <= 0 {
		width = TerminalWidth(w)
	}
	return &Printer{w: w, opts: opts, width: width}
}

// Width returns the column limit in use.
func (p *Printer) Width() int {
	return p.width
}

// Print writes the snapshot: an optional header, then the page body.
func (p *Printer) Print(s navigator.Snapshot) error {
	bw := bufio.NewWriter(p.w)

	if p.opts.Header {
		p.header(bw, s)
	}

	switch {
	case !s.Loaded:
	case s.IsMenu:
		for i, item := range s.Items {
			fmt.Fprintln(bw, p.MenuLine(item, i, i == s.Selected))
		}
	default:
		for _, item := range s.Items {
			for _, line := range p.textLines(item.Display) {
				fmt.Fprintln(bw, line)
			}
		}
	}

	if s.Truncated {
		fmt.Fprintln(bw, truncatedNote)
	}
	return bw.Flush()
}

func (p *Printer) header(w io.Writer, s navigator.Snapshot) {
	if s.Host == "" {
		return
	}
	kind := s.Kind
	if kind == 0 {
		kind = document.Menu
	}
	fmt.Fprintln(w, Truncate(omnibox.FormatURL(s.Host, s.Port, kind, Clean(s.Selector)), p.width))
	if s.Status != "" {
		fmt.Fprintln(w, Truncate("-- "+s.Status+" --", p.width))
	}
	if s.Stale() && s.Loaded {
		fmt.Fprintln(w, Truncate("(content below is from the previous page)", p.width))
	}
	fmt.Fprintln(w, strings.Repeat("-", min(p.width, 40)))
}

// MenuLine formats one menu item to fit the printer's width.
func (p *Printer) MenuLine(item document.Item, index int, selected bool) string {
	var sb strings.Builder
	if selected && item.Selectable() {
		sb.WriteString(selectedMarker)
	} else {
		sb.WriteString(plainMarker)
	}
	if p.opts.Numbers {
		if item.Selectable() {
			fmt.Fprintf(&sb, "%3d ", index)
		} else {
			sb.WriteString("    ")
		}
	}
	if p.opts.TypePrefix {
		sb.WriteString(item.Kind.Prefix())
		sb.WriteByte(' ')
	}

	used := StringWidth(sb.String())
	sb.WriteString(Truncate(Clean(item.Display), p.width-used))
	return strings.TrimRight(sb.String(), " ")
}

// textLines wraps a line of a text document at the printer's width without
// touching its spacing.
func (p *Printer) textLines(line string) []string {
	return Wrap(Clean(line), p.width)
}

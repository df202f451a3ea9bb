// Package document holds the Gopher page model and the parsers that build it
// from raw server responses.
package document

import (
	"strconv"
	"strings"
)

// DefaultPort is used whenever an item or address carries no usable port.
const DefaultPort = 70

// terminator is the line that ends a menu or document.
const terminator = "."

// Item is one entry of a menu, or one line of a text document.
type Item struct {
	Kind     Kind
	Display  string
	Selector string
	Host     string
	Port     int
}

// Selectable reports whether the item can be selected and followed.
func (it Item) Selectable() bool {
	return it.Kind.Selectable()
}

// Page is a fully parsed response. A Page is never modified after parsing;
// navigation replaces it.
type Page struct {
	Host     string
	Selector string
	Port     int
	Items    []Item
	RawText  string // untouched response, text documents only
	IsMenu   bool

	// Truncated is set when the response hit the transport's size cap.
	Truncated bool
}

// FirstSelectable returns the index of the first selectable item, or -1.
func (p *Page) FirstSelectable() int {
	if p == nil {
		return -1
	}
	for i, it := range p.Items {
		if it.Selectable() {
			return i
		}
	}
	return -1
}

// ParseLine parses a single menu line of the form
// <kind><display>\t<selector>\t<host>\t<port>. Missing fields are left empty
// and a missing or unusable port becomes DefaultPort.
func ParseLine(line string) Item {
	it := Item{Kind: Info, Port: DefaultPort}
	if line == "" {
		return it
	}

	it.Kind = Kind(line[0])
	parts := strings.Split(line[1:], "\t")

	it.Display = parts[0]
	if len(parts) >= 2 {
		it.Selector = parts[1]
	}
	if len(parts) >= 3 {
		it.Host = parts[2]
	}
	if len(parts) >= 4 {
		it.Port = parsePort(parts[3])
	}
	return it
}

func parsePort(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultPort
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return DefaultPort
	}
	return n
}

// ParseMenu parses a menu response. Blank lines are skipped and parsing stops
// at the "." terminator.
func ParseMenu(response []byte) *Page {
	page := &Page{IsMenu: true}
	eachLine(response, func(line string) {
		if line == "" {
			return
		}
		page.Items = append(page.Items, ParseLine(line))
	})
	return page
}

// ParseText parses a text document. Every line, blank or not, becomes an Info
// item so whitespace survives; parsing stops at the "." terminator.
func ParseText(response []byte) *Page {
	page := &Page{
		RawText: string(response),
		IsMenu:  false,
	}
	eachLine(response, func(line string) {
		page.Items = append(page.Items, Item{Kind: Info, Display: line})
	})
	return page
}

// Parse picks ParseText for text-like kinds and ParseMenu for everything else.
func Parse(response []byte, expected Kind) *Page {
	if expected.IsText() {
		return ParseText(response)
	}
	return ParseMenu(response)
}

// eachLine calls fn for each \n-separated line with one trailing \r removed,
// stopping at the terminator. A final line without a newline is delivered the
// same way.
func eachLine(response []byte, fn func(line string)) {
	rest := string(response)
	for {
		i := strings.IndexByte(rest, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSuffix(rest[:i], "\r")
		rest = rest[i+1:]
		if line == terminator {
			return
		}
		fn(line)
	}
	if rest == "" {
		return
	}
	if line := strings.TrimSuffix(rest, "\r"); line != terminator {
		fn(line)
	}
}

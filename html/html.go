// Package html flattens HTML documents served as Gopher "h" items into plain
// text lines.
package html

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// blockTags start and end on their own line.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"header": true, "footer": true, "nav": true, "aside": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "dl": true, "dt": true, "dd": true,
	"table": true, "tr": true, "blockquote": true, "pre": true, "hr": true,
	"form": true, "figure": true, "figcaption": true,
}

// ToText converts an HTML document to plain text, one rendered line per
// output line. Scripts and styles are dropped and links are written as
// "text <href>".
func ToText(raw []byte) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	doc.Find("script, style, noscript, template").Remove()

	root := contentRoot(doc)
	w := &textWriter{}
	for _, n := range root.Nodes {
		w.walk(n)
	}
	w.flush()
	lines := w.lines
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return []byte(strings.Join(lines, "\n") + "\n"), nil
}

// contentRoot prefers article, then main, then body.
func contentRoot(doc *goquery.Document) *goquery.Selection {
	for _, tag := range []string{"article", "main", "body"} {
		if sel := doc.Find(tag).First(); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Selection
}

type textWriter struct {
	lines []string
	cur   strings.Builder
	pre   int
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
		return
	}

	switch n.Data {
	case "br":
		w.flush()
		return
	case "hr":
		w.flush()
		w.lines = append(w.lines, strings.Repeat("-", 40))
		return
	case "pre":
		w.flush()
		w.pre++
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
		w.pre--
		if w.cur.Len() > 0 {
			w.flushRaw()
		}
		return
	}

	block := blockTags[n.Data]
	if block {
		w.flush()
	}
	if n.Data == "li" {
		w.cur.WriteString("* ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
	if n.Data == "a" {
		if href := getAttr(n, "href"); href != "" && !strings.HasPrefix(href, "#") {
			w.space()
			w.cur.WriteString("<" + href + ">")
		}
	}
	if block {
		w.flush()
		if isHeading(n.Data) || n.Data == "p" {
			w.blank()
		}
	}
}

func (w *textWriter) text(s string) {
	if w.pre > 0 {
		for i, part := range strings.Split(s, "\n") {
			if i > 0 {
				w.flushRaw()
			}
			w.cur.WriteString(part)
		}
		return
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			w.space()
		}
		return
	}
	if startsWithSpace(s) {
		w.space()
	}
	w.cur.WriteString(strings.Join(fields, " "))
	if endsWithSpace(s) {
		w.space()
	}
}

// space writes a single separating space unless the line is empty or already
// ends in one.
func (w *textWriter) space() {
	cur := w.cur.String()
	if cur == "" || strings.HasSuffix(cur, " ") {
		return
	}
	w.cur.WriteByte(' ')
}

func (w *textWriter) flush() {
	line := strings.TrimSpace(w.cur.String())
	w.cur.Reset()
	if line != "" {
		w.lines = append(w.lines, line)
	}
}

func (w *textWriter) flushRaw() {
	w.lines = append(w.lines, strings.TrimRight(w.cur.String(), " \t\r"))
	w.cur.Reset()
}

// blank adds one separating empty line, never two in a row.
func (w *textWriter) blank() {
	if len(w.lines) > 0 && w.lines[len(w.lines)-1] != "" {
		w.lines = append(w.lines, "")
	}
}

func isHeading(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

func startsWithSpace(s string) bool {
	return s != "" && strings.ContainsRune(" \t\r\n", rune(s[0]))
}

func endsWithSpace(s string) bool {
	return s != "" && strings.ContainsRune(" \t\r\n", rune(s[len(s)-1]))
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

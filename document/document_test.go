package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Item
	}{
		{
			name: "full line",
			line: "1A menu\tfoo\texample.com\t70",
			want: Item{Kind: Menu, Display: "A menu", Selector: "foo", Host: "example.com", Port: 70},
		},
		{
			name: "display only",
			line: "1A menu",
			want: Item{Kind: Menu, Display: "A menu", Port: 70},
		},
		{
			name: "non-numeric port",
			line: "1x\tfoo\texample.com\tabc",
			want: Item{Kind: Menu, Display: "x", Selector: "foo", Host: "example.com", Port: 70},
		},
		{
			name: "negative port",
			line: "0doc\t/a\thost\t-5",
			want: Item{Kind: Text, Display: "doc", Selector: "/a", Host: "host", Port: 70},
		},
		{
			name: "zero port",
			line: "0doc\t/a\thost\t0",
			want: Item{Kind: Text, Display: "doc", Selector: "/a", Host: "host", Port: 70},
		},
		{
			name: "padded port",
			line: "7Search\t/v2/vs\tgopher.floodgap.com\t 7070 ",
			want: Item{Kind: Search, Display: "Search", Selector: "/v2/vs", Host: "gopher.floodgap.com", Port: 7070},
		},
		{
			name: "empty port field",
			line: "9file\t/f\thost\t",
			want: Item{Kind: Binary, Display: "file", Selector: "/f", Host: "host", Port: 70},
		},
		{
			name: "selector and host only",
			line: "h Web\tURL:http://example.com\tex.com",
			want: Item{Kind: Html, Display: " Web", Selector: "URL:http://example.com", Host: "ex.com", Port: 70},
		},
		{
			name: "extra fields ignored",
			line: "1Plus\t/p\thost\t71\t+",
			want: Item{Kind: Menu, Display: "Plus", Selector: "/p", Host: "host", Port: 71},
		},
		{
			name: "unknown kind preserved",
			line: "Xodd\tsel\thost\t70",
			want: Item{Kind: Kind('X'), Display: "odd", Selector: "sel", Host: "host", Port: 70},
		},
		{
			name: "empty line",
			line: "",
			want: Item{Kind: Info, Port: 70},
		},
		{
			name: "kind only",
			line: "i",
			want: Item{Kind: Info, Port: 70},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLine(tt.line))
		})
	}
}

func TestParseMenuStopsAtTerminator(t *testing.T) {
	page := ParseMenu([]byte("1A\tfoo\tex.com\t70\r\n.\r\n1B\tbar\tex.com\t70\r\n"))

	require.Len(t, page.Items, 1)
	assert.Equal(t, "A", page.Items[0].Display)
	assert.True(t, page.IsMenu)
	assert.Empty(t, page.RawText)
}

func TestParseMenuSkipsBlankLines(t *testing.T) {
	page := ParseMenu([]byte("1A\tfoo\tex.com\t70\r\n\r\n1B\tbar\tex.com\t70\r\n"))

	require.Len(t, page.Items, 2)
	assert.Equal(t, "A", page.Items[0].Display)
	assert.Equal(t, "B", page.Items[1].Display)
}

func TestParseTextKeepsBlankLines(t *testing.T) {
	raw := "1A\tfoo\tex.com\t70\r\n\r\n1B\tbar\tex.com\t70\r\n"
	page := ParseText([]byte(raw))

	require.Len(t, page.Items, 3)
	for _, it := range page.Items {
		assert.Equal(t, Info, it.Kind)
	}
	assert.Equal(t, "1A\tfoo\tex.com\t70", page.Items[0].Display)
	assert.Equal(t, "", page.Items[1].Display)
	assert.Equal(t, "1B\tbar\tex.com\t70", page.Items[2].Display)
	assert.False(t, page.IsMenu)
	assert.Equal(t, raw, page.RawText)
}

func TestParseTextDoesNotTrim(t *testing.T) {
	page := ParseText([]byte("   indented  \n\ttabbed\n"))

	require.Len(t, page.Items, 2)
	assert.Equal(t, "   indented  ", page.Items[0].Display)
	assert.Equal(t, "\ttabbed", page.Items[1].Display)
}

func TestParseTextStopsAtTerminator(t *testing.T) {
	raw := "line one\r\n.\r\nafter\r\n"
	page := ParseText([]byte(raw))

	require.Len(t, page.Items, 1)
	assert.Equal(t, "line one", page.Items[0].Display)
	assert.Equal(t, raw, page.RawText)
}

func TestParseFinalLineWithoutNewline(t *testing.T) {
	menu := ParseMenu([]byte("1A\tfoo\tex.com\t70\r\n1B\tbar\tex.com\t70"))
	require.Len(t, menu.Items, 2)
	assert.Equal(t, "bar", menu.Items[1].Selector)

	text := ParseText([]byte("first\nlast\r"))
	require.Len(t, text.Items, 2)
	assert.Equal(t, "last", text.Items[1].Display)
}

func TestParseFinalTerminatorWithoutNewline(t *testing.T) {
	menu := ParseMenu([]byte("1A\tfoo\tex.com\t70\r\n."))
	assert.Len(t, menu.Items, 1)

	text := ParseText([]byte("only\n."))
	assert.Len(t, text.Items, 1)
}

func TestParseEmptyResponse(t *testing.T) {
	assert.Empty(t, ParseMenu(nil).Items)
	assert.Empty(t, ParseText(nil).Items)
}

func TestParseIsDeterministic(t *testing.T) {
	raw := []byte("iWelcome\t\terror.host\t1\r\n1Sub\t/sub\thost\t70\r\n.\r\n")
	assert.Equal(t, ParseMenu(raw), ParseMenu(raw))
	assert.Equal(t, ParseText(raw), ParseText(raw))
}

func TestParseChoosesByKind(t *testing.T) {
	raw := []byte("iinfo\n\n1menu\t/m\th\t70\n")

	assert.False(t, Parse(raw, Text).IsMenu)
	assert.False(t, Parse(raw, Html).IsMenu)
	assert.True(t, Parse(raw, Menu).IsMenu)
	assert.True(t, Parse(raw, Search).IsMenu)
	assert.True(t, Parse(raw, Kind('X')).IsMenu)
}

func TestFirstSelectable(t *testing.T) {
	page := &Page{Items: []Item{{Kind: Info}, {Kind: Error}, {Kind: Menu}, {Kind: Text}}}
	assert.Equal(t, 2, page.FirstSelectable())

	infoOnly := ParseText([]byte("a\nb\nc\n"))
	assert.Equal(t, -1, infoOnly.FirstSelectable())

	assert.Equal(t, -1, (&Page{}).FirstSelectable())

	var nilPage *Page
	assert.Equal(t, -1, nilPage.FirstSelectable())
}

// Package omnibox turns what a user types into a Gopher address or search.
package omnibox

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"burrow/document"
)

// Result represents the parsed omnibox input.
type Result struct {
	Host     string
	Port     int
	Selector string
	Kind     document.Kind // kind to fetch the selector as
	Query    string        // search terms, when IsSearch
	IsSearch bool
	Provider string // display name of the search prefix used, if any
}

// Item returns the result as a menu item, suitable for following or, for
// searches, for building the search selector.
func (r Result) Item() document.Item {
	return document.Item{
		Kind:     r.Kind,
		Display:  r.Provider,
		Selector: r.Selector,
		Host:     r.Host,
		Port:     r.Port,
	}
}

// Prefix is a search shortcut such as "v2 cats".
type Prefix struct {
	Names    []string
	Display  string
	Host     string
	Port     int
	Selector string
}

// DefaultPrefixes returns the built-in search prefixes.
func DefaultPrefixes() []Prefix {
	return []Prefix{
		{
			Names:    []string{"v2", "veronica"},
			Display:  "Veronica-2",
			Host:     "gopher.floodgap.com",
			Port:     70,
			Selector: "/v2/vs",
		},
		{
			Names:    []string{"gp", "gopherpedia", "wp"},
			Display:  "Gopherpedia",
			Host:     "gopherpedia.com",
			Port:     70,
			Selector: "/lookup",
		},
	}
}

// Parser handles omnibox input parsing.
type Parser struct {
	prefixes      []Prefix
	defaultSearch Prefix
}

// NewParser creates a new omnibox parser with default configuration.
func NewParser() *Parser {
	prefixes := DefaultPrefixes()
	return &Parser{
		prefixes:      prefixes,
		defaultSearch: prefixes[0],
	}
}

// SetDefaultSearch sets the search used for input that is not an address.
func (p *Parser) SetDefaultSearch(pfx Prefix) {
	p.defaultSearch = pfx
}

// AddPrefix adds a custom search prefix.
func (p *Parser) AddPrefix(prefix Prefix) {
	p.prefixes = append(p.prefixes, prefix)
}

// Prefixes returns the list of available prefixes (for help display).
func (p *Parser) Prefixes() []Prefix {
	return p.prefixes
}

// Parse parses omnibox input and returns the result. ok is false for empty
// input.
func (p *Parser) Parse(input string) (Result, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Result{}, false
	}

	if strings.HasPrefix(strings.ToLower(input), "gopher://") {
		return ParseURL(input)
	}

	// Search prefixes, e.g. "v2 cats"
	if idx := strings.Index(input, " "); idx > 0 {
		name := strings.ToLower(input[:idx])
		query := strings.TrimSpace(input[idx+1:])
		if query != "" {
			for _, pfx := range p.prefixes {
				for _, n := range pfx.Names {
					if name == n {
						return searchResult(pfx, query), true
					}
				}
			}
		}
	}

	if looksLikeHost(input) {
		return parseShorthand(input)
	}

	return searchResult(p.defaultSearch, input), true
}

func searchResult(pfx Prefix, query string) Result {
	return Result{
		Host:     pfx.Host,
		Port:     pfx.Port,
		Selector: pfx.Selector,
		Kind:     document.Search,
		Query:    query,
		IsSearch: true,
		Provider: pfx.Display,
	}
}

// ParseURL parses a gopher:// URL: gopher://host[:port]/<kind><selector>,
// with an optional %09-separated search query. The selector is taken verbatim
// after percent-decoding, so '?' and '#' stay part of it. A bare host or "/"
// path is the root menu.
func ParseURL(raw string) (Result, bool) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok || !strings.EqualFold(scheme, "gopher") {
		return Result{}, false
	}
	// Only the authority goes through net/url. Everything after the first
	// slash is selector text, where '?' and '#' carry no special meaning.
	authority, path, _ := strings.Cut(rest, "/")
	u, err := url.Parse("gopher://" + authority)
	if err != nil || u.Hostname() == "" {
		return Result{}, false
	}

	r := Result{
		Host: u.Hostname(),
		Port: document.DefaultPort,
		Kind: document.Menu,
	}
	if ps := u.Port(); ps != "" {
		port, err := strconv.Atoi(ps)
		if err != nil || port <= 0 {
			return Result{}, false
		}
		r.Port = port
	}

	path, err = url.PathUnescape(path)
	if err != nil {
		return Result{}, false
	}
	if path == "" {
		return r, true
	}
	r.Kind = document.Kind(path[0])
	r.Selector = path[1:]
	if sel, query, found := strings.Cut(r.Selector, "\t"); found {
		r.Selector = sel
		// Anything after a second tab is a Gopher+ string; drop it.
		query, _, _ = strings.Cut(query, "\t")
		r.Query = query
		r.IsSearch = query != ""
	}
	return r, true
}

// parseShorthand handles host[:port][/selector] typed without a scheme. The
// path is taken verbatim as a menu selector.
func parseShorthand(input string) (Result, bool) {
	hostPort, selector, _ := strings.Cut(input, "/")
	if selector != "" || strings.HasSuffix(input, "/") {
		selector = "/" + selector
	}
	r := Result{Host: hostPort, Port: document.DefaultPort, Kind: document.Menu, Selector: selector}
	if h, ps, err := net.SplitHostPort(hostPort); err == nil {
		port, err := strconv.Atoi(ps)
		if err != nil || port <= 0 {
			return Result{}, false
		}
		r.Host, r.Port = h, port
	}
	return r, true
}

// looksLikeHost checks if input looks like host[:port][/path].
func looksLikeHost(input string) bool {
	if strings.ContainsAny(input, " \t") {
		return false
	}
	host, _, _ := strings.Cut(input, "/")
	host = strings.ToLower(host)
	if strings.HasPrefix(host, "localhost") {
		return true
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.Contains(host, ".") && !strings.HasPrefix(host, ".") && !strings.HasSuffix(host, ".")
}

// FormatURL renders an address as a gopher:// URL. The port is omitted when
// it is the default.
func FormatURL(host string, port int, kind document.Kind, selector string) string {
	u := url.URL{Scheme: "gopher", Host: host}
	if port > 0 && port != document.DefaultPort {
		u.Host = net.JoinHostPort(host, strconv.Itoa(port))
	}
	if kind == 0 {
		kind = document.Menu
	}
	if selector != "" || kind != document.Menu {
		u.Path = "/" + string(rune(kind)) + selector
	}
	return u.String()
}

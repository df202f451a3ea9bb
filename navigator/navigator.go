// Package navigator owns the browsing state: the current page, the selection
// cursor and the back history. It drives the fetcher and the parsers and is
// the only thing a renderer or input layer needs to talk to.
//
// The controller is synchronous. Every operation runs to completion on the
// caller's goroutine, and a controller must not be shared between goroutines.
package navigator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"burrow/document"
	"burrow/fetcher"
	"burrow/html"
	"burrow/logging"
	"burrow/session"
)

// Status messages shown to the user.
const (
	StatusConnecting  = "Connecting..."
	StatusLoading     = "Loading..."
	StatusLoadFailed  = "Failed to load page"
	StatusUnsupported = "Binary files cannot be displayed"
	StatusNoHistory   = "No more history"
)

var (
	ErrLoadFailed         = errors.New("navigator: failed to load page")
	ErrEmptyResponse      = errors.New("navigator: empty response")
	ErrUnsupportedContent = errors.New("navigator: unsupported content type")
	ErrNoHistory          = errors.New("navigator: no more history")
	ErrNoSelection        = errors.New("navigator: nothing selected")
	ErrNoPage             = errors.New("navigator: no page loaded")
	ErrQueryRequired      = errors.New("navigator: search query required")
	ErrSearchCancelled    = errors.New("navigator: search cancelled")
)

// Fetcher retrieves the raw response for one request.
type Fetcher interface {
	Fetch(ctx context.Context, host, selector string, port int) (*fetcher.Result, error)
}

// Direction is a selection step.
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// Option configures a Controller.
type Option func(*Controller)

// WithHistoryDepth bounds the back history. Non-positive values keep the
// default of 50.
func WithHistoryDepth(n int) Option {
	return func(c *Controller) {
		c.history = session.NewHistory(n)
	}
}

// WithLogger sets the logger used for navigation events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithHTMLRendering converts HTML documents to plain text before they are
// split into lines. RawText still holds the original markup.
func WithHTMLRendering(on bool) Option {
	return func(c *Controller) {
		c.renderHTML = on
	}
}

// Controller is the navigation state machine.
type Controller struct {
	fetcher    Fetcher
	logger     zerolog.Logger
	renderHTML bool

	page *document.Page
	kind document.Kind // kind the working address was requested as

	// Working address. It is committed before a fetch and is not rolled back
	// when the fetch fails, so after a failure it names the page that could
	// not be reached while page still holds the previous content.
	host     string
	selector string
	port     int

	selected      int
	history       *session.History
	status        string
	err           error
	loading       bool
	pendingSearch *document.Item
}

// New creates a controller with no page loaded.
func New(f Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher:  f,
		logger:   logging.Logger(),
		selected: -1,
		history:  session.NewHistory(session.DefaultMaxDepth),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Navigate loads host/selector/port, parsing the response as a document when
// expected is Text or Html and as a menu otherwise. The current address is
// pushed onto the history first.
func (c *Controller) Navigate(ctx context.Context, host, selector string, port int, expected document.Kind) error {
	if c.host != "" {
		c.history.Push(session.Entry{Host: c.host, Selector: c.selector, Port: c.port})
	}
	return c.load(ctx, host, selector, port, expected, StatusConnecting)
}

// Back re-fetches the most recent history entry. The entry is consumed and
// the response is always parsed as a menu. On an empty history only the
// status changes and ErrNoHistory is returned.
func (c *Controller) Back(ctx context.Context) error {
	e, ok := c.history.Pop()
	if !ok {
		c.status = StatusNoHistory
		return ErrNoHistory
	}
	return c.load(ctx, e.Host, e.Selector, e.Port, document.Menu, StatusLoading)
}

// Reload re-fetches the working address without touching the history.
func (c *Controller) Reload(ctx context.Context) error {
	if c.host == "" {
		return ErrNoPage
	}
	return c.load(ctx, c.host, c.selector, c.port, c.kind, StatusLoading)
}

func (c *Controller) load(ctx context.Context, host, selector string, port int, expected document.Kind, status string) error {
	if port <= 0 {
		port = document.DefaultPort
	}
	c.host, c.selector, c.port, c.kind = host, selector, port, expected
	c.status = status
	c.err = nil

	c.loading = true
	res, err := c.fetcher.Fetch(ctx, host, selector, port)
	c.loading = false

	if err == nil && (res == nil || len(res.Body) == 0) {
		err = ErrEmptyResponse
	}
	if err != nil {
		c.status = StatusLoadFailed
		c.err = fmt.Errorf("%w: %s:%d%s: %w", ErrLoadFailed, host, port, selector, err)
		c.logger.Warn().Err(err).
			Str("host", host).Int("port", port).Str("selector", selector).
			Msg("navigation failed")
		return c.err
	}

	body := res.Body
	if expected == document.Html && c.renderHTML {
		text, err := html.ToText(body)
		if err != nil {
			c.logger.Debug().Err(err).Msg("html conversion failed, showing markup")
		} else {
			body = text
		}
	}

	page := document.Parse(body, expected)
	if !page.IsMenu {
		page.RawText = string(res.Body)
	}
	page.Host, page.Selector, page.Port = host, selector, port
	page.Truncated = res.Truncated

	c.page = page
	c.selected = page.FirstSelectable()
	c.status = ""
	c.logger.Debug().
		Str("host", host).Int("port", port).Str("selector", selector).
		Int("items", len(page.Items)).Bool("menu", page.IsMenu).
		Msg("page loaded")
	return nil
}

// BuildSearchSelector appends query to the item's selector, separated by a
// tab. The query is sent as-is.
func BuildSearchSelector(item document.Item, query string) string {
	return item.Selector + "\t" + query
}

// InitiateSearch records item as the pending search and returns the function
// the input layer calls once it has collected a query. An empty query
// cancels the search without navigating.
func (c *Controller) InitiateSearch(item document.Item) func(ctx context.Context, query string) error {
	pending := item
	c.pendingSearch = &pending
	return func(ctx context.Context, query string) error {
		c.pendingSearch = nil
		if query == "" {
			return ErrSearchCancelled
		}
		return c.Navigate(ctx, item.Host, BuildSearchSelector(item, query), item.Port, document.Menu)
	}
}

// Search runs a query against a search item.
func (c *Controller) Search(ctx context.Context, item document.Item, query string) error {
	return c.InitiateSearch(item)(ctx, query)
}

// PendingSearch returns the search item awaiting a query, if any.
func (c *Controller) PendingSearch() (document.Item, bool) {
	if c.pendingSearch == nil {
		return document.Item{}, false
	}
	return *c.pendingSearch, true
}

// FollowSelected acts on the selected item according to its kind. Search
// items return ErrQueryRequired and become the pending search; binary kinds
// return ErrUnsupportedContent without navigating.
func (c *Controller) FollowSelected(ctx context.Context) error {
	item, ok := c.Selected()
	if !ok {
		return ErrNoSelection
	}

	switch item.Kind.Action() {
	case document.FollowText:
		return c.Navigate(ctx, item.Host, item.Selector, item.Port, item.Kind)
	case document.FollowSearch:
		c.InitiateSearch(item)
		return ErrQueryRequired
	case document.FollowUnsupported:
		c.status = StatusUnsupported
		c.err = fmt.Errorf("%w: %s", ErrUnsupportedContent, item.Kind)
		return c.err
	default:
		return c.Navigate(ctx, item.Host, item.Selector, item.Port, document.Menu)
	}
}

// MoveSelection steps the cursor to the next selectable item in dir, wrapping
// around the page. It does nothing when no other selectable item exists.
func (c *Controller) MoveSelection(dir Direction) {
	if c.page == nil || len(c.page.Items) == 0 {
		return
	}
	if dir != Next && dir != Prev {
		return
	}
	items := c.page.Items
	n := len(items)
	from := c.selected

	for i := from + int(dir); i >= 0 && i < n; i += int(dir) {
		if items[i].Selectable() {
			c.selected = i
			return
		}
	}

	if dir == Next {
		for i := 0; i < from; i++ {
			if items[i].Selectable() {
				c.selected = i
				return
			}
		}
		return
	}
	for i := n - 1; i > from; i-- {
		if items[i].Selectable() {
			c.selected = i
			return
		}
	}
}

// Select moves the cursor to index if that item is selectable.
func (c *Controller) Select(index int) bool {
	if c.page == nil || index < 0 || index >= len(c.page.Items) {
		return false
	}
	if !c.page.Items[index].Selectable() {
		return false
	}
	c.selected = index
	return true
}

// Selected returns the selected item.
func (c *Controller) Selected() (document.Item, bool) {
	if c.page == nil || c.selected < 0 || c.selected >= len(c.page.Items) {
		return document.Item{}, false
	}
	item := c.page.Items[c.selected]
	if !item.Selectable() {
		return document.Item{}, false
	}
	return item, true
}

// SelectedIndex returns the cursor position, -1 when nothing is selected.
func (c *Controller) SelectedIndex() int {
	return c.selected
}

// Page returns the current page, nil before the first successful load.
func (c *Controller) Page() *document.Page {
	return c.page
}

// Status returns the last status message.
func (c *Controller) Status() string {
	return c.status
}

// Err returns the error from the last operation that reported one.
func (c *Controller) Err() error {
	return c.err
}

// History returns the back history, oldest first.
func (c *Controller) History() []session.Entry {
	return c.history.Entries()
}

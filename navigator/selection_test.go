package navigator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"burrow/document"
)

// load puts the given menu lines in front of the controller.
func load(t *testing.T, body string) (*Controller, *fakeFetcher) {
	t.Helper()
	f := newFakeFetcher()
	f.add("h", "", body)
	c := New(f)
	require.NoError(t, c.Navigate(context.Background(), "h", "", 70, document.Menu))
	return c, f
}

func TestMoveSelectionSkipsAndWrapsForward(t *testing.T) {
	c, _ := load(t, "iinfo\r\n1A\t/a\th\t70\r\niinfo\r\n1B\t/b\th\t70\r\n")
	require.Equal(t, 1, c.SelectedIndex())

	c.MoveSelection(Next)
	assert.Equal(t, 3, c.SelectedIndex())

	c.MoveSelection(Next)
	assert.Equal(t, 1, c.SelectedIndex())
}

func TestMoveSelectionWrapsBackward(t *testing.T) {
	c, _ := load(t, "1A\t/a\th\t70\r\niinfo\r\n1B\t/b\th\t70\r\niinfo\r\n")
	require.Equal(t, 0, c.SelectedIndex())

	c.MoveSelection(Prev)
	assert.Equal(t, 2, c.SelectedIndex())

	c.MoveSelection(Prev)
	assert.Equal(t, 0, c.SelectedIndex())
}

func TestMoveSelectionSingleSelectableIsNoop(t *testing.T) {
	c, _ := load(t, "iinfo\r\n1A\t/a\th\t70\r\niinfo\r\n")

	c.MoveSelection(Next)
	assert.Equal(t, 1, c.SelectedIndex())
	c.MoveSelection(Prev)
	assert.Equal(t, 1, c.SelectedIndex())
}

func TestMoveSelectionNothingSelectable(t *testing.T) {
	c, _ := load(t, "iinfo\r\n3error\r\niinfo\r\n")
	require.Equal(t, -1, c.SelectedIndex())

	c.MoveSelection(Next)
	assert.Equal(t, -1, c.SelectedIndex())
	c.MoveSelection(Prev)
	assert.Equal(t, -1, c.SelectedIndex())
}

func TestMoveSelectionNoPage(t *testing.T) {
	c := New(newFakeFetcher())
	c.MoveSelection(Next)
	assert.Equal(t, -1, c.SelectedIndex())
}

func TestMoveSelectionIgnoresBadDirection(t *testing.T) {
	c, _ := load(t, "1A\t/a\th\t70\r\n1B\t/b\th\t70\r\n")
	c.MoveSelection(Direction(2))
	assert.Equal(t, 0, c.SelectedIndex())
}

func TestSelect(t *testing.T) {
	c, _ := load(t, "iinfo\r\n1A\t/a\th\t70\r\n1B\t/b\th\t70\r\n")

	assert.True(t, c.Select(2))
	assert.Equal(t, 2, c.SelectedIndex())

	assert.False(t, c.Select(0), "info lines are not selectable")
	assert.False(t, c.Select(7))
	assert.False(t, c.Select(-1))
	assert.Equal(t, 2, c.SelectedIndex())
}

func TestSelectionResetOnLoad(t *testing.T) {
	c, f := load(t, "1A\t/a\th\t70\r\n1B\t/b\th\t70\r\n")
	f.add("h", "/b", "iheader\r\n0Doc\t/d\th\t70\r\n")
	c.MoveSelection(Next)

	require.NoError(t, c.FollowSelected(context.Background()))
	assert.Equal(t, 1, c.SelectedIndex())
}

func TestFollowSelectedMenuAndText(t *testing.T) {
	c, f := newController(t)
	ctx := context.Background()
	require.NoError(t, c.Navigate(ctx, "example.com", "", 70, document.Menu))

	require.NoError(t, c.FollowSelected(ctx))
	assert.Equal(t, request{"example.com", "/docs", 70}, f.requests[1])
	assert.True(t, c.Snapshot().IsMenu)

	require.NoError(t, c.Back(ctx))
	require.True(t, c.Select(2))
	require.NoError(t, c.FollowSelected(ctx))
	snap := c.Snapshot()
	assert.Equal(t, "/readme.txt", snap.Selector)
	assert.False(t, snap.IsMenu)
}

func TestFollowSelectedBinaryIsUnsupported(t *testing.T) {
	c, f := newController(t)
	ctx := context.Background()
	require.NoError(t, c.Navigate(ctx, "example.com", "", 70, document.Menu))
	require.True(t, c.Select(4))

	err := c.FollowSelected(ctx)
	assert.True(t, errors.Is(err, ErrUnsupportedContent))
	assert.Equal(t, StatusUnsupported, c.Status())
	assert.Len(t, f.requests, 1, "no navigation for binary items")
	assert.Equal(t, "", c.Snapshot().Selector)
}

func TestFollowSelectedSearchNeedsQuery(t *testing.T) {
	c, f := newController(t)
	ctx := context.Background()
	f.add("example.com", "/search\tgopher", "1Result\t/r\texample.com\t70\r\n")
	require.NoError(t, c.Navigate(ctx, "example.com", "", 70, document.Menu))
	require.True(t, c.Select(3))

	err := c.FollowSelected(ctx)
	assert.True(t, errors.Is(err, ErrQueryRequired))
	pending, ok := c.PendingSearch()
	require.True(t, ok)
	assert.Equal(t, "/search", pending.Selector)
	assert.Len(t, f.requests, 1)

	submit := c.InitiateSearch(pending)
	require.NoError(t, submit(ctx, "gopher"))
	assert.Equal(t, request{"example.com", "/search\tgopher", 70}, f.requests[1])
	_, ok = c.PendingSearch()
	assert.False(t, ok)
	assert.Equal(t, "Result", c.Snapshot().Items[0].Display)
}

func TestFollowSelectedUnknownKindFallsBackToMenu(t *testing.T) {
	c, f := load(t, "XOdd\t/odd\th\t70\r\n")
	f.add("h", "/odd", "1Inside\t/in\th\t70\r\n")

	require.NoError(t, c.FollowSelected(context.Background()))
	assert.True(t, c.Snapshot().IsMenu)
	assert.Equal(t, "/odd", c.Snapshot().Selector)
}

func TestFollowSelectedNothingSelected(t *testing.T) {
	c, _ := load(t, "iinfo only\r\n")
	assert.True(t, errors.Is(c.FollowSelected(context.Background()), ErrNoSelection))
}

func TestBuildSearchSelector(t *testing.T) {
	assert.Equal(t, "/search\tterm", BuildSearchSelector(document.Item{Selector: "/search"}, "term"))
	assert.Equal(t, "\tterm", BuildSearchSelector(document.Item{}, "term"))
	assert.Equal(t, "/s\ta\tb\nc", BuildSearchSelector(document.Item{Selector: "/s"}, "a\tb\nc"), "query is not escaped")
}

func TestSearchEmptyQueryCancels(t *testing.T) {
	c, f := newController(t)
	ctx := context.Background()
	require.NoError(t, c.Navigate(ctx, "example.com", "", 70, document.Menu))

	item := document.Item{Kind: document.Search, Selector: "/search", Host: "example.com", Port: 70}
	err := c.Search(ctx, item, "")
	assert.True(t, errors.Is(err, ErrSearchCancelled))
	assert.Len(t, f.requests, 1)
	assert.Equal(t, 0, c.Snapshot().HistoryLen)
}

func TestSearchNavigatesAsMenu(t *testing.T) {
	c, f := newController(t)
	ctx := context.Background()
	f.add("example.com", "/search\tfoo bar", "0Hit\t/hit.txt\texample.com\t70\r\n")
	require.NoError(t, c.Navigate(ctx, "example.com", "", 70, document.Menu))

	item := document.Item{Kind: document.Search, Selector: "/search", Host: "example.com", Port: 70}
	require.NoError(t, c.Search(ctx, item, "foo bar"))

	snap := c.Snapshot()
	assert.True(t, snap.IsMenu)
	assert.Equal(t, "/search\tfoo bar", snap.Selector)
	assert.Equal(t, 1, snap.HistoryLen)
}

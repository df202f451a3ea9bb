package navigator

import "burrow/document"

// Snapshot is a read-only copy of the controller state for renderers.
type Snapshot struct {
	Host     string
	Selector string
	Port     int
	Kind     document.Kind // kind the address was requested as

	Items     []document.Item
	RawText   string
	IsMenu    bool
	Truncated bool
	Loaded    bool

	Selected   int
	Status     string
	Err        error
	Loading    bool
	HistoryLen int

	stale bool
}

// Stale reports that the address no longer matches the content, which is
// the case after a failed navigation.
func (s Snapshot) Stale() bool {
	return s.stale
}

// Snapshot captures the current state. Items are copied.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Host:       c.host,
		Selector:   c.selector,
		Port:       c.port,
		Kind:       c.kind,
		Selected:   c.selected,
		Status:     c.status,
		Err:        c.err,
		Loading:    c.loading,
		HistoryLen: c.history.Len(),
	}
	if c.page == nil {
		s.stale = c.host != ""
		return s
	}

	s.Loaded = true
	s.Items = make([]document.Item, len(c.page.Items))
	copy(s.Items, c.page.Items)
	s.RawText = c.page.RawText
	s.IsMenu = c.page.IsMenu
	s.Truncated = c.page.Truncated
	s.stale = c.page.Host != c.host || c.page.Selector != c.selector || c.page.Port != c.port
	return s
}

// Package crawl walks Gopher menus breadth-first and records every item it
// finds in a SQLite index.
package crawl

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"burrow/document"
	"burrow/fetcher"
)

// ErrEmptyResponse is recorded for menus that returned no bytes.
var ErrEmptyResponse = errors.New("crawl: empty response")

// Defaults for Options fields left at zero.
const (
	DefaultMaxDepth = 2
	DefaultMaxPages = 100
)

// Fetcher retrieves a raw response for an address.
type Fetcher interface {
	Fetch(ctx context.Context, host, selector string, port int) (*fetcher.Result, error)
}

// Target is a menu address.
type Target struct {
	Host     string
	Selector string
	Port     int
}

func (t Target) String() string {
	return t.Host + ":" + strconv.Itoa(t.Port) + t.Selector
}

// Options configures a crawl.
type Options struct {
	MaxDepth      int           // links followed from a seed; 0 uses DefaultMaxDepth
	MaxPages      int           // fetch budget, failures included
	Delay         time.Duration // pause between fetches
	AllowExternal bool          // follow menus on hosts other than the seeds'
	Logger        zerolog.Logger
}

// Summary reports what a run did.
type Summary struct {
	Pages    int
	Failed   int
	Items    int
	Skipped  int // menus not followed because they were off the seed hosts
	Duration time.Duration
}

type job struct {
	target Target
	depth  int
}

// Crawler fetches menus one at a time.
type Crawler struct {
	fetcher Fetcher
	store   *Store
	opts    Options
}

// New creates a crawler writing to store.
func New(f Fetcher, store *Store, opts Options) *Crawler {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	return &Crawler{fetcher: f, store: store, opts: opts}
}

// Run crawls from seeds until the queue is empty, the page budget is spent
// or ctx is done. The summary is valid even when an error is returned.
func (c *Crawler) Run(ctx context.Context, seeds ...Target) (Summary, error) {
	start := time.Now()
	var sum Summary

	seedHosts := make(map[string]bool, len(seeds))
	visited := make(map[string]bool)
	var queue []job
	for _, s := range seeds {
		if s.Port <= 0 {
			s.Port = document.DefaultPort
		}
		seedHosts[s.Host] = true
		queue = append(queue, job{target: s})
	}

	fetched := 0
	for len(queue) > 0 && fetched < c.opts.MaxPages {
		j := queue[0]
		queue = queue[1:]

		key := j.target.String()
		if visited[key] {
			continue
		}
		visited[key] = true

		if fetched > 0 && c.opts.Delay > 0 {
			select {
			case <-ctx.Done():
				sum.Duration = time.Since(start)
				return sum, ctx.Err()
			case <-time.After(c.opts.Delay):
			}
		}
		if err := ctx.Err(); err != nil {
			sum.Duration = time.Since(start)
			return sum, err
		}
		fetched++

		items, err := c.visit(ctx, j)
		if err != nil {
			sum.Duration = time.Since(start)
			return sum, err
		}
		if items == nil {
			sum.Failed++
			continue
		}
		sum.Pages++
		sum.Items += len(items)

		if j.depth >= c.opts.MaxDepth {
			continue
		}
		for _, item := range items {
			if item.Kind != document.Menu {
				continue
			}
			next := Target{Host: item.Host, Selector: item.Selector, Port: item.Port}
			if !c.opts.AllowExternal && !seedHosts[next.Host] {
				sum.Skipped++
				continue
			}
			if !visited[next.String()] {
				queue = append(queue, job{target: next, depth: j.depth + 1})
			}
		}
	}

	sum.Duration = time.Since(start)
	c.opts.Logger.Info().
		Int("pages", sum.Pages).Int("failed", sum.Failed).Int("items", sum.Items).
		Dur("took", sum.Duration).
		Msg("crawl finished")
	return sum, nil
}

// visit fetches one menu and records it. A nil item slice means the fetch
// failed; the returned error is reserved for the index.
func (c *Crawler) visit(ctx context.Context, j job) ([]document.Item, error) {
	log := c.opts.Logger.With().Str("target", j.target.String()).Int("depth", j.depth).Logger()
	rec := PageRecord{Target: j.target, Depth: j.depth, Status: StatusOK}

	res, err := c.fetcher.Fetch(ctx, j.target.Host, j.target.Selector, j.target.Port)
	if err == nil && (res == nil || len(res.Body) == 0) {
		err = ErrEmptyResponse
	}
	if err != nil {
		log.Warn().Err(err).Msg("fetch failed")
		rec.Status = StatusFailed
		rec.Error = err.Error()
		if err := c.store.SavePage(rec, nil); err != nil {
			return nil, err
		}
		return nil, nil
	}

	page := document.ParseMenu(res.Body)
	rec.Truncated = res.Truncated
	if err := c.store.SavePage(rec, page.Items); err != nil {
		return nil, err
	}
	log.Debug().Int("items", len(page.Items)).Bool("truncated", res.Truncated).Msg("menu indexed")

	if page.Items == nil {
		return []document.Item{}, nil
	}
	return page.Items, nil
}

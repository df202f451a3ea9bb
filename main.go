// Burrow is a Gopher client for the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"burrow/config"
	"burrow/document"
	"burrow/favourites"
	"burrow/fetcher"
	"burrow/logging"
	"burrow/navigator"
	"burrow/omnibox"
	"burrow/render"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	logFile *os.File
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:     "burrow",
		Short:   "A Gopher client for the terminal",
		Long:    "Burrow fetches Gopher menus and documents and prints them as text.",
		Version: version,

		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/burrow/config.toml)")

	root.AddCommand(a.getCmd())
	root.AddCommand(a.bookmarksCmd())
	root.AddCommand(initConfigCmd())
	return root
}

func (a *app) setup() error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.LoadFile(a.cfgFile)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	var out io.Writer = os.Stderr
	if a.cfg.Log.File != "" {
		f, err := os.OpenFile(a.cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		a.logFile = f
		out = f
	}
	a.logger = logging.Setup(a.cfg.Log.Level, out)
	return nil
}

func (a *app) close() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

func (a *app) newNavigator(renderHTML bool) *navigator.Controller {
	client := fetcher.New(fetcher.Options{
		TimeoutSeconds:   a.cfg.Fetcher.TimeoutSeconds,
		MaxResponseBytes: a.cfg.Fetcher.MaxResponseBytes,
		Logger:           a.logger,
	})
	return navigator.New(client,
		navigator.WithHistoryDepth(a.cfg.History.MaxDepth),
		navigator.WithLogger(a.logger),
		navigator.WithHTMLRendering(renderHTML || a.cfg.Display.HTML()),
	)
}

func (a *app) getCmd() *cobra.Command {
	var (
		query    string
		follow   []int
		bookmark int
		width    int
		raw      bool
		htmlOn   bool
		noHeader bool
	)

	cmd := &cobra.Command{
		Use:   "get [address]",
		Short: "Fetch a Gopher page and print it",
		Long: `Fetch a page and print it. The address may be
  gopher://host[:port]/<type><selector>    a gopher URL (%09 separates a search query)
  host[:port][/selector]                   a menu on host
  v2 <terms> | gp <terms>                  a Veronica-2 or Gopherpedia search
  anything else                            a Veronica-2 search
With no address the configured start page is used.

--follow selects and follows items by the index printed beside them, in order.
--query answers the first search met along the way.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			target, err := a.resolve(args, bookmark)
			if err != nil {
				return err
			}

			nav := a.newNavigator(htmlOn)
			q := &query
			if err := openTarget(ctx, nav, target, q); err != nil {
				return err
			}
			for _, idx := range follow {
				if err := followIndex(ctx, nav, idx, q); err != nil {
					return err
				}
			}

			snap := nav.Snapshot()
			if raw && !snap.IsMenu {
				_, err := io.WriteString(cmd.OutOrStdout(), snap.RawText)
				return err
			}

			if width <= 0 {
				width = a.cfg.Display.Width
			}
			p := render.NewPrinter(cmd.OutOrStdout(), render.Options{
				Width:      width,
				TypePrefix: a.cfg.Display.TypePrefix(),
				Numbers:    true,
				Header:     !noHeader,
			})
			return p.Print(snap)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "search terms for the first search item reached")
	cmd.Flags().IntSliceVarP(&follow, "follow", "f", nil, "item indexes to follow after loading (repeatable)")
	cmd.Flags().IntVarP(&bookmark, "bookmark", "b", 0, "open bookmark number n (see 'burrow bookmarks')")
	cmd.Flags().IntVarP(&width, "width", "w", 0, "output width (default: config, then terminal)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print documents exactly as received")
	cmd.Flags().BoolVar(&htmlOn, "html", false, "convert HTML documents to text")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "omit the address line")
	return cmd
}

// resolve picks the first address to load from a bookmark, an argument or
// the configured start page.
func (a *app) resolve(args []string, bookmark int) (omnibox.Result, error) {
	switch {
	case bookmark > 0:
		store, err := favourites.Load()
		if err != nil {
			return omnibox.Result{}, err
		}
		if bookmark > store.Len() {
			return omnibox.Result{}, fmt.Errorf("no bookmark %d (have %d)", bookmark, store.Len())
		}
		return store.Favourites[bookmark-1].Target()
	case len(args) == 0:
		s := a.cfg.Start
		return omnibox.Result{Host: s.Host, Selector: s.Selector, Port: s.Port, Kind: document.Menu}, nil
	}

	r, ok := omnibox.NewParser().Parse(args[0])
	if !ok {
		return omnibox.Result{}, fmt.Errorf("cannot understand address %q", args[0])
	}
	return r, nil
}

func openTarget(ctx context.Context, nav *navigator.Controller, target omnibox.Result, query *string) error {
	if target.Kind != document.Search {
		return nav.Navigate(ctx, target.Host, target.Selector, target.Port, target.Kind)
	}
	q := target.Query
	if q == "" {
		q = takeQuery(query)
	}
	if q == "" {
		return fmt.Errorf("%s is a search, pass --query", omnibox.FormatURL(target.Host, target.Port, target.Kind, target.Selector))
	}
	return nav.Search(ctx, target.Item(), q)
}

func followIndex(ctx context.Context, nav *navigator.Controller, idx int, query *string) error {
	if !nav.Select(idx) {
		return fmt.Errorf("item %d cannot be followed on this page", idx)
	}
	err := nav.FollowSelected(ctx)
	if !errors.Is(err, navigator.ErrQueryRequired) {
		return err
	}
	item, _ := nav.PendingSearch()
	q := takeQuery(query)
	if q == "" {
		return fmt.Errorf("item %d (%s) is a search, pass --query", idx, item.Display)
	}
	return nav.Search(ctx, item, q)
}

// takeQuery hands out the --query value once.
func takeQuery(query *string) string {
	q := *query
	*query = ""
	return q
}

func (a *app) bookmarksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmarks",
		Short: "List saved bookmarks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := favourites.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, f := range store.Favourites {
				fmt.Fprintf(out, "%3d  %-24s %s\n", i+1, f.Title, f.URL)
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <address> [title]",
		Short: "Bookmark an address",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, ok := omnibox.NewParser().Parse(args[0])
			if !ok {
				return fmt.Errorf("cannot understand address %q", args[0])
			}
			selector := r.Selector
			if r.IsSearch {
				selector = navigator.BuildSearchSelector(r.Item(), r.Query)
			}
			title := r.Host + r.Selector
			if len(args) == 2 {
				title = args[1]
			}

			store, err := favourites.Load()
			if err != nil {
				return err
			}
			if !store.Add(omnibox.FormatURL(r.Host, r.Port, r.Kind, selector), title) {
				fmt.Fprintln(cmd.OutOrStdout(), "already bookmarked")
				return nil
			}
			return store.Save()
		},
	}

	remove := &cobra.Command{
		Use:   "remove <n>",
		Short: "Delete bookmark number n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("bookmark number: %w", err)
			}
			store, err := favourites.Load()
			if err != nil {
				return err
			}
			if !store.Remove(n - 1) {
				return fmt.Errorf("no bookmark %d (have %d)", n, store.Len())
			}
			return store.Save()
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

func initConfigCmd() *cobra.Command {
	var write, force bool

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Print the default configuration",
		Args:  cobra.NoArgs,
		// A broken user config must not stop us replacing it.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			if !write {
				_, err := io.WriteString(cmd.OutOrStdout(), config.DefaultTOML())
				return err
			}

			path, err := config.ConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists, use --force to overwrite", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(config.DefaultTOML()), 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "write to ~/.config/burrow/config.toml instead of stdout")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

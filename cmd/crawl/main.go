// Command crawl builds a searchable index of Gopher menus.
// It walks menus breadth-first from seed addresses and records every item
// in a SQLite database.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"burrow/config"
	"burrow/crawl"
	"burrow/fetcher"
	"burrow/logging"
	"burrow/omnibox"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dbPath   string
		cfgFile  string
		depth    int
		maxPages int
		delay    time.Duration
		external bool
	)

	root := &cobra.Command{
		Use:   "crawl [seed...]",
		Short: "Index Gopher menus into SQLite",
		Long: `Crawl fetches menus breadth-first from the seed addresses (gopher URLs or
host[:port][/selector]) and stores every item in the database. Without
seeds the configured start page is used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgFile)
			if err != nil {
				return err
			}
			logger := logging.Setup(cfg.Log.Level, os.Stderr)

			seeds, err := parseSeeds(cfg, args)
			if err != nil {
				return err
			}

			store, err := crawl.Open(dbPath)
			if err != nil {
				return fmt.Errorf("opening %s: %w", dbPath, err)
			}
			defer store.Close()

			client := fetcher.New(fetcher.Options{
				TimeoutSeconds:   cfg.Fetcher.TimeoutSeconds,
				MaxResponseBytes: cfg.Fetcher.MaxResponseBytes,
				Logger:           logger,
			})
			crawler := crawl.New(client, store, crawl.Options{
				MaxDepth:      depth,
				MaxPages:      maxPages,
				Delay:         delay,
				AllowExternal: external,
				Logger:        logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sum, err := crawler.Run(ctx, seeds...)
			fmt.Fprintf(cmd.OutOrStdout(), "Crawled %d menus (%d failed, %d items, %d off-host links skipped) in %s\n",
				sum.Pages, sum.Failed, sum.Items, sum.Skipped, sum.Duration.Round(time.Millisecond))
			return err
		},
	}

	root.PersistentFlags().StringVar(&dbPath, "db", "gopher-index.db", "SQLite database path")
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/burrow/config.toml)")
	root.Flags().IntVar(&depth, "depth", crawl.DefaultMaxDepth, "maximum links followed from a seed")
	root.Flags().IntVar(&maxPages, "max", crawl.DefaultMaxPages, "maximum menus to fetch")
	root.Flags().DurationVar(&delay, "delay", time.Second, "pause between requests")
	root.Flags().BoolVar(&external, "external", false, "follow menus on hosts other than the seeds'")

	root.AddCommand(statsCmd(&dbPath))
	root.AddCommand(searchCmd(&dbPath))
	return root
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func parseSeeds(cfg *config.Config, args []string) ([]crawl.Target, error) {
	if len(args) == 0 {
		s := cfg.Start
		return []crawl.Target{{Host: s.Host, Selector: s.Selector, Port: s.Port}}, nil
	}

	p := omnibox.NewParser()
	seeds := make([]crawl.Target, 0, len(args))
	for _, arg := range args {
		r, ok := p.Parse(arg)
		if !ok || r.IsSearch {
			return nil, fmt.Errorf("seed %q is not a menu address", arg)
		}
		seeds = append(seeds, crawl.Target{Host: r.Host, Selector: r.Selector, Port: r.Port})
	}
	return seeds, nil
}

func statsCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show index statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := crawl.Open(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			st, err := store.Stats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Menus:  %d (%d failed)\n", st.Pages, st.Failed)
			fmt.Fprintf(out, "Hosts:  %d\n", st.Hosts)
			fmt.Fprintf(out, "Items:  %d\n", st.Items)
			return nil
		},
	}
}

func searchCmd(dbPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Find indexed items by display text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := crawl.Open(*dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			found, err := store.Search(args[0], limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, rec := range found {
				fmt.Fprintf(out, "%s %s\n    %s\n", rec.Kind.Prefix(), rec.Display,
					omnibox.FormatURL(rec.Host, rec.Port, rec.Kind, rec.Selector))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum results")
	return cmd
}

// fredpanel - FRED client with point-in-time panel construction.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fredpanel/fredpanel/api"
	"github.com/fredpanel/fredpanel/internal/config"
	"github.com/fredpanel/fredpanel/internal/fred"
	"github.com/fredpanel/fredpanel/pkg/dates"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fredpanel",
	Short: "fredpanel - FRED client with point-in-time panels",
	Long: `fredpanel is a client for FRED (Federal Reserve Economic Data).
It searches series metadata, retrieves time series, and reconstructs what
was known about a series as of historical observation dates, respecting
data revisions.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().Bool("json", false, "print results as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(panelCmd)
	rootCmd.AddCommand(releasesCmd)
	rootCmd.AddCommand(vintagesCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// newClient builds a FRED client from the loaded config.
func newClient() (*fred.Client, error) {
	if cfg.FRED.APIKey == "" {
		return nil, errors.New("FRED API key not set (use FRED_API_KEY or fred.api_key in config)")
	}
	opts := []fred.Option{}
	if cfg.FRED.BaseURL != "" {
		opts = append(opts, fred.WithBaseURL(cfg.FRED.BaseURL))
	}
	if cfg.FRED.FeedURL != "" {
		opts = append(opts, fred.WithFeedURL(cfg.FRED.FeedURL))
	}
	return fred.New(cfg.FRED.APIKey, opts...), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fredpanel %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Search Command ---

var searchCmd = &cobra.Command{
	Use:   "search [keywords...]",
	Short: "Search FRED series metadata by keywords",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		result, err := client.SearchSeries(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(result)
		}

		fmt.Printf("%-20s %-10s %-12s %s\n", "SERIES", "FREQ", "POPULARITY", "TITLE")
		for _, s := range result.Series {
			fmt.Printf("%-20s %-10s %-12d %s\n", s.ID, s.FrequencyShort, s.Popularity, s.Title)
		}
		if count, ok := result.Meta["count"]; ok {
			fmt.Printf("\n%v series matched\n", count)
		}
		return nil
	},
}

// --- Series Command ---

var seriesCmd = &cobra.Command{
	Use:   "series [series-id]",
	Short: "Retrieve a time series (latest vintage)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		start, end, err := rangeFlags(cmd)
		if err != nil {
			return err
		}

		points, err := client.GetSeries(cmd.Context(), args[0], start, end)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(points)
		}

		for _, p := range points {
			fmt.Printf("%s  %g\n", dates.Format(p.Date), p.Value)
		}
		return nil
	},
}

func init() {
	seriesCmd.Flags().String("from", "", "start date (YYYY-MM-DD, default one year ago)")
	seriesCmd.Flags().String("to", "", "end date (YYYY-MM-DD, default today)")
}

func rangeFlags(cmd *cobra.Command) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	start := now.AddDate(-1, 0, 0)
	end := now

	var err error
	if from, _ := cmd.Flags().GetString("from"); from != "" {
		if start, err = dates.Parse(from); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if to, _ := cmd.Flags().GetString("to"); to != "" {
		if end, err = dates.Parse(to); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

// --- Panel Command ---

var panelCmd = &cobra.Command{
	Use:   "panel [series-id...]",
	Short: "Build point-in-time panels from revision history",
	Long: `Build a point-in-time panel: for each observation date, the most
recent values that were officially published as of that date, ranked by
recency. Observation dates are given explicitly with --dates or generated
as month-ends (or quarter-ends) between --from and --to.

With multiple series IDs the panels are fetched concurrently; each
individual fetch remains a sequential paginated request chain.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		obsDates, err := observationDateFlags(cmd)
		if err != nil {
			return err
		}

		window, _ := cmd.Flags().GetInt("window")

		panels := make(map[string]*fred.Panel, len(args))
		var mu sync.Mutex

		g, gctx := errgroup.WithContext(cmd.Context())
		for _, id := range args {
			id := id
			g.Go(func() error {
				panel, err := client.GetPanel(gctx, id, obsDates, window)
				if err != nil {
					return err
				}
				mu.Lock()
				panels[id] = panel
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(panels)
		}

		ids := make([]string, 0, len(panels))
		for id := range panels {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Printf("== %s ==\n", id)
			printPanel(panels[id])
		}
		return nil
	},
}

func init() {
	panelCmd.Flags().StringSlice("dates", nil, "explicit observation dates (YYYY-MM-DD)")
	panelCmd.Flags().String("from", "", "start of the observation-date grid (YYYY-MM-DD)")
	panelCmd.Flags().String("to", "", "end of the observation-date grid (YYYY-MM-DD)")
	panelCmd.Flags().String("freq", "month", "grid frequency: month or quarter")
	panelCmd.Flags().Int("window", fred.DefaultWindow, "most recent value dates kept per observation date (0 keeps all)")
}

func observationDateFlags(cmd *cobra.Command) ([]time.Time, error) {
	if explicit, _ := cmd.Flags().GetStringSlice("dates"); len(explicit) > 0 {
		return dates.ParseAll(explicit)
	}

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	if from == "" || to == "" {
		return nil, errors.New("provide --dates or both --from and --to")
	}
	start, err := dates.Parse(from)
	if err != nil {
		return nil, err
	}
	end, err := dates.Parse(to)
	if err != nil {
		return nil, err
	}

	freq, _ := cmd.Flags().GetString("freq")
	switch freq {
	case "month":
		return dates.MonthEnds(start, end), nil
	case "quarter":
		return dates.QuarterEnds(start, end), nil
	default:
		return nil, fmt.Errorf("unknown freq %q (use month or quarter)", freq)
	}
}

func printPanel(p *fred.Panel) {
	fmt.Printf("%-14s %-6s %-14s %s\n", "AS OF", "BACK", "VALUE DATE", "VALUE")
	for _, row := range p.Rows {
		fmt.Printf("%-14s %-6d %-14s %s\n",
			dates.Format(row.ObservationDate), row.PeriodsBack,
			dates.Format(row.ValueDate), row.Value)
	}
}

// --- Releases Command ---

var releasesCmd = &cobra.Command{
	Use:   "releases",
	Short: "List FRED data releases",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		set, err := client.Releases(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(set)
		}

		for _, r := range set.Releases {
			fmt.Printf("%5d  %s\n", r.ID, r.Name)
		}
		return nil
	},
}

// --- Vintages Command ---

var vintagesCmd = &cobra.Command{
	Use:   "vintages [series-id]",
	Short: "List the vintage (revision) dates of a series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		vintages, err := client.VintageDates(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(vintages)
		}

		for _, v := range vintages {
			fmt.Println(dates.Format(v))
		}
		return nil
	},
}

// --- Feed Command ---

var feedCmd = &cobra.Command{
	Use:   "feed [series-id]",
	Short: "Read the RSS release feed of a series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		items, err := client.SeriesFeed(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(items)
		}

		for _, it := range items {
			fmt.Printf("%s  %s\n", it.Published.Format("2006-01-02 15:04"), it.Title)
		}
		return nil
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("Starting fredpanel API server on %s\n", addr)

		srv := api.NewServer(cfg, client)
		return srv.ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and connectivity status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("fredpanel %s (%s)\n\n", version, commit)

		fmt.Println("Configuration:")
		fmt.Printf("  Base URL:     %s\n", cfg.FRED.BaseURL)
		fmt.Printf("  Panel window: %d\n", cfg.Panel.Window)
		fmt.Printf("  API server:   %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		fmt.Println("API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("  %-14s %s\n", k.Name+":", status)
		}

		if cfg.FRED.APIKey == "" {
			return nil
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		fmt.Println()
		if err := client.Ping(ctx); err != nil {
			fmt.Printf("Connectivity: FAILED (%v)\n", err)
			return nil
		}
		fmt.Println("Connectivity: ok")
		return nil
	},
}

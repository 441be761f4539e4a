package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/hnsearch/internal/config"
	"github.com/pders01/hnsearch/internal/debuglog"
	"github.com/pders01/hnsearch/internal/hn"
	"github.com/pders01/hnsearch/internal/search"
	"github.com/pders01/hnsearch/internal/session"
	"github.com/pders01/hnsearch/internal/storage"
	"github.com/pders01/hnsearch/internal/tui"
	"github.com/pders01/hnsearch/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	dbPath     string
	logLevel   string
	quiet      bool
	allowLocal bool
)

var rootCmd = &cobra.Command{
	Use:          "hnsearch",
	Short:        "Search Hacker News from the terminal",
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to configuration file")
	pf.StringVar(&dbPath, "db", "", "Path to database file (overrides config)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: off, error, warn, info, debug (overrides config)")
	pf.BoolVar(&quiet, "quiet", false, "Skip startup banner")
	pf.BoolVar(&allowLocal, "allow-local", false, "Allow a loopback or private API base URL")

	searchCmd.Flags().Int("pages", 1, "Number of pages to fetch")
	searchCmd.Flags().String("sort", "", "Sort by: "+sortKeyList())
	searchCmd.Flags().Bool("reverse", false, "Reverse the sort order")
	findCmd.Flags().Int("limit", 20, "Maximum number of matches")
	archiveCmd.Flags().Bool("clear", false, "Delete every archived story and the search index")

	rootCmd.AddCommand(searchCmd, findCmd, termCmd, archiveCmd, versionCmd, generateConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = config.ExpandPath(dbPath)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	v := validation.NewAPIURLValidator()
	if allowLocal {
		v = validation.NewPermissiveAPIURLValidator()
	}
	base, err := v.ValidateAndNormalize(cfg.API.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("api.base_url: %w", err)
	}
	cfg.API.BaseURL = base

	return cfg, nil
}

// app bundles what every engine-backed command needs.
type app struct {
	cfg      *config.Config
	store    *storage.Store
	searcher search.Searcher
	recorder *search.Recorder
	client   *hn.Client
}

func openApp(cfg *config.Config) (*app, error) {
	store, err := storage.NewStoreWithTimeout(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return nil, err
	}
	searcher := search.Open(store, cfg.Database.SearchIndex)
	return &app{
		cfg:      cfg,
		store:    store,
		searcher: searcher,
		recorder: search.NewRecorder(store, searcher),
		client:   hn.NewClient(cfg),
	}, nil
}

func (a *app) controller() *session.Controller {
	opts := session.OptionsFromConfig(a.cfg)
	opts = append(opts, session.WithListener(a.recorder))
	return session.New(a.store, a.client, opts...)
}

func (a *app) Close() {
	a.recorder.Close()
	if err := a.searcher.Close(); err != nil {
		debuglog.Warnf("closing search index: %v", err)
	}
	if err := a.store.Close(); err != nil {
		debuglog.Warnf("closing database: %v", err)
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return err
	}
	defer debuglog.Close()

	if !quiet {
		tui.ShowBanner(cmd.OutOrStdout(), Version)
	}

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	tui.ApplyColors(cfg.UI.Colors)
	ctrl := a.controller()
	defer ctrl.Close()

	p := tea.NewProgram(tui.NewApp(ctrl, a.searcher, cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running interface: %w", err)
	}
	return nil
}

// setupCLI loads config and sends logs to stderr for headless commands.
func setupCLI(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	debuglog.SetupWriter(debuglog.ParseLogLevel(cfg.Log.Level), cmd.ErrOrStderr())
	return cfg, nil
}

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Run a search and print the results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pages, _ := cmd.Flags().GetInt("pages")
		sortFlag, _ := cmd.Flags().GetString("sort")
		reverse, _ := cmd.Flags().GetBool("reverse")

		if pages < 1 {
			return fmt.Errorf("--pages must be at least 1")
		}
		key, err := session.ParseSortKey(sortFlag)
		if err != nil {
			return err
		}

		cfg, err := setupCLI(cmd)
		if err != nil {
			return err
		}
		a, err := openApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		ctrl := a.controller()
		defer ctrl.Close()

		view, err := runSearch(ctx, ctrl, strings.Join(args, " "), pages)
		if err != nil {
			return err
		}

		printStories(cmd, session.SortStories(view.Items, key, reverse))
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d stories, %d comments\n", len(view.Items), view.TotalComments)
		return nil
	},
}

// runSearch submits term and loads up to pages pages, stopping early once a
// page adds nothing.
func runSearch(ctx context.Context, ctrl *session.Controller, term string, pages int) (session.View, error) {
	t, err := ctrl.SubmitSearch(term)
	if err != nil {
		return session.View{}, err
	}
	if err := await(ctx, ctrl, t); err != nil {
		return session.View{}, err
	}

	for i := 1; i < pages && ctrl.View().HasMore; i++ {
		t, err := ctrl.LoadMore()
		if err != nil {
			return session.View{}, err
		}
		if err := await(ctx, ctrl, t); err != nil {
			return session.View{}, err
		}
	}
	return ctrl.View(), nil
}

func await(ctx context.Context, ctrl *session.Controller, t session.Ticket) error {
	out := ctrl.Run(ctx, t)
	ctrl.Settle(out)
	if out.Err != nil {
		return fmt.Errorf("fetching %q page %d: %w", t.Term, t.Page, out.Err)
	}
	return nil
}

func printStories(cmd *cobra.Command, stories []hn.Story) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POINTS\tCOMMENTS\tAUTHOR\tTITLE")
	for _, s := range stories {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", s.Points, s.NumComments, s.Author, s.Title)
	}
	w.Flush()
}

func sortKeyList() string {
	keys := session.SortKeys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Search stories archived by earlier sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := setupCLI(cmd)
		if err != nil {
			return err
		}
		a, err := openApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		results, err := a.searcher.Search(strings.Join(args, " "), limit)
		if err != nil {
			return fmt.Errorf("searching archive: %w", err)
		}
		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No matches")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SCORE\tQUERY\tAUTHOR\tTITLE")
		for _, r := range results {
			fmt.Fprintf(w, "%.2f\t%s\t%s\t%s\n", r.Score, r.Story.Query, r.Story.Author, r.Story.Title)
		}
		return w.Flush()
	},
}

var termCmd = &cobra.Command{
	Use:   "term [new-term]",
	Short: "Show or set the persisted search term",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setupCLI(cmd)
		if err != nil {
			return err
		}
		store, err := storage.NewStoreWithTimeout(cfg.Database.Path, cfg.Database.Timeout)
		if err != nil {
			return err
		}
		defer store.Close()

		ctrl := session.New(store, nil, session.OptionsFromConfig(cfg)...)
		defer ctrl.Close()

		if len(args) == 1 {
			term, err := validation.ValidateSearchTerm(args[0])
			if err != nil {
				return err
			}
			ctrl.UpdateSearchInput(term)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ctrl.View().SearchTerm)
		return nil
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Show or clear the story archive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		clearAll, _ := cmd.Flags().GetBool("clear")

		cfg, err := setupCLI(cmd)
		if err != nil {
			return err
		}
		store, err := storage.NewStoreWithTimeout(cfg.Database.Path, cfg.Database.Timeout)
		if err != nil {
			return err
		}
		defer store.Close()

		if clearAll {
			if err := store.ClearStories(); err != nil {
				return err
			}
			if cfg.Database.SearchIndex != "" {
				if err := os.RemoveAll(cfg.Database.SearchIndex); err != nil {
					return fmt.Errorf("removing search index: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Archive cleared")
			return nil
		}

		n, err := store.CountStories()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d stories archived in %s\n", n, cfg.Database.Path)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		if !quiet {
			tui.ShowBanner(out, Version)
		}
		fmt.Fprintf(out, "hnsearch %s\n", Version)
		fmt.Fprintln(out, "Hacker News search client")
		fmt.Fprintln(out, "github.com/pders01/hnsearch")
	},
}

var generateConfigCmd = &cobra.Command{
	Use:   "generate-config",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := configPath
		if path == "" {
			home, _ := os.UserHomeDir()
			path = filepath.Join(home, ".config", "hnsearch", "config.toml")
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			return fmt.Errorf("generating config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
		return nil
	},
}

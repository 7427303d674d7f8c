// Package main provides the sound engine CLI entrypoint.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/storybutton/sound-engine/internal/config"
	"github.com/storybutton/sound-engine/internal/observability"
	"github.com/storybutton/sound-engine/pkg/engine"
)

var (
	// Global flags
	cfgFile     string
	catalogPath string
	outputJSON  bool
	verbose     bool
	noColor     bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "sound-engine-cli",
	Short: "Sound engine CLI for suggestions, reference resolution, and catalog inspection",
	Long: `Sound engine CLI drives the suggestion engine from the command line.

Use this tool to:
- Get ranked music and sound-effect suggestions for a story intent
- Resolve free-text audio references to playable URLs
- Inspect the loaded catalog snapshot
- Run a self-contained demo against a bundled mini catalog

All commands support --json for automation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if catalogPath != "" {
			cfg.Catalog.CSVPath = catalogPath
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logFormat := cfg.Logging.Format
		if outputJSON {
			logFormat = "json"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       level,
			Format:      logFormat,
			ServiceName: "sound-engine-cli",
		})

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: built-in defaults plus env vars)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog CSV path (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newSuggestCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newDemoCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newEngine assembles an engine from the loaded configuration.
func newEngine() (*engine.Engine, error) {
	eng, err := engine.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	return eng, nil
}

// newSuggestCmd creates the suggest subcommand.
func newSuggestCmd() *cobra.Command {
	var (
		request    string
		tone       string
		intentCtx  string
		pieces     []string
		intentFile string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest music and sound effects for a story intent",
		Long: `Suggest runs the full suggestion pipeline for one intent and prints the
ranked results.

The intent can be given with flags or as a JSON file matching the device
payload ({"request","tone","context","pieces":[{"name","description"}]}).
Pieces are written as name=description pairs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			intent := engine.Intent{
				Request: request,
				Tone:    tone,
				Context: intentCtx,
			}
			for _, p := range pieces {
				intent.Pieces = append(intent.Pieces, parsePiece(p))
			}
			if intentFile != "" {
				raw, err := os.ReadFile(intentFile)
				if err != nil {
					return fmt.Errorf("read intent file: %w", err)
				}
				if err := json.Unmarshal(raw, &intent); err != nil {
					return fmt.Errorf("parse intent file: %w", err)
				}
			}

			eng, err := newEngine()
			if err != nil {
				return err
			}

			start := time.Now()
			suggestions := eng.Suggest(ctx, intent, limit)
			elapsed := time.Since(start)

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(suggestions)
			}

			ui := NewUI(outputJSON, noColor)
			defer ui.Close()

			if len(suggestions) == 0 {
				ui.Warning("no suggestions for this intent")
				return nil
			}

			rows := make([][]string, 0, len(suggestions))
			for i, s := range suggestions {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					s.Type,
					s.DisplayTitle,
					fmt.Sprintf("%.1fs", s.DurationSeconds),
					s.Category,
					s.Filename,
				})
			}
			ui.Table([]string{"#", "TYPE", "TITLE", "DURATION", "CATEGORY", "FILENAME"}, rows)
			ui.Success("%d suggestions in %s", len(suggestions), FormatDuration(elapsed))

			return nil
		},
	}

	cmd.Flags().StringVar(&request, "request", "story", "request kind (story, advice, ...)")
	cmd.Flags().StringVar(&tone, "tone", "", "desired tone (gentle, upbeat, serious, ...)")
	cmd.Flags().StringVar(&intentCtx, "context", "", "free-text story context")
	cmd.Flags().StringArrayVar(&pieces, "piece", nil, "story piece as name=description (repeatable)")
	cmd.Flags().StringVar(&intentFile, "intent-file", "", "path to a JSON intent payload")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum suggestions to return")

	return cmd
}

// newResolveCmd creates the resolve subcommand.
func newResolveCmd() *cobra.Command {
	var (
		refsFile string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "resolve [reference ...]",
		Short: "Resolve free-text audio references to asset URLs",
		Long: `Resolve maps loosely written references (filenames, titles, tags, or full
URLs) to playable asset URLs, the same lookup the story markup consumer
performs.

References come from positional arguments or from --file with one reference
per line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			refs := append([]string(nil), args...)
			if refsFile != "" {
				fileRefs, err := readRefsFile(refsFile)
				if err != nil {
					return err
				}
				refs = append(refs, fileRefs...)
			}
			if len(refs) == 0 {
				return fmt.Errorf("no references given; pass arguments or --file")
			}

			eng, err := newEngine()
			if err != nil {
				return err
			}

			ui := NewUI(outputJSON, noColor)
			defer ui.Close()

			bar := ui.ProgressBar("resolving", int64(len(refs)))

			resolved := make(map[string]string, len(refs))
			var misses []string
			for _, ref := range refs {
				if url, ok := eng.Resolve(ref); ok {
					resolved[ref] = url
				} else {
					misses = append(misses, ref)
				}
				if bar != nil {
					bar.Increment()
				}
			}

			result := map[string]interface{}{
				"resolved": resolved,
				"misses":   misses,
			}

			if output != "" {
				raw, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return fmt.Errorf("encode result: %w", err)
				}
				if err := os.WriteFile(output, raw, 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			for _, ref := range misses {
				ui.Warning("unresolved: %s", ref)
			}
			ui.Success("resolved %d/%d references", len(resolved), len(refs))
			if output != "" {
				ui.Info("wrote %s", output)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&refsFile, "file", "", "file with one reference per line")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the resolution map as JSON to this path")

	return cmd
}

// newStatsCmd creates the stats subcommand.
func newStatsCmd() *cobra.Command {
	var topCategories int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog snapshot statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := newEngine()
			if err != nil {
				return err
			}
			stats := eng.Stats()

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			ui := NewUI(outputJSON, noColor)
			defer ui.Close()

			ui.Section("catalog")
			ui.KeyValue("entries", stats.TotalEntries)
			ui.KeyValue("music", stats.MusicCount)
			ui.KeyValue("sfx", stats.SfxCount)
			ui.KeyValue("skipped rows", stats.SkippedRows)
			if stats.TotalFileBytes > 0 {
				ui.KeyValue("total audio size", FormatBytes(stats.TotalFileBytes))
			}

			ui.Section("top categories")
			rows := topCategoryRows(stats.Categories, topCategories)
			if len(rows) == 0 {
				ui.Info("no categories in catalog")
			} else {
				ui.Table([]string{"CATEGORY", "ENTRIES"}, rows)
			}

			ui.Section("durations")
			ui.Table([]string{"BUCKET", "ENTRIES"}, [][]string{
				{"unknown", fmt.Sprintf("%d", stats.Durations.Unknown)},
				{"< 1s", fmt.Sprintf("%d", stats.Durations.UnderOne)},
				{"1s - 5s", fmt.Sprintf("%d", stats.Durations.OneToFive)},
				{"5s - 15s", fmt.Sprintf("%d", stats.Durations.FiveTo15)},
				{"15s - 45s", fmt.Sprintf("%d", stats.Durations.To45)},
				{"45s - 90s", fmt.Sprintf("%d", stats.Durations.To90)},
				{"> 90s", fmt.Sprintf("%d", stats.Durations.Over90)},
			})

			return nil
		},
	}

	cmd.Flags().IntVar(&topCategories, "top", 12, "number of categories to show")

	return cmd
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.Encode(map[string]string{"version": "0.1.0"})
				return
			}
			fmt.Println("sound-engine-cli v0.1.0")
		},
	}
}

// parsePiece splits a name=description flag value into a story piece.
func parsePiece(raw string) engine.StoryPiece {
	name, desc, found := strings.Cut(raw, "=")
	if !found {
		return engine.StoryPiece{Name: strings.TrimSpace(raw)}
	}
	return engine.StoryPiece{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(desc),
	}
}

// readRefsFile reads one reference per line, skipping blanks and # comments.
func readRefsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open references file: %w", err)
	}
	defer f.Close()

	var refs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		refs = append(refs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read references file: %w", err)
	}
	return refs, nil
}

// topCategoryRows sorts categories by count descending, name ascending.
func topCategoryRows(categories map[string]int, top int) [][]string {
	type catCount struct {
		name  string
		count int
	}
	sorted := make([]catCount, 0, len(categories))
	for name, count := range categories {
		sorted = append(sorted, catCount{name, count})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].name < sorted[j].name
	})
	if top > 0 && len(sorted) > top {
		sorted = sorted[:top]
	}

	rows := make([][]string, 0, len(sorted))
	for _, c := range sorted {
		rows = append(rows, []string{c.name, fmt.Sprintf("%d", c.count)})
	}
	return rows
}

package commands

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/storybutton/sound-engine/cmd/soundprep/ui"
	"github.com/storybutton/sound-engine/internal/catalog"
)

// newStatsCmd creates the stats subcommand.
func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Report catalog composition",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := catalog.LoadCSV(cfg.Catalog.CSVPath, cfg.Catalog.BucketBaseURL, logger)
			stats := store.Stats()

			ui.Section("catalog composition")
			ui.Message("entries: %d (%d music, %d sfx)", stats.Total, stats.Music, stats.Sfx)
			if store.Skipped() > 0 {
				ui.Warning("skipped rows: %d", store.Skipped())
			}
			if stats.TotalBytes > 0 {
				ui.Message("total audio bytes: %d", stats.TotalBytes)
			}

			ui.Section("categories")
			names := make([]string, 0, len(stats.Categories))
			for name := range stats.Categories {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				ui.Message("%-20s %d", name, stats.Categories[name])
			}

			ui.Section("durations")
			ui.Message("%-12s %d", "unknown", stats.Durations.Unknown)
			ui.Message("%-12s %d", "< 1s", stats.Durations.UnderOne)
			ui.Message("%-12s %d", "1s - 5s", stats.Durations.OneToFive)
			ui.Message("%-12s %d", "5s - 15s", stats.Durations.FiveTo15)
			ui.Message("%-12s %d", "15s - 45s", stats.Durations.To45)
			ui.Message("%-12s %d", "45s - 90s", stats.Durations.To90)
			ui.Message("%-12s %d", "> 90s", stats.Durations.Over90)

			return nil
		},
	}

	return cmd
}

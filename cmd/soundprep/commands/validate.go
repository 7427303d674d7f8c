package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storybutton/sound-engine/cmd/soundprep/ui"
	"github.com/storybutton/sound-engine/internal/catalog"
	"github.com/storybutton/sound-engine/internal/embedding"
	"github.com/storybutton/sound-engine/internal/retrieval"
	"github.com/storybutton/sound-engine/internal/sidecar"
)

// newValidateCmd creates the validate subcommand.
func newValidateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a catalog snapshot before it ships",
		Long: `Validate loads the catalog the way the engine does and reports rows that
can never be suggested: denylisted text, durations outside the per-type
gates, duplicate filenames, and missing titles. With embedding enabled it
also reports sidecar coverage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			spin := ui.NewSpinner("loading catalog")
			spin.Start()
			store := catalog.LoadCSV(cfg.Catalog.CSVPath, cfg.Catalog.BucketBaseURL, logger)
			spin.UpdateMessage("checking rows")

			var (
				denied       int
				gatedMusic   int
				gatedSfx     int
				noDuration   int
				missingTitle int
				duplicates   int
			)
			seen := make(map[string]bool, store.Len())
			for _, e := range store.Entries() {
				if retrieval.Denied(e) {
					denied++
				}
				if e.DurationSeconds <= 0 {
					noDuration++
				} else if !retrieval.DurationAllowed(e) {
					if e.ItemType == catalog.ItemTypeMusic {
						gatedMusic++
					} else {
						gatedSfx++
					}
				}
				if e.DisplayTitle == "" {
					missingTitle++
				}
				if seen[e.Filename] {
					duplicates++
				}
				seen[e.Filename] = true
			}

			covered := -1
			if enc := embedding.NewFromSettings(cfg.Embedding.Enabled, cfg.Embedding.Dim); enc != nil {
				spin.UpdateMessage("checking sidecar coverage")
				vectors := sidecar.Load(cfg.Sidecar.Path, enc.Model(), enc.Dim(), logger)
				covered = 0
				for _, e := range store.Entries() {
					if _, ok := vectors[e.Filename]; ok {
						covered++
					}
				}
			}
			spin.Stop()

			ui.Section("catalog validation")
			ui.Message("catalog: %s", cfg.Catalog.CSVPath)
			ui.Message("rows loaded: %d, rows skipped: %d", store.Len(), store.Skipped())

			if store.Len() == 0 {
				ui.Error("catalog is empty")
				return fmt.Errorf("catalog %s has no usable rows", cfg.Catalog.CSVPath)
			}

			problems := 0
			report := func(count int, format string, args ...interface{}) {
				if count > 0 {
					problems += count
					ui.Warning(format, args...)
				}
			}
			report(store.Skipped(), "%d rows skipped during load", store.Skipped())
			report(denied, "%d rows contain denylisted terms and will never be suggested", denied)
			report(noDuration, "%d rows have no usable duration", noDuration)
			report(gatedMusic, "%d music rows fall outside the 8s-90s gate", gatedMusic)
			report(gatedSfx, "%d sfx rows fall outside the 0.2s-10s gate", gatedSfx)
			report(duplicates, "%d duplicate filenames", duplicates)
			report(missingTitle, "%d rows have no title (filename stem will be shown)", missingTitle)

			if covered >= 0 {
				if covered == store.Len() {
					ui.Success("sidecar covers all %d rows", covered)
				} else {
					ui.Warning("sidecar covers %d/%d rows; run soundprep sidecar to refresh", covered, store.Len())
				}
			}

			if problems == 0 {
				ui.Success("catalog is clean")
			} else if strict {
				return fmt.Errorf("validation found %d problem rows", problems)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any problem is found")

	return cmd
}

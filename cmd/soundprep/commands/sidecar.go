package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/storybutton/sound-engine/cmd/soundprep/ui"
	"github.com/storybutton/sound-engine/internal/catalog"
	"github.com/storybutton/sound-engine/internal/embedding"
	"github.com/storybutton/sound-engine/internal/sidecar"
)

const embedBatchSize = 256

// newSidecarCmd creates the sidecar subcommand.
func newSidecarCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sidecar",
		Short: "Build the embedding sidecar for every catalog row",
		Long: `Sidecar encodes every catalog row's text into a vector and writes the
result next to the catalog. The engine loads this file at startup so it
never has to encode rows on the fly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			store := catalog.LoadCSV(cfg.Catalog.CSVPath, cfg.Catalog.BucketBaseURL, logger)
			if store.Len() == 0 {
				return fmt.Errorf("catalog %s is empty; nothing to embed", cfg.Catalog.CSVPath)
			}

			enc := embedding.NewFromSettings(cfg.Embedding.Enabled, cfg.Embedding.Dim)
			if enc == nil {
				return fmt.Errorf("embedding capability is disabled in config")
			}

			if output == "" {
				output = cfg.Sidecar.Path
			}

			entries := store.Entries()
			bar := ui.NewProgressBar(int64(len(entries)), "embedding")

			rows := make([]sidecar.Row, 0, len(entries))
			for start := 0; start < len(entries); start += embedBatchSize {
				if err := ctx.Err(); err != nil {
					return err
				}
				end := min(start+embedBatchSize, len(entries))
				batch := entries[start:end]
				texts := make([]string, len(batch))
				for i, e := range batch {
					texts[i] = e.RowText()
				}
				vecs, err := enc.Encode(ctx, texts)
				if err != nil {
					return fmt.Errorf("encode batch at row %d: %w", start, err)
				}
				for i, e := range batch {
					rows = append(rows, sidecar.Row{Filename: e.Filename, Vector: vecs[i]})
				}
				bar.Set(int64(end))
			}
			bar.Finish()

			if err := sidecar.Write(output, enc.Model(), enc.Dim(), rows, logger); err != nil {
				return fmt.Errorf("write sidecar: %w", err)
			}

			ui.Success("wrote %d vectors (%s, dim %d) to %s", len(rows), enc.Model(), enc.Dim(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "sidecar output path (default: config sidecar path)")

	return cmd
}

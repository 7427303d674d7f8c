package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/storybutton/sound-engine/internal/config"
	"github.com/storybutton/sound-engine/pkg/engine"
)

// demoCatalogCSV is a small but representative snapshot: both item types,
// rule-expansion targets, a duration outlier, and a denylisted row.
const demoCatalogCSV = `filename,audio_type,kit_title,kit_category,kit_tags,duration,google_cloud_url,file_path,source_directory,sample_rate,channels,file_size
mixkit-gentle-rain-loop-1248.mp3,song,Gentle Rain,ambient,"rain,ambient,soft",30.0,,,mixkit,44100,2,720000
mixkit-soft-piano-lullaby-112.mp3,song,Soft Piano Lullaby,lullaby,"piano,lullaby,sleep",42.5,,,mixkit,44100,2,1020000
mixkit-night-crickets-loop-1786.mp3,song,Night Crickets,ambient,"night,cricket,nature",55.0,,,mixkit,44100,2,1320000
mixkit-playful-ukulele-bounce-667.mp3,song,Playful Ukulele,kids,"ukulele,happy,kids",28.0,,,mixkit,44100,2,672000
mixkit-grand-orchestra-finale-2063.mp3,song,Grand Orchestra Finale,epic,"orchestra,epic,finale",120.0,,,mixkit,44100,2,2880000
mixkit-calm-forest-morning-14.mp3,song,Calm Forest Morning,calm,"forest,morning,bird",35.0,,,mixkit,44100,2,840000
wing_flap_large.wav,sfx,Wing Flap,creature,"wing,flap,dragon",1.2,,,filmcow,48000,1,115200
soft_thunder_distant.wav,sfx,Distant Thunder,weather,"thunder,storm,rain",4.5,,,filmcow,48000,2,432000
castle_door_creak.wav,sfx,Castle Door Creak,foley,"door,creak,castle",2.1,,,filmcow,48000,1,201600
fire_crackle_small.wav,sfx,Fire Crackle,ambience,"fire,crackle,camp",6.0,,,google,48000,2,576000
cave_drip_echo.wav,sfx,Cave Drip,ambience,"drip,cave,echo",3.2,,,google,48000,1,307200
gunshot_loud.wav,sfx,Gunshot,action,"gun,shot,loud",0.9,,,filmcow,48000,1,86400
`

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Interactive demo against a bundled mini catalog",
		Long: `Demo writes a small catalog to a temp file, builds an engine over it, runs
a few showcase intents, and then drops into an interactive loop.

In the loop, type a story context to get suggestions, or prefix a line with
@ to resolve it as an audio reference. Type quit to exit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
	return cmd
}

func runDemo() error {
	ctx := context.Background()

	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║        Sound Engine Interactive Demo             ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	csvPath := filepath.Join(os.TempDir(), fmt.Sprintf("sound_demo_%d.csv", time.Now().Unix()))
	if err := os.WriteFile(csvPath, []byte(demoCatalogCSV), 0o644); err != nil {
		return fmt.Errorf("write demo catalog: %w", err)
	}
	defer os.Remove(csvPath)

	demoCfg := config.DefaultConfig()
	demoCfg.Catalog.CSVPath = csvPath
	demoCfg.Sidecar.Path = ""

	eng, err := engine.New(demoCfg, logger)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	stats := eng.Stats()
	fmt.Printf("Loaded demo catalog: %d entries (%d music, %d sfx)\n",
		stats.TotalEntries, stats.MusicCount, stats.SfxCount)

	ui := NewUI(false, noColor)
	defer ui.Close()

	showcase := []struct {
		title  string
		intent engine.Intent
	}{
		{
			title: "gentle bedtime story",
			intent: engine.Intent{
				Request: "story",
				Tone:    "gentle",
				Context: "a comforting bedtime story about a friendly dragon in a rainy castle",
				Pieces:  []engine.StoryPiece{{Name: "Money the Dragon", Description: "friendly"}},
			},
		},
		{
			title: "upbeat forest adventure",
			intent: engine.Intent{
				Request: "story",
				Tone:    "upbeat",
				Context: "a cheerful adventure through a sunny forest full of birds",
			},
		},
		{
			title: "calm advice moment",
			intent: engine.Intent{
				Request: "advice",
				Tone:    "serious",
				Context: "helping a child fall asleep after a storm",
			},
		},
	}

	for _, sc := range showcase {
		ui.Section(sc.title)
		printSuggestions(ui, eng.Suggest(ctx, sc.intent, 5))
	}

	ui.Section("reference resolution")
	for _, ref := range []string{
		"@gentle-rain",
		"crickets",
		"wing_flap_large.wav",
		"https://example.com/already-a-url.mp3",
		"nonexistent-thing",
	} {
		if url, ok := eng.Resolve(ref); ok {
			ui.Success("%s -> %s", ref, url)
		} else {
			ui.Warning("%s -> no match", ref)
		}
	}

	fmt.Println()
	fmt.Println("Type a story context for suggestions, @reference to resolve, or quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("demo> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if strings.HasPrefix(line, "@") {
			if url, ok := eng.Resolve(line); ok {
				ui.Success("%s", url)
			} else {
				ui.Warning("no match")
			}
			continue
		}
		intent := engine.Intent{Request: "story", Tone: "gentle", Context: line}
		printSuggestions(ui, eng.Suggest(ctx, intent, 5))
	}

	fmt.Println("\nBye!")
	return nil
}

func printSuggestions(ui *UI, suggestions []engine.Suggestion) {
	if len(suggestions) == 0 {
		ui.Warning("no suggestions")
		return
	}
	rows := make([][]string, 0, len(suggestions))
	for i, s := range suggestions {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			s.Type,
			s.DisplayTitle,
			fmt.Sprintf("%.1fs", s.DurationSeconds),
			s.Category,
		})
	}
	ui.Table([]string{"#", "TYPE", "TITLE", "DURATION", "CATEGORY"}, rows)
}

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storybutton/sound-engine/internal/observability"
)

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "soundlibrary.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV_ParsesByHeaderName(t *testing.T) {
	// Columns deliberately out of the usual order: lookup is by header name.
	csv := `kit_title,audio_type,filename,duration,kit_category,kit_tags,google_cloud_url,file_path,sample_rate,channels,file_size
Gentle Rain,song,mixkit-gentle-rain-loop-1248.mp3,30,ambient,"rain,ambient,soft",,,44100,2,480000
Wing Flap,sfx,wing_flap_large.wav,1.2,fantasy,"wing,flap,dragon",https://cdn.example.com/wing.wav,,48000,1,96000
`
	store := LoadCSV(writeCatalogFile(t, csv), "https://bucket.example.com", observability.Nop())

	require.Equal(t, 2, store.Len())
	assert.Equal(t, 0, store.Skipped())

	rain := store.Entries()[0]
	assert.Equal(t, "mixkit-gentle-rain-loop-1248.mp3", rain.Filename)
	assert.Equal(t, "Gentle Rain", rain.DisplayTitle)
	assert.Equal(t, ItemTypeMusic, rain.ItemType)
	assert.Equal(t, 30.0, rain.DurationSeconds)
	assert.Equal(t, "ambient", rain.CategoryLower())
	assert.Equal(t, 44100, rain.SampleRate)
	assert.Equal(t, 2, rain.Channels)
	assert.Equal(t, int64(480000), rain.FileSizeBytes)

	flap := store.Entries()[1]
	assert.Equal(t, ItemTypeSfx, flap.ItemType)
	assert.Equal(t, "https://cdn.example.com/wing.wav", flap.CanonicalURL)
	assert.Equal(t, []string{"wing", "flap", "dragon"}, flap.TagList())
}

func TestLoadCSV_SkipsUnusableRows(t *testing.T) {
	csv := `filename,kit_title,duration,audio_type
good_one.wav,Good One,2.5,sfx
,Missing Filename,3,sfx
second_good.wav,Second,1.1,sfx
`
	store := LoadCSV(writeCatalogFile(t, csv), "https://bucket.example.com", observability.Nop())

	assert.Equal(t, 2, store.Len(), "rows without a filename are dropped")
	assert.Equal(t, 1, store.Skipped())
}

func TestLoadCSV_DefaultsForShortAndMalformedFields(t *testing.T) {
	csv := `filename,kit_title,duration,audio_type,sample_rate
short_row.wav
bad_duration.wav,Bad Duration,not-a-number,sfx,oops
`
	store := LoadCSV(writeCatalogFile(t, csv), "https://bucket.example.com", observability.Nop())

	require.Equal(t, 2, store.Len())

	short := store.Entries()[0]
	assert.Equal(t, "", short.DisplayTitle)
	assert.Equal(t, 0.0, short.DurationSeconds)
	assert.Equal(t, ItemTypeSfx, short.ItemType, "missing audio_type means effect")

	bad := store.Entries()[1]
	assert.Equal(t, 0.0, bad.DurationSeconds, "unparsable duration defaults to zero")
	assert.Equal(t, 0, bad.SampleRate)
}

func TestLoadCSV_MissingFile(t *testing.T) {
	store := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"), "https://bucket.example.com", observability.Nop())

	assert.Equal(t, 0, store.Len(), "missing catalog degrades to an empty store")
	assert.Empty(t, store.Entries())
}

func TestItemTypeFor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ItemType
	}{
		{"song is music", "song", ItemTypeMusic},
		{"case insensitive", "Song", ItemTypeMusic},
		{"anything else is sfx", "loop", ItemTypeSfx},
		{"empty is sfx", "", ItemTypeSfx},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, itemTypeFor(tc.input))
		})
	}
}

func TestEntryTitle(t *testing.T) {
	tests := []struct {
		name     string
		entry    Entry
		expected string
	}{
		{"display title wins", Entry{Filename: "x.mp3", DisplayTitle: "Gentle Rain"}, "Gentle Rain"},
		{"fallback keeps filename casing", Entry{Filename: "Epic_Boom.wav"}, "Epic_Boom"},
		{"fallback without extension", Entry{Filename: "ambience"}, "ambience"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.entry.Title())
		})
	}
}

func TestEntryDerivedFields(t *testing.T) {
	store := NewStoreFromEntries([]*Entry{
		{
			Filename:     "mixkit-night-crickets-1153.mp3",
			DisplayTitle: "Night Crickets",
			Category:     "Nature",
			Tags:         "cricket, night",
		},
	}, "https://bucket.example.com", observability.Nop())

	e := store.Entries()[0]
	assert.Contains(t, e.SearchText(), "night crickets", "search text includes the lowercased title")
	assert.Contains(t, e.SearchText(), "nature")
	assert.True(t, e.ItemTokens().Has("cricket"))
	assert.True(t, e.ItemTokens().Has("night"))
	assert.True(t, e.ItemTokens().Has("nature"), "category joins the token set")
	assert.Equal(t, []string{"cricket", "night"}, e.TagList(), "tags trimmed, catalog order kept")
	assert.True(t, e.SimTokens().Has("cricket"), "similarity tokens come from tags and filename")
	assert.False(t, e.SimTokens().Has("nature"), "similarity tokens exclude the category")
	assert.Equal(t, "Night Crickets Nature cricket, night mixkit-night-crickets-1153.mp3", e.RowText())
}

func TestNewStoreFromEntries_SkipsEmptyFilename(t *testing.T) {
	store := NewStoreFromEntries([]*Entry{
		{Filename: "keep.wav"},
		{Filename: ""},
	}, "https://bucket.example.com", observability.Nop())

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 1, store.Skipped())
}

func TestStoreStats(t *testing.T) {
	store := NewStoreFromEntries([]*Entry{
		{Filename: "a.mp3", ItemType: ItemTypeMusic, Category: "Ambient", DurationSeconds: 30, FileSizeBytes: 100},
		{Filename: "b.mp3", ItemType: ItemTypeMusic, Category: "ambient", DurationSeconds: 120, FileSizeBytes: 200},
		{Filename: "c.wav", ItemType: ItemTypeSfx, Category: "Nature", DurationSeconds: 0.5, FileSizeBytes: 50},
		{Filename: "d.wav", ItemType: ItemTypeSfx, DurationSeconds: 3, FileSizeBytes: 25},
		{Filename: "e.wav", ItemType: ItemTypeSfx},
		{Filename: "f.wav", ItemType: ItemTypeSfx, DurationSeconds: 10},
		{Filename: "g.wav", ItemType: ItemTypeSfx, DurationSeconds: 60},
	}, "https://bucket.example.com", observability.Nop())

	st := store.Stats()
	assert.Equal(t, 7, st.Total)
	assert.Equal(t, 2, st.Music)
	assert.Equal(t, 5, st.Sfx)
	assert.Equal(t, int64(375), st.TotalBytes)
	assert.Equal(t, 2, st.Categories["ambient"], "categories are counted case folded")
	assert.Equal(t, 1, st.Categories["nature"])

	assert.Equal(t, 1, st.Durations.Unknown)
	assert.Equal(t, 1, st.Durations.UnderOne)
	assert.Equal(t, 1, st.Durations.OneToFive)
	assert.Equal(t, 1, st.Durations.FiveTo15)
	assert.Equal(t, 1, st.Durations.To45)
	assert.Equal(t, 1, st.Durations.To90)
	assert.Equal(t, 1, st.Durations.Over90)
}

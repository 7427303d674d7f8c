// Package catalog loads and holds the immutable in-memory snapshot of audio
// asset metadata that every retrieval and resolution component reads from.
package catalog

import (
	"path/filepath"
	"strings"

	"github.com/storybutton/sound-engine/internal/token"
)

// ItemType classifies an asset as a music bed or a sound effect.
type ItemType string

const (
	ItemTypeMusic ItemType = "music"
	ItemTypeSfx   ItemType = "sfx"
)

// itemTypeFor derives the type from the catalog's raw audio_type field. Only
// the literal "song" marks a music bed; everything else is an effect.
func itemTypeFor(audioType string) ItemType {
	if strings.ToLower(audioType) == "song" {
		return ItemTypeMusic
	}
	return ItemTypeSfx
}

// Entry is one catalog row, parsed and typed at load time. Entries are
// read-only after construction; the derived token sets below are computed
// once during load and shared by every pipeline stage.
type Entry struct {
	Filename        string
	DisplayTitle    string
	Category        string
	Tags            string
	DurationSeconds float64
	ItemType        ItemType
	CanonicalURL    string
	SourcePath      string
	SourceDirectory string
	SampleRate      int
	Channels        int
	FileSizeBytes   int64

	categoryLower string
	searchText    string
	rowText       string
	itemTokens    token.Set
	itemTokenList []string
	simTokens     token.Set
	tagList       []string
}

// finish computes the derived fields. Called exactly once, from the loader.
func (e *Entry) finish() {
	fn := strings.ToLower(e.Filename)
	title := strings.ToLower(e.DisplayTitle)
	tags := strings.ToLower(e.Tags)
	e.categoryLower = strings.ToLower(e.Category)

	e.searchText = fn + " " + title + " " + tags + " " + e.categoryLower

	parts := make([]string, 0, 4)
	for _, p := range []string{e.DisplayTitle, e.Category, e.Tags, fn} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	e.rowText = strings.Join(parts, " ")

	e.itemTokens = token.NewSet(
		token.Tokens(title),
		token.FilenameTokens(fn),
		token.Tokens(tags),
	)
	if e.categoryLower != "" {
		e.itemTokens.Add(e.categoryLower)
	}
	e.itemTokenList = e.itemTokens.Sorted()

	e.simTokens = token.NewSet(token.Tokens(e.Tags), token.FilenameTokens(e.Filename))

	for _, t := range strings.Split(e.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			e.tagList = append(e.tagList, t)
		}
	}
}

// Title returns the display title, falling back to the filename stem when the
// catalog has no title for the asset.
func (e *Entry) Title() string {
	if e.DisplayTitle != "" {
		return e.DisplayTitle
	}
	return strings.TrimSuffix(e.Filename, filepath.Ext(e.Filename))
}

// CategoryLower returns the lowercased category.
func (e *Entry) CategoryLower() string {
	return e.categoryLower
}

// SearchText returns the lowercased concatenation of filename, title, tags
// and category that the safety gate scans for denylisted substrings.
func (e *Entry) SearchText() string {
	return e.searchText
}

// RowText returns the text embedded for this entry: title, category, tags and
// lowercased filename, empty parts omitted.
func (e *Entry) RowText() string {
	return e.rowText
}

// ItemTokens returns the entry's normalized token set (title, filename, tags,
// category).
func (e *Entry) ItemTokens() token.Set {
	return e.itemTokens
}

// ItemTokenList returns the same tokens as a sorted slice, giving bounded
// scans a deterministic iteration order.
func (e *Entry) ItemTokenList() []string {
	return e.itemTokenList
}

// SimTokens returns the tag and filename tokens used for pairwise similarity
// in diversity selection.
func (e *Entry) SimTokens() token.Set {
	return e.simTokens
}

// TagList returns the individual comma-separated tags, trimmed, in catalog
// order.
func (e *Entry) TagList() []string {
	return e.tagList
}

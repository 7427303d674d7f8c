package engine

// Intent is the structured reading of a user utterance: what kind of
// response is wanted, in what tone, and what the story is about.
type Intent struct {
	Request string       `json:"request"`
	Tone    string       `json:"tone"`
	Context string       `json:"context,omitempty"`
	Pieces  []StoryPiece `json:"pieces,omitempty"`
}

// StoryPiece is one planned segment of the story carried by an intent.
type StoryPiece struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Suggestion is one recommended audio asset, shaped exactly as the device
// consumes it.
type Suggestion struct {
	Filename        string  `json:"filename"`
	DisplayTitle    string  `json:"display_title"`
	Type            string  `json:"type"`
	Tags            string  `json:"tags"`
	DurationSeconds float64 `json:"duration"`
	URL             string  `json:"url"`
	Category        string  `json:"category"`
}

// Stats summarizes the loaded catalog.
type Stats struct {
	TotalEntries   int             `json:"total_entries"`
	MusicCount     int             `json:"music_count"`
	SfxCount       int             `json:"sfx_count"`
	TotalFileBytes int64           `json:"total_file_bytes"`
	Categories     map[string]int  `json:"categories"`
	Durations      DurationBuckets `json:"durations"`
	SkippedRows    int             `json:"skipped_rows"`
}

// DurationBuckets is a coarse histogram of entry durations in seconds.
type DurationBuckets struct {
	Unknown   int `json:"unknown"`
	UnderOne  int `json:"under_1s"`
	OneToFive int `json:"1s_to_5s"`
	FiveTo15  int `json:"5s_to_15s"`
	To45      int `json:"15s_to_45s"`
	To90      int `json:"45s_to_90s"`
	Over90    int `json:"over_90s"`
}

package catalog

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/storybutton/sound-engine/internal/observability"
)

// Store holds the catalog snapshot. It is populated once by LoadCSV and never
// mutated afterward; concurrent readers need no synchronization.
type Store struct {
	entries    []*Entry
	bucketBase string
	skipped    int
	log        *observability.Logger
}

// LoadCSV reads the catalog snapshot from a CSV file. A missing file is not
// fatal: the store starts empty and the condition is logged, per the engine's
// degraded-mode contract. Malformed rows are skipped or default-filled; the
// load never aborts part way.
func LoadCSV(path, bucketBaseURL string, log *observability.Logger) *Store {
	s := &Store{
		bucketBase: strings.TrimRight(bucketBaseURL, "/"),
		log:        log.WithComponent("catalog"),
	}

	f, err := os.Open(path)
	if err != nil {
		s.log.Warn().Str("path", path).Err(err).Msg("catalog file unavailable, starting with empty catalog")
		return s
	}
	defer f.Close()

	s.readAll(csv.NewReader(f))

	s.log.Info().
		Str("path", path).
		Int("entries", len(s.entries)).
		Int("skipped", s.skipped).
		Msg("catalog loaded")
	return s
}

func (s *Store) readAll(r *csv.Reader) {
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		s.log.Warn().Err(err).Msg("catalog header unreadable")
		return
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			return
		}
		if err != nil {
			// a broken record is skipped, not fatal
			s.skipped++
			continue
		}
		e, ok := parseRecord(cols, record)
		if !ok {
			s.skipped++
			continue
		}
		e.finish()
		s.entries = append(s.entries, e)
	}
}

// parseRecord builds a typed Entry from one CSV record. Absent fields default
// to empty/zero; an entry without a filename is unusable and rejected.
func parseRecord(cols map[string]int, record []string) (*Entry, bool) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	filename := field("filename")
	if filename == "" {
		return nil, false
	}

	return &Entry{
		Filename:        filename,
		DisplayTitle:    field("kit_title"),
		Category:        field("kit_category"),
		Tags:            field("kit_tags"),
		DurationSeconds: parseFloat(field("duration")),
		ItemType:        itemTypeFor(field("audio_type")),
		CanonicalURL:    field("google_cloud_url"),
		SourcePath:      field("file_path"),
		SourceDirectory: field("source_directory"),
		SampleRate:      parseInt(field("sample_rate")),
		Channels:        parseInt(field("channels")),
		FileSizeBytes:   int64(parseInt(field("file_size"))),
	}, true
}

func parseFloat(v string) float64 {
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(v string) int {
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// NewStoreFromEntries builds a store directly from entries. Tests and the
// demo command use this to avoid touching the filesystem.
func NewStoreFromEntries(entries []*Entry, bucketBaseURL string, log *observability.Logger) *Store {
	s := &Store{
		bucketBase: strings.TrimRight(bucketBaseURL, "/"),
		log:        log.WithComponent("catalog"),
	}
	for _, e := range entries {
		if e.Filename == "" {
			s.skipped++
			continue
		}
		e.finish()
		s.entries = append(s.entries, e)
	}
	return s
}

// Entries returns the snapshot in catalog load order. Load order is the
// canonical tie-break order for every downstream component; callers must not
// reorder the returned slice.
func (s *Store) Entries() []*Entry {
	return s.entries
}

// Len returns the number of loaded entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Skipped returns the number of rows rejected during load.
func (s *Store) Skipped() int {
	return s.skipped
}

// Stats summarizes the snapshot for tooling.
type Stats struct {
	Total      int
	Music      int
	Sfx        int
	TotalBytes int64
	Categories map[string]int
	Durations  DurationBuckets
}

// DurationBuckets is a coarse histogram of entry durations in seconds.
type DurationBuckets struct {
	Unknown   int // duration <= 0
	UnderOne  int
	OneToFive int
	FiveTo15  int
	To45      int
	To90      int
	Over90    int
}

// Stats computes summary counts over the snapshot.
func (s *Store) Stats() Stats {
	st := Stats{Total: len(s.entries), Categories: make(map[string]int)}
	for _, e := range s.entries {
		if e.ItemType == ItemTypeMusic {
			st.Music++
		} else {
			st.Sfx++
		}
		if c := e.CategoryLower(); c != "" {
			st.Categories[c]++
		}
		st.TotalBytes += e.FileSizeBytes
		d := e.DurationSeconds
		switch {
		case d <= 0:
			st.Durations.Unknown++
		case d < 1:
			st.Durations.UnderOne++
		case d < 5:
			st.Durations.OneToFive++
		case d < 15:
			st.Durations.FiveTo15++
		case d < 45:
			st.Durations.To45++
		case d < 90:
			st.Durations.To90++
		default:
			st.Durations.Over90++
		}
	}
	return st
}

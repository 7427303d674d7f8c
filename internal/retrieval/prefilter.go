package retrieval

import (
	"sort"
	"strings"

	fuzz "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/storybutton/sound-engine/internal/catalog"
)

// denyTerms is the safety denylist. An entry whose metadata contains any of
// these substrings is rejected outright; no score can override the gate.
var denyTerms = []string{
	"gun",
	"gunshot",
	"weapon",
	"horror",
	"scream",
	"blood",
	"violence",
}

// Duration gates per item type, in seconds. Entries with unknown duration
// (zero or unparsable) fail both gates.
const (
	musicMinDuration = 8.0
	musicMaxDuration = 90.0
	sfxMinDuration   = 0.2
	sfxMaxDuration   = 10.0
)

const (
	// maxCandidates bounds the candidate set handed to the reranker.
	maxCandidates = 300
	// fuzzyTermLimit and fuzzyTokenLimit bound the fuzzy scan.
	fuzzyTermLimit  = 6
	fuzzyTokenLimit = 12
	// fuzzyThreshold is the minimum partial-match ratio that counts.
	fuzzyThreshold = 90
	// fuzzyWeight scales the fuzzy bonus relative to exact overlap.
	fuzzyWeight = 0.25
)

// FuzzyMatcher is the optional approximate-matching capability consulted by
// the prefilter. A nil matcher disables the fuzzy bonus.
type FuzzyMatcher interface {
	PartialRatio(a, b string) int
}

type wuzzyMatcher struct{}

func (wuzzyMatcher) PartialRatio(a, b string) int {
	return fuzz.PartialRatio(a, b)
}

// NewFuzzyMatcher returns the fuzzy capability, or nil when disabled.
func NewFuzzyMatcher(enabled bool) FuzzyMatcher {
	if !enabled {
		return nil
	}
	return wuzzyMatcher{}
}

// Candidate is a catalog entry that survived the gates, with its lexical
// features. Overlap is reused by the reranker.
type Candidate struct {
	Entry    *catalog.Entry
	Overlap  int
	LexScore float64
}

// Prefilter screens the catalog down to a bounded candidate set.
type Prefilter struct {
	fuzzy FuzzyMatcher
}

// NewPrefilter creates a Prefilter with the given fuzzy capability (nil for
// none).
func NewPrefilter(fuzzy FuzzyMatcher) *Prefilter {
	return &Prefilter{fuzzy: fuzzy}
}

// Run applies the safety gate, the duration gate, and lexical scoring to
// every entry, keeping the best maxCandidates. With an empty term set every
// gated-in entry is kept (a blank query browses the catalog). Ties preserve
// catalog load order.
func (p *Prefilter) Run(entries []*catalog.Entry, q Query) []Candidate {
	emptyQuery := len(q.Terms) == 0
	cands := make([]Candidate, 0, min(len(entries), maxCandidates))

	for _, e := range entries {
		if Denied(e) {
			continue
		}
		if !DurationAllowed(e) {
			continue
		}

		overlap := e.ItemTokens().Overlap(q.Terms)
		score := float64(overlap)
		if p.fuzzy != nil && len(q.TermList) > 0 {
			score += fuzzyWeight * float64(p.fuzzyBonus(e, q.TermList))
		}

		if score > 0 || emptyQuery {
			cands = append(cands, Candidate{Entry: e, Overlap: overlap, LexScore: score})
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].LexScore > cands[j].LexScore
	})
	if len(cands) > maxCandidates {
		cands = cands[:maxCandidates]
	}
	return cands
}

// fuzzyBonus counts query terms (first fuzzyTermLimit) for which some item
// token reaches the partial-match threshold, scanning at most fuzzyTokenLimit
// tokens per term and crediting each term at most once.
func (p *Prefilter) fuzzyBonus(e *catalog.Entry, terms []string) int {
	queryTerms := terms
	if len(queryTerms) > fuzzyTermLimit {
		queryTerms = queryTerms[:fuzzyTermLimit]
	}
	itemTokens := e.ItemTokenList()
	if len(itemTokens) > fuzzyTokenLimit {
		itemTokens = itemTokens[:fuzzyTokenLimit]
	}

	bonus := 0
	for _, term := range queryTerms {
		for _, tok := range itemTokens {
			if p.fuzzy.PartialRatio(term, tok) >= fuzzyThreshold {
				bonus++
				break
			}
		}
	}
	return bonus
}

// Denied reports whether any denylisted term appears in the entry's combined
// search text. Denied entries are excluded no matter what the intent asks for.
func Denied(e *catalog.Entry) bool {
	hay := e.SearchText()
	for _, bad := range denyTerms {
		if strings.Contains(hay, bad) {
			return true
		}
	}
	return false
}

// DurationAllowed applies the per-type duration gate. Unknown durations are
// never allowed through.
func DurationAllowed(e *catalog.Entry) bool {
	d := e.DurationSeconds
	if d <= 0 {
		return false
	}
	if e.ItemType == catalog.ItemTypeMusic {
		return d >= musicMinDuration && d <= musicMaxDuration
	}
	return d >= sfxMinDuration && d <= sfxMaxDuration
}

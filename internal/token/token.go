// Package token provides the shared text normalization used across the
// retrieval pipeline and the reference resolver. All functions are pure;
// identical input always yields identical output, which the resolver index
// and the pipeline's determinism guarantees depend on.
package token

import (
	"regexp"
	"sort"
	"strings"
)

var (
	nonAlnumRE   = regexp.MustCompile(`[^a-z0-9\s]`)
	extensionRE  = regexp.MustCompile(`\.[a-z0-9]+$`)
	trailingIDRE = regexp.MustCompile(`-[0-9]+$`)
	keyJunkRE    = regexp.MustCompile(`[^a-z0-9]+`)
)

// stopwords is the fixed list dropped by Tokens. Short function words only;
// domain words are never filtered.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "to": {}, "of": {},
	"in": {}, "on": {}, "for": {}, "with": {}, "at": {}, "from": {}, "by": {},
	"is": {}, "it": {}, "that": {}, "this": {}, "was": {}, "are": {}, "be": {},
}

// Tokens splits free text into normalized lowercase tokens: non-alphanumeric
// characters become spaces, stopwords are dropped, and a single trailing "s"
// is stripped from tokens longer than three characters as naive plural
// stemming.
func Tokens(text string) []string {
	lower := nonAlnumRE.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(lower)
	out := make([]string, 0, len(fields))
	for _, t := range fields {
		if _, stop := stopwords[t]; stop {
			continue
		}
		if len(t) > 3 && strings.HasSuffix(t, "s") {
			t = t[:len(t)-1]
		}
		out = append(out, t)
	}
	return out
}

// FilenameTokens tokenizes an asset filename: the extension, a "mixkit-"
// vendor prefix, and a trailing numeric id ("-123") are stripped before the
// underscore/hyphen separators are treated as spaces.
func FilenameTokens(filename string) []string {
	name := strings.ToLower(filename)
	name = extensionRE.ReplaceAllString(name, "")
	name = strings.TrimPrefix(name, "mixkit-")
	name = trailingIDRE.ReplaceAllString(name, "")
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return Tokens(name)
}

// StripExtension removes a trailing file extension, lowercasing the input.
func StripExtension(name string) string {
	return extensionRE.ReplaceAllString(strings.ToLower(name), "")
}

// NormalizeKey produces the canonical lookup key for the resolver index:
// lowercase, extension stripped, every run of non-alphanumeric characters
// (spaces, hyphens, punctuation) collapsed to a single underscore, leading
// and trailing underscores trimmed.
func NormalizeKey(text string) string {
	key := StripExtension(text)
	key = keyJunkRE.ReplaceAllString(key, "_")
	return strings.Trim(key, "_")
}

// Set is a token set with the operations the pipeline needs.
type Set map[string]struct{}

// NewSet builds a Set from any number of token slices.
func NewSet(tokenLists ...[]string) Set {
	s := make(Set)
	for _, list := range tokenLists {
		for _, t := range list {
			s[t] = struct{}{}
		}
	}
	return s
}

// Add inserts a single token.
func (s Set) Add(t string) {
	s[t] = struct{}{}
}

// AddAll inserts every token from the slice.
func (s Set) AddAll(tokens []string) {
	for _, t := range tokens {
		s[t] = struct{}{}
	}
}

// Has reports membership.
func (s Set) Has(t string) bool {
	_, ok := s[t]
	return ok
}

// Overlap counts tokens present in both sets.
func (s Set) Overlap(other Set) int {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	n := 0
	for t := range small {
		if _, ok := large[t]; ok {
			n++
		}
	}
	return n
}

// Intersects reports whether any token from the slice is in the set.
func (s Set) Intersects(tokens []string) bool {
	for _, t := range tokens {
		if _, ok := s[t]; ok {
			return true
		}
	}
	return false
}

// Sorted returns the set's tokens in lexicographic order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Jaccard computes |a∩b| / |a∪b|, returning 0 when either set is empty.
func Jaccard(a, b Set) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	inter := a.Overlap(b)
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

// Package retrieval implements the suggestion pipeline: query building,
// candidate prefiltering, reranking, and diversity-aware selection over the
// catalog snapshot.
package retrieval

import (
	"strings"

	"github.com/storybutton/sound-engine/internal/token"
)

// IntentInput is the sanitized intent the pipeline consumes.
type IntentInput struct {
	Request string
	Tone    string
	Context string
	Pieces  []PieceInput
}

// PieceInput is one story element named by the intent.
type PieceInput struct {
	Name        string
	Description string
}

// maxPiecesConsulted caps how many story pieces contribute query terms.
const maxPiecesConsulted = 6

// Target mix per request type: how many music beds vs effects the selector
// aims for before backfill.
const (
	storyMusicTarget  = 14
	storySfxTarget    = 6
	adviceMusicTarget = 10
	adviceSfxTarget   = 10
	mixedMusicTarget  = 12
	mixedSfxTarget    = 8
)

// Query is the built form of an intent: the expanded term palette, the text
// used for query embedding, and the music/sfx mix the selector targets.
type Query struct {
	Request     string
	Tone        string
	Context     string
	Terms       token.Set
	TermList    []string // Terms in sorted order; bounded scans use this
	Text        string
	TargetMusic int
	TargetSfx   int
}

// BuildQuery converts an intent into a Query. Deterministic: the same intent
// always produces the same term set, text, and targets.
func BuildQuery(in IntentInput) Query {
	request := strings.ToLower(in.Request)
	tone := strings.ToLower(in.Tone)

	terms := token.NewSet(token.Tokens(in.Context))
	pieces := in.Pieces
	if len(pieces) > maxPiecesConsulted {
		pieces = pieces[:maxPiecesConsulted]
	}
	for _, p := range pieces {
		terms.AddAll(token.Tokens(p.Name))
		terms.AddAll(token.Tokens(p.Description))
	}

	expandTerms(terms, tone)

	sorted := terms.Sorted()
	text := "request:" + request + " tone:" + tone + " context:" + in.Context +
		" terms:" + strings.Join(sorted, " ")

	q := Query{
		Request:  request,
		Tone:     tone,
		Context:  in.Context,
		Terms:    terms,
		TermList: sorted,
		Text:     text,
	}

	switch request {
	case "story":
		q.TargetMusic, q.TargetSfx = storyMusicTarget, storySfxTarget
	case "advice":
		q.TargetMusic, q.TargetSfx = adviceMusicTarget, adviceSfxTarget
	default:
		q.TargetMusic, q.TargetSfx = mixedMusicTarget, mixedSfxTarget
	}

	return q
}

// toneStyles maps tone fragments to the music styles they pull in.
var toneStyles = []struct {
	fragment string
	terms    []string
}{
	{"gentle", []string{"soft_piano", "lullaby", "pads", "ambient"}},
	{"upbeat", []string{"kids", "happy", "ukulele", "pop"}},
	{"serious", []string{"calm", "ambient"}},
}

// expandTerms applies the rule-based palette expansion in place. Every rule
// condition is evaluated against the pre-expansion set, so rules never
// trigger each other and the union is order-independent.
func expandTerms(terms token.Set, tone string) {
	var added []string
	if terms.Intersects([]string{"rain", "storm", "cloud"}) || strings.Contains(tone, "gentle") {
		added = append(added, "rain", "drizzle", "soft_thunder")
	}
	if terms.Intersects([]string{"night", "sleep", "bedtime", "moon"}) {
		added = append(added, "night", "cricket", "lullaby", "soft_piano")
	}
	if terms.Intersects([]string{"castle", "cave", "dragon"}) {
		added = append(added, "wind", "fire", "wing", "cavern", "drip")
	}
	for _, style := range toneStyles {
		if strings.Contains(tone, style.fragment) {
			added = append(added, style.terms...)
		}
	}
	terms.AddAll(added)
}

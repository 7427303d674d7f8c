package retrieval

import (
	"context"
	"sort"

	"github.com/storybutton/sound-engine/internal/catalog"
	"github.com/storybutton/sound-engine/internal/embedding"
	"github.com/storybutton/sound-engine/internal/observability"
)

// Scoring weights. Overlap dominates among the lexical features; the
// embedding term, when present, carries half the final score.
const (
	overlapWeight   = 0.3
	durationWeight  = 0.15
	toneWeight      = 0.05
	embeddingWeight = 0.5
)

// Duration-fit windows: a triangular score peaking at the center and falling
// to zero at the window edges.
const (
	musicFitCenter = 25.0
	musicFitSpan   = 13.0
	musicFitMin    = 12.0
	musicFitMax    = 45.0
	sfxFitCenter   = 1.5
	sfxFitSpan     = 1.0
	sfxFitMin      = 0.5
	sfxFitMax      = 3.0
)

// toneFitScore is granted to categories that read as soft or child-friendly.
const toneFitScore = 0.5

var toneFitCategories = map[string]struct{}{
	"ambient": {},
	"kids":    {},
	"calm":    {},
	"lullaby": {},
}

// Ranked is a scored candidate ordered for selection.
type Ranked struct {
	Entry    *catalog.Entry
	Score    float64
	Overlap  int
	DurFit   float64
	EmbedSim float64
}

// Scorer ranks prefiltered candidates. The implementation is chosen once at
// construction from the available capabilities and never changes at runtime.
type Scorer interface {
	Name() string
	Rank(ctx context.Context, q Query, cands []Candidate) []Ranked
}

// NewScorer selects the scoring strategy: embedding-augmented when an encoder
// is configured, purely lexical otherwise.
func NewScorer(enc embedding.Encoder, sidecarIndex map[string]embedding.Vector, log *observability.Logger) Scorer {
	if enc == nil {
		return &LexicalScorer{}
	}
	return &EmbeddingScorer{
		enc:     enc,
		sidecar: sidecarIndex,
		log:     log.WithComponent("rerank"),
	}
}

// baseRank computes the lexical features for every candidate, in candidate
// order.
func baseRank(q Query, cands []Candidate) []Ranked {
	termCount := len(q.Terms)
	if termCount < 1 {
		termCount = 1
	}

	ranked := make([]Ranked, len(cands))
	for i, c := range cands {
		overlapNorm := float64(c.Overlap) / float64(termCount)
		durFit := durationFit(c.Entry.DurationSeconds, c.Entry.ItemType)
		toneFit := 0.0
		if _, ok := toneFitCategories[c.Entry.CategoryLower()]; ok {
			toneFit = toneFitScore
		}
		ranked[i] = Ranked{
			Entry:   c.Entry,
			Overlap: c.Overlap,
			DurFit:  durFit,
			Score:   overlapWeight*overlapNorm + durationWeight*durFit + toneWeight*toneFit,
		}
	}
	return ranked
}

// durationFit scores how close a duration sits to the sweet spot for its item
// type: 1 at the center, linear falloff, 0 outside the window or when the
// duration is unknown.
func durationFit(d float64, itemType catalog.ItemType) float64 {
	if d <= 0 {
		return 0.0
	}
	center, span, lo, hi := sfxFitCenter, sfxFitSpan, sfxFitMin, sfxFitMax
	if itemType == catalog.ItemTypeMusic {
		center, span, lo, hi = musicFitCenter, musicFitSpan, musicFitMin, musicFitMax
	}
	if d < lo || d > hi {
		return 0.0
	}
	fit := 1.0 - abs(d-center)/span
	if fit < 0 {
		return 0.0
	}
	return fit
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func sortRanked(ranked []Ranked) {
	// Stable: equal scores keep their prefilter order, which in turn keeps
	// catalog load order. Required for reproducible suggestions.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
}

// LexicalScorer ranks on lexical features alone.
type LexicalScorer struct{}

// Name identifies the strategy in telemetry.
func (s *LexicalScorer) Name() string { return "lexical" }

// Rank scores and sorts the candidates.
func (s *LexicalScorer) Rank(_ context.Context, q Query, cands []Candidate) []Ranked {
	ranked := baseRank(q, cands)
	sortRanked(ranked)
	return ranked
}

// EmbeddingScorer blends cosine similarity between the query text and each
// candidate's vector into the lexical base score. Vectors come from the
// sidecar when present and are encoded on the fly otherwise; on-the-fly
// vectors are never persisted.
type EmbeddingScorer struct {
	enc     embedding.Encoder
	sidecar map[string]embedding.Vector
	log     *observability.Logger
}

// Name identifies the strategy in telemetry.
func (s *EmbeddingScorer) Name() string { return "embedding" }

// Rank scores and sorts the candidates. If the query itself cannot be
// encoded the call degrades to lexical ranking; the failure is logged, never
// surfaced.
func (s *EmbeddingScorer) Rank(ctx context.Context, q Query, cands []Candidate) []Ranked {
	ranked := baseRank(q, cands)

	queryVecs, err := s.enc.Encode(ctx, []string{q.Text})
	if err != nil || len(queryVecs) == 0 {
		s.log.Warn().Err(err).Msg("query embedding failed, falling back to lexical ranking")
		sortRanked(ranked)
		return ranked
	}
	queryVec := queryVecs[0]

	for i := range ranked {
		vec := s.vectorFor(ctx, ranked[i].Entry)
		sim := embedding.Cosine(queryVec, vec)
		ranked[i].EmbedSim = sim
		ranked[i].Score += embeddingWeight * sim
	}

	sortRanked(ranked)
	return ranked
}

func (s *EmbeddingScorer) vectorFor(ctx context.Context, e *catalog.Entry) embedding.Vector {
	if vec, ok := s.sidecar[e.Filename]; ok {
		return vec
	}
	vecs, err := s.enc.Encode(ctx, []string{e.RowText()})
	if err != nil || len(vecs) == 0 {
		return nil
	}
	return vecs[0]
}

package retrieval

import (
	"context"
	"time"

	"github.com/storybutton/sound-engine/internal/catalog"
	"github.com/storybutton/sound-engine/internal/observability"
)

// Pipeline runs the staged suggestion flow: query building, prefiltering,
// ranking, diversity selection.
type Pipeline struct {
	store     *catalog.Store
	prefilter *Prefilter
	scorer    Scorer
	log       *observability.Logger
}

// NewPipeline wires the stages together.
func NewPipeline(store *catalog.Store, prefilter *Prefilter, scorer Scorer, log *observability.Logger) *Pipeline {
	return &Pipeline{
		store:     store,
		prefilter: prefilter,
		scorer:    scorer,
		log:       log.WithComponent("pipeline"),
	}
}

// Suggest returns up to limit catalog entries for the intent, best first.
// It never fails: an empty catalog or an over-aggressive filter yields an
// empty slice.
func (p *Pipeline) Suggest(ctx context.Context, in IntentInput, limit int) []*catalog.Entry {
	start := time.Now()
	log := p.log.WithContext(ctx)

	q := BuildQuery(in)
	log.Debug().Str("query", q.Text).Strs("terms", q.TermList).Msg("built query")

	cands := p.prefilter.Run(p.store.Entries(), q)
	ranked := p.scorer.Rank(ctx, q, cands)
	picks := SelectDiverse(ranked, q.TargetMusic, q.TargetSfx, limit)

	log.Info().
		Str("scorer", p.scorer.Name()).
		Int("terms", len(q.Terms)).
		Int("candidates", len(cands)).
		Int("picks", len(picks)).
		Dur("elapsed", time.Since(start)).
		Msg("suggestion pipeline complete")

	return picks
}

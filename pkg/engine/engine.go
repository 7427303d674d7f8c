// Package engine provides the embeddable sound suggestion engine: intent in,
// ranked playable asset suggestions out.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/storybutton/sound-engine/internal/cache"
	"github.com/storybutton/sound-engine/internal/catalog"
	"github.com/storybutton/sound-engine/internal/config"
	"github.com/storybutton/sound-engine/internal/embedding"
	"github.com/storybutton/sound-engine/internal/observability"
	"github.com/storybutton/sound-engine/internal/resolve"
	"github.com/storybutton/sound-engine/internal/retrieval"
	"github.com/storybutton/sound-engine/internal/sidecar"
)

const (
	defaultLimit    = 20
	maxContextRunes = 160
	maxPieces       = 6
	encodeBatchSize = 256
	fallbackRequest = "advice"
	fallbackTone    = "regular"
)

// Engine serves suggestions over an immutable catalog snapshot. All methods
// are safe for concurrent use.
type Engine struct {
	cfg   *config.Config
	log   *observability.Logger
	store *catalog.Store
	enc   embedding.Encoder

	mu       sync.RWMutex
	pipeline *retrieval.Pipeline

	resolver  *resolve.Resolver
	respCache *cache.Memory
}

// New loads the catalog and sidecar named by cfg and assembles the pipeline.
// A missing catalog file is not an error; the engine then serves from an
// empty snapshot.
func New(cfg *config.Config, logger *observability.Logger) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("engine: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observability.DefaultLogger()
	}

	store := catalog.LoadCSV(cfg.Catalog.CSVPath, cfg.Catalog.BucketBaseURL, logger)
	enc := embedding.NewFromSettings(cfg.Embedding.Enabled, cfg.Embedding.Dim)

	var vectors map[string]embedding.Vector
	if enc != nil {
		vectors = sidecar.Load(cfg.Sidecar.Path, enc.Model(), enc.Dim(), logger)
	}

	e := &Engine{
		cfg:      cfg,
		log:      logger,
		store:    store,
		enc:      enc,
		resolver: resolve.NewResolver(store, logger),
	}
	if cfg.Cache.Enabled {
		e.respCache = cache.NewMemory(0)
	}
	e.pipeline = e.buildPipeline(vectors)
	return e, nil
}

func (e *Engine) buildPipeline(vectors map[string]embedding.Vector) *retrieval.Pipeline {
	scorer := retrieval.NewScorer(e.enc, vectors, e.log)
	prefilter := retrieval.NewPrefilter(retrieval.NewFuzzyMatcher(e.cfg.Retrieval.Fuzzy))
	return retrieval.NewPipeline(e.store, prefilter, scorer, e.log)
}

// Suggest returns up to limit suggestions for the intent, best first. It
// never fails: an empty catalog or an unmatchable intent yields an empty
// slice. A limit at or below zero selects the default of 20.
func (e *Engine) Suggest(ctx context.Context, intent Intent, limit int) []Suggestion {
	if limit <= 0 {
		limit = defaultLimit
	}
	clean := sanitizeIntent(intent)

	requestID := uuid.NewString()
	ctx = observability.ContextWithRequestID(ctx, requestID)

	key := ""
	if e.respCache != nil {
		key = suggestKey(clean, limit)
		if raw, ok := e.respCache.Get(key); ok {
			var cached []Suggestion
			if err := json.Unmarshal(raw, &cached); err == nil {
				e.log.WithComponent("engine").Debug().
					Str("request_id", requestID).
					Msg("suggestion cache hit")
				return cached
			}
		}
	}

	e.mu.RLock()
	pipeline := e.pipeline
	e.mu.RUnlock()

	in := retrieval.IntentInput{
		Request: clean.Request,
		Tone:    clean.Tone,
		Context: clean.Context,
	}
	for _, p := range clean.Pieces {
		in.Pieces = append(in.Pieces, retrieval.PieceInput{Name: p.Name, Description: p.Description})
	}

	entries := pipeline.Suggest(ctx, in, limit)
	out := make([]Suggestion, 0, len(entries))
	for _, entry := range entries {
		out = append(out, Suggestion{
			Filename:        entry.Filename,
			DisplayTitle:    entry.Title(),
			Type:            string(entry.ItemType),
			Tags:            entry.Tags,
			DurationSeconds: entry.DurationSeconds,
			URL:             e.store.EntryURL(entry),
			Category:        entry.Category,
		})
	}

	if e.respCache != nil {
		if raw, err := json.Marshal(out); err == nil {
			e.respCache.Set(key, raw, e.cfg.Cache.TTL.AsDuration())
		}
	}
	return out
}

// Resolve maps a free-text audio reference to an asset URL. The boolean is
// false when nothing in the catalog matches.
func (e *Engine) Resolve(ref string) (string, bool) {
	return e.resolver.Resolve(ref)
}

// BuildSidecar embeds every catalog row and writes the vectors to
// outputPath, then swaps the fresh index into the running pipeline. It
// returns the number of rows embedded. Without embedding capability it is a
// no-op returning zero. An empty outputPath falls back to the configured
// sidecar path.
func (e *Engine) BuildSidecar(ctx context.Context, outputPath string) (int, error) {
	if e.enc == nil {
		return 0, nil
	}
	if outputPath == "" {
		outputPath = e.cfg.Sidecar.Path
	}

	entries := e.store.Entries()
	rows := make([]sidecar.Row, 0, len(entries))
	for start := 0; start < len(entries); start += encodeBatchSize {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		end := min(start+encodeBatchSize, len(entries))
		batch := entries[start:end]
		texts := make([]string, len(batch))
		for i, entry := range batch {
			texts[i] = entry.RowText()
		}
		vecs, err := e.enc.Encode(ctx, texts)
		if err != nil {
			return 0, err
		}
		for i, entry := range batch {
			rows = append(rows, sidecar.Row{Filename: entry.Filename, Vector: vecs[i]})
		}
	}

	if err := sidecar.Write(outputPath, e.enc.Model(), e.enc.Dim(), rows, e.log); err != nil {
		return 0, err
	}

	vectors := make(map[string]embedding.Vector, len(rows))
	for _, row := range rows {
		vectors[row.Filename] = row.Vector
	}
	e.mu.Lock()
	e.pipeline = e.buildPipeline(vectors)
	e.mu.Unlock()
	if e.respCache != nil {
		e.respCache.Purge()
	}

	return len(rows), nil
}

// Stats summarizes the loaded catalog.
func (e *Engine) Stats() Stats {
	cs := e.store.Stats()
	return Stats{
		TotalEntries:   cs.Total,
		MusicCount:     cs.Music,
		SfxCount:       cs.Sfx,
		TotalFileBytes: cs.TotalBytes,
		Categories:     cs.Categories,
		Durations: DurationBuckets{
			Unknown:   cs.Durations.Unknown,
			UnderOne:  cs.Durations.UnderOne,
			OneToFive: cs.Durations.OneToFive,
			FiveTo15:  cs.Durations.FiveTo15,
			To45:      cs.Durations.To45,
			To90:      cs.Durations.To90,
			Over90:    cs.Durations.Over90,
		},
		SkippedRows: e.store.Skipped(),
	}
}

// sanitizeIntent applies the upstream analyzer's defaulting rules so a
// malformed intent degrades instead of failing.
func sanitizeIntent(in Intent) Intent {
	out := Intent{
		Request: strings.ToLower(strings.TrimSpace(in.Request)),
		Tone:    strings.ToLower(strings.TrimSpace(in.Tone)),
		Context: in.Context,
	}
	if out.Request == "" {
		out.Request = fallbackRequest
	}
	if out.Tone == "" {
		out.Tone = fallbackTone
	} else {
		out.Tone = strings.ReplaceAll(out.Tone, " ", "_")
	}
	if runes := []rune(out.Context); len(runes) > maxContextRunes {
		out.Context = string(runes[:maxContextRunes])
	}
	for _, p := range in.Pieces {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		out.Pieces = append(out.Pieces, p)
		if len(out.Pieces) == maxPieces {
			break
		}
	}
	return out
}

func suggestKey(in Intent, limit int) string {
	raw, _ := json.Marshal(in)
	sum := sha256.Sum256(raw)
	return cache.Key("suggest", hex.EncodeToString(sum[:]), strconv.Itoa(limit))
}

// Package resolve maps free-text audio references to catalog asset URLs.
package resolve

import (
	"strings"
	"sync"

	"github.com/storybutton/sound-engine/internal/catalog"
	"github.com/storybutton/sound-engine/internal/observability"
	"github.com/storybutton/sound-engine/internal/token"
)

// Resolver looks up asset URLs for loosely-written references: filenames
// with or without extension, display titles, single tags, or full URLs.
type Resolver struct {
	store *catalog.Store
	log   *observability.Logger

	once  sync.Once
	index map[string]string
	keys  []string
}

// NewResolver creates a resolver over the store. The lookup index is built
// on first use.
func NewResolver(store *catalog.Store, log *observability.Logger) *Resolver {
	return &Resolver{
		store: store,
		log:   log.WithComponent("resolve"),
	}
}

// Resolve returns the URL for a reference, or false when nothing in the
// catalog matches. References that already are URLs pass through unchanged.
func (r *Resolver) Resolve(ref string) (string, bool) {
	t := strings.TrimSpace(ref)
	t = strings.TrimSpace(strings.TrimPrefix(t, "@"))
	if t == "" {
		return "", false
	}
	if strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://") {
		return t, true
	}

	r.once.Do(r.buildIndex)

	norm := token.NormalizeKey(t)
	if norm != "" {
		if url, ok := r.index[norm]; ok {
			return url, true
		}
	}

	// A second extension strip catches references like "rain.mp3.bak".
	stripped := token.NormalizeKey(token.StripExtension(t))
	if stripped != "" && stripped != norm {
		if url, ok := r.index[stripped]; ok {
			return url, true
		}
	}

	// Substring pass in index insertion order, which follows catalog load
	// order for reproducible first-match behavior.
	if norm != "" {
		for _, k := range r.keys {
			if strings.Contains(k, norm) || strings.Contains(norm, k) {
				return r.index[k], true
			}
		}
	}

	if url, ok := r.scanCatalog(t); ok {
		return url, true
	}

	r.log.Debug().Str("ref", ref).Msg("reference unresolved")
	return "", false
}

// buildIndex maps every normalized filename, title, and tag key to its
// entry's URL. The first entry to claim a key keeps it.
func (r *Resolver) buildIndex() {
	r.index = make(map[string]string)
	for _, e := range r.store.Entries() {
		url := r.store.EntryURL(e)
		r.addKey(token.NormalizeKey(e.Filename), url)
		r.addKey(token.NormalizeKey(e.Title()), url)
		for _, tag := range e.TagList() {
			r.addKey(token.NormalizeKey(tag), url)
		}
	}
	r.log.Debug().Int("keys", len(r.keys)).Msg("resolver index built")
}

func (r *Resolver) addKey(key, url string) {
	if key == "" {
		return
	}
	if _, exists := r.index[key]; exists {
		return
	}
	r.index[key] = url
	r.keys = append(r.keys, key)
}

// scanCatalog is the last-resort pass over raw rows: exact lowercase
// filename match, or stem containment in either direction.
func (r *Resolver) scanCatalog(t string) (string, bool) {
	lower := strings.ToLower(t)
	stem := token.StripExtension(lower)
	for _, e := range r.store.Entries() {
		fn := strings.ToLower(e.Filename)
		if fn == lower {
			return r.store.EntryURL(e), true
		}
		if stem == "" {
			continue
		}
		fnStem := token.StripExtension(fn)
		if strings.Contains(fnStem, stem) || strings.Contains(stem, fnStem) {
			return r.store.EntryURL(e), true
		}
	}
	return "", false
}

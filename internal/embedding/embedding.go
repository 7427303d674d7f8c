// Package embedding provides the local embedding capability used for
// semantic reranking. Inference is a bounded in-process computation; there is
// no model download and no network call, so the capability is either fully
// available or cleanly disabled.
package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/storybutton/sound-engine/internal/token"
)

// Vector is a dense embedding vector.
type Vector = []float32

// Encoder turns texts into fixed-dimension vectors. Implementations must be
// deterministic: the sidecar store persists vectors across processes and the
// suggestion pipeline's reproducibility depends on stable encodings.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([]Vector, error)
	Model() string
	Dim() int
}

// NewFromSettings returns the configured encoder, or nil when the embedding
// capability is disabled. Callers treat a nil encoder as "lexical scoring
// only".
func NewFromSettings(enabled bool, dim int) Encoder {
	if !enabled {
		return nil
	}
	return NewHashEncoder(dim)
}

const (
	hashModelID = "feature-hash-v1"
	defaultDim  = 256
)

var rawTokenRE = regexp.MustCompile(`[a-z0-9]+`)

// HashEncoder is a feature-hashing bag-of-words encoder. Each token is hashed
// into one of Dim buckets with a sign bit taken from the hash, and the
// resulting vector is L2-normalized. Crude next to a learned model, but it
// keeps rare tag vocabulary (wing, cavern, ukulele) linearly separable, runs
// anywhere, and encodes identically on every device in the fleet.
type HashEncoder struct {
	dim int
}

// NewHashEncoder creates a HashEncoder with the given dimension.
func NewHashEncoder(dim int) *HashEncoder {
	if dim <= 0 {
		dim = defaultDim
	}
	return &HashEncoder{dim: dim}
}

var _ Encoder = (*HashEncoder)(nil)

// Encode embeds each text. Empty or token-free text yields a zero vector.
// The error return satisfies Encoder; hashing cannot fail.
func (e *HashEncoder) Encode(_ context.Context, texts []string) ([]Vector, error) {
	out := make([]Vector, len(texts))
	for i, text := range texts {
		out[i] = e.encodeOne(text)
	}
	return out, nil
}

func (e *HashEncoder) encodeOne(text string) Vector {
	vec := make(Vector, e.dim)

	// Both the normalized token stream and the raw alphanumeric stream are
	// hashed: normalization folds plurals together while the raw stream keeps
	// exact vocabulary (stopwords included) contributing signal.
	for _, t := range token.Tokens(text) {
		e.accumulate(vec, t)
	}
	for _, t := range rawTokenRE.FindAllString(strings.ToLower(text), -1) {
		e.accumulate(vec, t)
	}

	normalize(vec)
	return vec
}

func (e *HashEncoder) accumulate(vec Vector, tok string) {
	h := fnv.New64a()
	h.Write([]byte(tok))
	sum := h.Sum64()
	bucket := int(sum % uint64(e.dim))
	if sum>>63&1 == 1 {
		vec[bucket]--
	} else {
		vec[bucket]++
	}
}

// Model returns the encoder's model identifier, recorded in the sidecar so a
// stale sidecar from a different encoder is never mixed in.
func (e *HashEncoder) Model() string {
	return hashModelID
}

// Dim returns the vector dimension.
func (e *HashEncoder) Dim() int {
	return e.dim
}

func normalize(vec Vector) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}

// Cosine computes cosine similarity, returning 0 when either vector is empty,
// zero-norm, or the dimensions disagree.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromSettings(t *testing.T) {
	assert.Nil(t, NewFromSettings(false, 256), "disabled capability returns no encoder")

	enc := NewFromSettings(true, 64)
	require.NotNil(t, enc)
	assert.Equal(t, 64, enc.Dim())
	assert.Equal(t, "feature-hash-v1", enc.Model())
}

func TestNewHashEncoder_DefaultDim(t *testing.T) {
	assert.Equal(t, 256, NewHashEncoder(0).Dim())
	assert.Equal(t, 256, NewHashEncoder(-5).Dim())
	assert.Equal(t, 32, NewHashEncoder(32).Dim())
}

func TestHashEncoder_Deterministic(t *testing.T) {
	enc := NewHashEncoder(128)

	first, err := enc.Encode(context.Background(), []string{"gentle rain on a castle roof"})
	require.NoError(t, err)
	second, err := enc.Encode(context.Background(), []string{"gentle rain on a castle roof"})
	require.NoError(t, err)

	assert.Equal(t, first[0], second[0], "identical text must encode identically")
}

func TestHashEncoder_UnitNorm(t *testing.T) {
	enc := NewHashEncoder(128)

	vecs, err := enc.Encode(context.Background(), []string{"night crickets chirping"})
	require.NoError(t, err)
	require.Len(t, vecs, 1)

	var sum float64
	for _, v := range vecs[0] {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, sum, 1e-5, "non-empty text encodes to a unit vector")
}

func TestHashEncoder_EmptyText(t *testing.T) {
	enc := NewHashEncoder(16)

	vecs, err := enc.Encode(context.Background(), []string{"", "   ", "!!!"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	for i, vec := range vecs {
		require.Len(t, vec, 16)
		for _, v := range vec {
			assert.Zero(t, v, "text %d should produce a zero vector", i)
		}
	}
}

func TestHashEncoder_RelatedTextIsCloser(t *testing.T) {
	enc := NewHashEncoder(256)

	vecs, err := enc.Encode(context.Background(), []string{
		"gentle rain ambient soft rain loop",
		"soft gentle rain ambient",
		"ukulele happy kids pop tune",
	})
	require.NoError(t, err)

	related := Cosine(vecs[0], vecs[1])
	unrelated := Cosine(vecs[0], vecs[2])
	assert.Greater(t, related, unrelated, "shared vocabulary should raise similarity")
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a        Vector
		b        Vector
		expected float64
	}{
		{"identical", Vector{1, 0, 0}, Vector{1, 0, 0}, 1.0},
		{"opposite", Vector{1, 0}, Vector{-1, 0}, -1.0},
		{"orthogonal", Vector{1, 0}, Vector{0, 1}, 0.0},
		{"empty left", nil, Vector{1}, 0.0},
		{"empty right", Vector{1}, nil, 0.0},
		{"dimension mismatch", Vector{1, 0}, Vector{1, 0, 0}, 0.0},
		{"zero norm", Vector{0, 0}, Vector{1, 1}, 0.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Cosine(tc.a, tc.b), 1e-9)
		})
	}
}

func TestCosine_Scaled(t *testing.T) {
	a := Vector{0.5, 0.25, 0}
	b := Vector{1, 0.5, 0}

	assert.InDelta(t, 1.0, Cosine(a, b), 1e-6, "cosine is scale invariant")
	assert.False(t, math.IsNaN(Cosine(a, b)))
}

package vectorindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLengthMismatch(t *testing.T) {
	_, err := Build([]string{"a", "b"}, [][]float32{{1, 0}})

	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestSearchRanksBySimilarity(t *testing.T) {
	idx, err := Build(
		[]string{"east", "north", "northeast"},
		[][]float32{
			{1, 0},
			{0, 1},
			{0.7, 0.7},
		},
	)
	require.NoError(t, err)

	got := idx.Search([]float32{1, 0.1}, 2)

	assert.Equal(t, []string{"east", "northeast"}, got)
}

func TestSearchCapsAtIndexSize(t *testing.T) {
	idx, err := Build([]string{"only"}, [][]float32{{1, 0}})
	require.NoError(t, err)

	got := idx.Search([]float32{0, 1}, 4)

	assert.Equal(t, []string{"only"}, got)
}

func TestSearchEmptyIndex(t *testing.T) {
	idx, err := Build(nil, nil)
	require.NoError(t, err)

	assert.Nil(t, idx.Search([]float32{1}, 4))
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 0}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}

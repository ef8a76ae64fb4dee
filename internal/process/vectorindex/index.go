// Package vectorindex holds an in-memory brute-force vector index over text
// chunks. Corpora are small (a few dozen chunks per video) so exact cosine
// search beats maintaining an ANN structure.
package vectorindex

import (
	"errors"
	"math"
	"sort"
)

var ErrLengthMismatch = errors.New("chunk and vector counts differ")

type entry struct {
	text   string
	vector []float32
}

// Index is an immutable snapshot of embedded chunks for one video.
type Index struct {
	entries []entry
}

// Build pairs chunks with their embedding vectors.
func Build(chunks []string, vectors [][]float32) (*Index, error) {
	if len(chunks) != len(vectors) {
		return nil, ErrLengthMismatch
	}

	entries := make([]entry, len(chunks))
	for i := range chunks {
		entries[i] = entry{text: chunks[i], vector: vectors[i]}
	}

	return &Index{entries: entries}, nil
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Search returns the text of the k chunks most similar to the query vector,
// in descending similarity order. Fewer than k results are returned when the
// index is smaller than k.
func (idx *Index) Search(query []float32, k int) []string {
	if k <= 0 || len(idx.entries) == 0 {
		return nil
	}

	type scored struct {
		text  string
		score float32
	}

	results := make([]scored, len(idx.entries))
	for i, e := range idx.entries {
		results[i] = scored{text: e.text, score: CosineSimilarity(query, e.vector)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if k > len(results) {
		k = len(results)
	}

	texts := make([]string, k)
	for i := 0; i < k; i++ {
		texts[i] = results[i].text
	}

	return texts
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for mismatched lengths or zero-magnitude vectors.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64

	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

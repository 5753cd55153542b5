package utils

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"

	"edusynapse/config"
)

// HashEmbedding generates a deterministic embedding from a text hash. It is
// the no-dependency fallback used when no embedding API key is configured:
// identical texts always map to identical vectors, so similarity search
// stays stable across restarts.
func HashEmbedding(text string) []float64 {
	dims := 384
	if config.AppConfig != nil && config.AppConfig.VectorDimensions > 0 {
		dims = config.AppConfig.VectorDimensions
	}

	sum := sha256.Sum256([]byte(text))
	seed := int64(binary.BigEndian.Uint32(sum[:4]))
	rng := rand.New(rand.NewSource(seed))

	vector := make([]float64, dims)
	for i := range vector {
		vector[i] = rng.Float64()*2 - 1
	}
	return vector
}

// CosineSimilarity returns the cosine similarity of two vectors, or 0 when
// either has zero magnitude or the lengths differ.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Normalize returns a unit-length copy of the vector. Zero vectors pass
// through unchanged.
func Normalize(vector []float64) []float64 {
	var norm float64
	for _, v := range vector {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vector
	}

	out := make([]float64, len(vector))
	for i, v := range vector {
		out[i] = v / norm
	}
	return out
}

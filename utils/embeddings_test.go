package utils

import (
	"math"
	"testing"
)

func TestHashEmbeddingDeterministic(t *testing.T) {
	first := HashEmbedding("photosynthesis converts light into energy")
	second := HashEmbedding("photosynthesis converts light into energy")

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestHashEmbeddingDistinctInputs(t *testing.T) {
	a := HashEmbedding("algebra")
	b := HashEmbedding("geometry")

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical vectors")
	}
}

func TestHashEmbeddingRange(t *testing.T) {
	vector := HashEmbedding("bounded components")
	if len(vector) == 0 {
		t.Fatal("empty vector")
	}
	for i, v := range vector {
		if v < -1 || v >= 1 {
			t.Errorf("component %d = %v, want [-1, 1)", i, v)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 0, 0}, []float64{1, 0, 0}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"length mismatch", []float64{1}, []float64{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	normalized := Normalize([]float64{3, 4})

	var magnitude float64
	for _, v := range normalized {
		magnitude += v * v
	}
	if math.Abs(math.Sqrt(magnitude)-1) > 1e-9 {
		t.Errorf("normalized magnitude = %v, want 1", math.Sqrt(magnitude))
	}

	zero := Normalize([]float64{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("Normalize(zero) = %v, want zero vector", zero)
	}
}

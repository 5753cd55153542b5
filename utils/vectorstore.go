package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// VectorEntry is one indexed vector with its lookup metadata.
type VectorEntry struct {
	ContentID string            `json:"content_id"`
	Vector    []float64         `json:"vector"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// VectorMatch is a search hit with its similarity score.
type VectorMatch struct {
	ContentID string
	Score     float64
	Metadata  map[string]string
}

// VectorStore is an in-memory vector index with JSON persistence and linear
// cosine search. Vectors are normalized on insert so search reduces to a
// dot product.
type VectorStore struct {
	mu      sync.RWMutex
	path    string
	entries []VectorEntry
	byID    map[string]int
}

// NewVectorStore creates a store persisting to path. An existing index file
// is loaded; a missing or unreadable one starts the store empty.
func NewVectorStore(path string) *VectorStore {
	store := &VectorStore{
		path: path,
		byID: make(map[string]int),
	}
	store.load()
	return store
}

func (s *VectorStore) load() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return
	}

	var entries []VectorEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return
	}

	s.entries = entries
	for i, entry := range entries {
		s.byID[entry.ContentID] = i
	}
}

// Save writes the index to disk.
func (s *VectorStore) Save() error {
	s.mu.RLock()
	raw, err := json.Marshal(s.entries)
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, raw, 0o644)
}

// Add indexes a vector under contentID. Re-adding an existing ID replaces
// the stored vector.
func (s *VectorStore) Add(contentID string, vector []float64, metadata map[string]string) {
	normalized := Normalize(vector)

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.byID[contentID]; ok {
		s.entries[idx].Vector = normalized
		s.entries[idx].Metadata = metadata
		return
	}

	s.byID[contentID] = len(s.entries)
	s.entries = append(s.entries, VectorEntry{
		ContentID: contentID,
		Vector:    normalized,
		Metadata:  metadata,
	})
}

// Search returns the topK most similar entries to the query vector.
func (s *VectorStore) Search(query []float64, topK int) []VectorMatch {
	normalized := Normalize(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 || topK <= 0 {
		return nil
	}

	matches := make([]VectorMatch, 0, len(s.entries))
	for _, entry := range s.entries {
		score := dot(normalized, entry.Vector)
		matches = append(matches, VectorMatch{
			ContentID: entry.ContentID,
			Score:     score,
			Metadata:  entry.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// Get returns the stored vector for contentID, or nil when absent.
func (s *VectorStore) Get(contentID string) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[contentID]
	if !ok {
		return nil
	}
	return s.entries[idx].Vector
}

// Size returns the number of indexed vectors.
func (s *VectorStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

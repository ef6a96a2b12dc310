package vectorstore

import (
	"math"
	"sort"
	"sync"
)

type memoryEntry struct {
	id      string
	vector  []float32
	payload any
}

// MemoryIndex is a brute-force in-memory Index. The corpus it serves is
// small and built once at startup, so a linear scan per query is enough.
// Safe for concurrent reads once building is done.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries []memoryEntry
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

func (m *MemoryIndex) Insert(id string, vector []float32, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]float32, len(vector))
	copy(v, vector)
	m.entries = append(m.entries, memoryEntry{id: id, vector: v, payload: payload})
}

// QueryKNearest returns up to k entries ordered by ascending cosine
// distance. Equal distances keep insertion order, so results are
// deterministic for a fixed index.
func (m *MemoryIndex) QueryKNearest(vector []float32, k int) []Match {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if k <= 0 || len(m.entries) == 0 {
		return nil
	}

	matches := make([]Match, 0, len(m.entries))
	for _, e := range m.entries {
		matches = append(matches, Match{
			ID:       e.id,
			Payload:  e.payload,
			Distance: 1 - CosineSimilarity(vector, e.vector),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	if k < len(matches) {
		matches = matches[:k]
	}
	return matches
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// CosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched lengths and zero vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

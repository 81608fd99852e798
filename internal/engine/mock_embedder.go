package engine

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
)

// MockEmbedder is a test implementation of the Embedder interface.
// Vectors registered with SetVector are returned verbatim; any other text
// gets a deterministic vector derived from its hash, so unrelated texts
// rarely score high against each other. Call counts are recorded so tests
// can assert how often the provider was invoked.
type MockEmbedder struct {
	vectors    map[string][]float32
	failures   map[string]error
	dimension  int
	embedCalls int
	batchCalls int
	mu         sync.Mutex
}

// NewMockEmbedder creates a mock embedder producing vectors of the given
// dimension.
func NewMockEmbedder(dimension int) *MockEmbedder {
	if dimension <= 0 {
		dimension = 8
	}
	return &MockEmbedder{
		vectors:   make(map[string][]float32),
		failures:  make(map[string]error),
		dimension: dimension,
	}
}

// SetVector registers a fixed vector for a text.
func (m *MockEmbedder) SetVector(text string, vector []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[text] = vector
}

// FailOn makes embedding of the given text return err.
func (m *MockEmbedder) FailOn(text string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[text] = err
}

// EmbedCalls returns how many single-text embeddings were requested.
func (m *MockEmbedder) EmbedCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.embedCalls
}

// BatchCalls returns how many batch embeddings were requested.
func (m *MockEmbedder) BatchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batchCalls
}

// Embed returns the vector for a single text.
func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	return m.vectorFor(text)
}

// EmbedBatch returns vectors for multiple texts.
func (m *MockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := m.vectorFor(text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vector
	}
	return vectors, nil
}

func (m *MockEmbedder) vectorFor(text string) ([]float32, error) {
	if err, ok := m.failures[text]; ok {
		return nil, err
	}
	if vector, ok := m.vectors[text]; ok {
		return vector, nil
	}

	// Deterministic pseudo-random unit vector seeded by the text.
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vector := make([]float32, m.dimension)
	var norm float64
	for i := range vector {
		seed = seed*6364136223846793005 + 1442695040888963407
		component := float64(int64(seed>>11))/float64(1<<52) - 1
		vector[i] = float32(component)
		norm += component * component
	}
	if norm == 0 {
		return nil, fmt.Errorf("degenerate vector for %q", text)
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vector {
		vector[i] *= scale
	}
	return vector, nil
}

package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/ledgersage/ledgersage/internal/common"
	"github.com/ledgersage/ledgersage/internal/model"
)

// Matcher scores transaction descriptions against a prebuilt label catalog.
// Label embeddings are computed once at construction and reused for every
// query, so one matcher serves an entire batch.
type Matcher struct {
	embedder   Embedder
	labels     []model.Label
	embeddings [][]float32
}

// Match is the outcome of scoring one description against the catalog.
type Match struct {
	Label model.Label
	Score float64
	Index int
}

// NewMatcher embeds the label catalog and returns a matcher ready for
// queries. An empty catalog cannot match anything and is rejected here,
// before any embedding work happens.
func NewMatcher(ctx context.Context, embedder Embedder, labels []model.Label) (*Matcher, error) {
	if len(labels) == 0 {
		return nil, common.ErrEmptyLabelCatalog
	}

	texts := make([]string, len(labels))
	for i, label := range labels {
		texts[i] = label.Text
	}

	embeddings, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed label catalog: %w", err)
	}
	if len(embeddings) != len(labels) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d labels", len(embeddings), len(labels))
	}

	return &Matcher{
		embedder:   embedder,
		labels:     labels,
		embeddings: embeddings,
	}, nil
}

// Labels returns the catalog this matcher was built from.
func (m *Matcher) Labels() []model.Label {
	return m.labels
}

// Match embeds the description and returns the best-scoring label.
// Ties break to the lowest index, so an earlier category label wins over a
// later correction label with an equal score.
func (m *Matcher) Match(ctx context.Context, description string) (Match, error) {
	queryEmbedding, err := m.embedder.Embed(ctx, description)
	if err != nil {
		return Match{}, fmt.Errorf("failed to embed description %q: %w", description, err)
	}

	bestIndex := 0
	bestScore := math.Inf(-1)
	for i, labelEmbedding := range m.embeddings {
		score := cosineSimilarity(queryEmbedding, labelEmbedding)
		if score > bestScore {
			bestIndex = i
			bestScore = score
		}
	}

	return Match{
		Label: m.labels[bestIndex],
		Score: bestScore,
		Index: bestIndex,
	}, nil
}

// cosineSimilarity computes the normalized dot product of two vectors,
// yielding a value in [-1, 1]. Mismatched or zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
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

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

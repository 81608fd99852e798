package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/ledgersage/ledgersage/internal/common"
	"github.com/ledgersage/ledgersage/internal/model"
)

func TestNewMatcherEmptyCatalog(t *testing.T) {
	embedder := NewMockEmbedder(4)

	_, err := NewMatcher(context.Background(), embedder, nil)
	if !errors.Is(err, common.ErrEmptyLabelCatalog) {
		t.Errorf("expected ErrEmptyLabelCatalog, got %v", err)
	}

	// No embedding work should happen for an unmatched catalog.
	if embedder.BatchCalls() != 0 {
		t.Errorf("expected no batch calls, got %d", embedder.BatchCalls())
	}
}

func TestMatcherScoreRangeAndIndex(t *testing.T) {
	embedder := NewMockEmbedder(8)
	ctx := context.Background()

	var labels []model.Label
	for i := 0; i < 7; i++ {
		labels = append(labels, model.Label{Text: fmt.Sprintf("label-%d", i), Origin: model.OriginCategory})
	}

	matcher, err := NewMatcher(ctx, embedder, labels)
	if err != nil {
		t.Fatalf("NewMatcher failed: %v", err)
	}

	queries := []string{"Starbucks purchase", "unrelated text", "", "label-3"}
	for _, query := range queries {
		match, err := matcher.Match(ctx, query)
		if err != nil {
			t.Fatalf("Match(%q) failed: %v", query, err)
		}
		if match.Score < -1 || match.Score > 1 {
			t.Errorf("Match(%q) score %f outside [-1, 1]", query, match.Score)
		}
		if match.Index < 0 || match.Index >= len(labels) {
			t.Errorf("Match(%q) index %d outside catalog", query, match.Index)
		}
		if match.Label.Text != labels[match.Index].Text {
			t.Errorf("Match(%q) label does not correspond to its index", query)
		}
	}
}

func TestMatcherTieBreakLowestIndex(t *testing.T) {
	embedder := NewMockEmbedder(2)
	ctx := context.Background()

	// Both labels embed identically, so both score the same against any
	// query. The earlier category label must win over the correction.
	same := []float32{1, 0}
	embedder.SetVector("Coffee", same)
	embedder.SetVector("Espresso", same)
	embedder.SetVector("latte", []float32{1, 0.1})

	labels := []model.Label{
		{Text: "Coffee", Category: "Dining", Origin: model.OriginCategory},
		{Text: "Espresso", Category: "Drinks", Origin: model.OriginCorrection},
	}

	matcher, err := NewMatcher(ctx, embedder, labels)
	if err != nil {
		t.Fatalf("NewMatcher failed: %v", err)
	}

	match, err := matcher.Match(ctx, "latte")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if match.Index != 0 {
		t.Errorf("tie must break to lowest index, got %d", match.Index)
	}
	if match.Label.Origin != model.OriginCategory {
		t.Errorf("expected category origin to win the tie, got %s", match.Label.Origin)
	}
}

func TestMatcherPicksClosestLabel(t *testing.T) {
	embedder := NewMockEmbedder(3)
	ctx := context.Background()

	embedder.SetVector("Coffee", []float32{1, 0, 0})
	embedder.SetVector("Fuel", []float32{0, 1, 0})
	embedder.SetVector("Starbucks purchase", []float32{0.9, 0.1, 0})

	labels := []model.Label{
		{Text: "Coffee", Category: "Dining", DestinationAcc: "AcctA", Origin: model.OriginCategory},
		{Text: "Fuel", Category: "Auto", DestinationAcc: "AcctB", Origin: model.OriginCategory},
	}

	matcher, err := NewMatcher(ctx, embedder, labels)
	if err != nil {
		t.Fatalf("NewMatcher failed: %v", err)
	}

	match, err := matcher.Match(ctx, "Starbucks purchase")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}

	if match.Label.Category != "Dining" || match.Label.DestinationAcc != "AcctA" {
		t.Errorf("unexpected winner: %+v", match.Label)
	}

	want := cosineSimilarity([]float32{0.9, 0.1, 0}, []float32{1, 0, 0})
	if math.Abs(match.Score-want) > 1e-9 {
		t.Errorf("score = %f, want %f", match.Score, want)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{"identical direction", []float32{1, 0}, []float32{2, 0}, 1},
		{"opposite direction", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosineSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgersage/ledgersage/internal/common"
	"github.com/ledgersage/ledgersage/internal/model"
	"github.com/ledgersage/ledgersage/internal/storage"
)

func newTestEngine(t *testing.T) (*Engine, *storage.SQLiteStorage, *MockEmbedder) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	embedder := NewMockEmbedder(3)
	return New(store, embedder), store, embedder
}

func seedTransactions(t *testing.T, store *storage.SQLiteStorage, projectID string, descriptions ...string) []model.Transaction {
	t.Helper()
	ctx := context.Background()

	txns := make([]model.Transaction, len(descriptions))
	for i, desc := range descriptions {
		txns[i] = model.Transaction{
			ID:          uuid.NewString(),
			ProjectID:   projectID,
			Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Description: desc,
			Amount:      decimal.NewFromInt(int64(i + 1)),
		}
	}

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreateTransactions(ctx, txns))
	require.NoError(t, tx.Commit())
	return txns
}

func TestRescoreProjectMatchesCategory(t *testing.T) {
	eng, store, embedder := newTestEngine(t)
	ctx := context.Background()

	embedder.SetVector("Coffee", []float32{1, 0, 0})
	embedder.SetVector("Starbucks purchase", []float32{0.9, 0.1, 0})

	_, err := store.CreateCategory(ctx, "Coffee", "Dining", "AcctA")
	require.NoError(t, err)

	project, err := store.CreateProject(ctx, "test")
	require.NoError(t, err)
	txns := seedTransactions(t, store, project.ID, "Starbucks purchase")

	stats, err := eng.RescoreProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Matched: 1}, stats)

	got, err := store.GetTransactionByID(ctx, txns[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Dining", got.Category)
	assert.Equal(t, "AcctA", got.DestinationAcc)
	require.True(t, got.Scored())

	want := cosineSimilarity([]float32{0.9, 0.1, 0}, []float32{1, 0, 0})
	assert.InDelta(t, want, got.Score.Decimal.InexactFloat64(), 1e-9)
}

func TestRescoreProjectEmptyCatalog(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()

	project, err := store.CreateProject(ctx, "test")
	require.NoError(t, err)
	txns := seedTransactions(t, store, project.ID, "anything")

	_, err = eng.RescoreProject(ctx, project.ID)
	require.ErrorIs(t, err, common.ErrEmptyLabelCatalog)

	// The transaction must remain unscored, not zero-scored.
	got, err := store.GetTransactionByID(ctx, txns[0].ID)
	require.NoError(t, err)
	assert.False(t, got.Scored())
}

func TestRescoreProjectEmbedsCatalogOnce(t *testing.T) {
	eng, store, embedder := newTestEngine(t)
	ctx := context.Background()

	_, err := store.CreateCategory(ctx, "Coffee", "Dining", "AcctA")
	require.NoError(t, err)
	require.NoError(t, store.UpsertCorrection(ctx, "Trader Joe's", "Groceries", "AcctB"))

	project, err := store.CreateProject(ctx, "test")
	require.NoError(t, err)

	var descriptions []string
	for i := 0; i < 5; i++ {
		descriptions = append(descriptions, fmt.Sprintf("purchase %d", i))
	}
	seedTransactions(t, store, project.ID, descriptions...)

	_, err = eng.RescoreProject(ctx, project.ID)
	require.NoError(t, err)

	// The label catalog is embedded exactly once regardless of batch size;
	// only the per-transaction queries go through Embed.
	assert.Equal(t, 1, embedder.BatchCalls())
	assert.Equal(t, 5, embedder.EmbedCalls())
}

func TestRescoreProjectSkipsFailingItem(t *testing.T) {
	eng, store, embedder := newTestEngine(t)
	ctx := context.Background()

	embedder.SetVector("Coffee", []float32{1, 0, 0})
	embedder.FailOn("broken text", errors.New("malformed encoding"))

	_, err := store.CreateCategory(ctx, "Coffee", "Dining", "AcctA")
	require.NoError(t, err)

	project, err := store.CreateProject(ctx, "test")
	require.NoError(t, err)
	txns := seedTransactions(t, store, project.ID, "broken text", "Coffee")

	stats, err := eng.RescoreProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 2, Matched: 1, Failed: 1}, stats)

	failed, err := store.GetTransactionByID(ctx, txns[0].ID)
	require.NoError(t, err)
	assert.False(t, failed.Scored())

	matched, err := store.GetTransactionByID(ctx, txns[1].ID)
	require.NoError(t, err)
	assert.True(t, matched.Scored())
}

func TestRescoreTransaction(t *testing.T) {
	eng, store, embedder := newTestEngine(t)
	ctx := context.Background()

	embedder.SetVector("Coffee", []float32{1, 0, 0})
	embedder.SetVector("morning espresso", []float32{0.8, 0, 0})

	_, err := store.CreateCategory(ctx, "Coffee", "Dining", "AcctA")
	require.NoError(t, err)

	project, err := store.CreateProject(ctx, "test")
	require.NoError(t, err)
	txns := seedTransactions(t, store, project.ID, "morning espresso")

	require.NoError(t, eng.RescoreTransaction(ctx, txns[0].ID))

	got, err := store.GetTransactionByID(ctx, txns[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Dining", got.Category)
	assert.True(t, got.Scored())
}

func TestImportRowsScoresAndCommits(t *testing.T) {
	eng, store, embedder := newTestEngine(t)
	ctx := context.Background()

	embedder.SetVector("Coffee", []float32{1, 0, 0})
	embedder.SetVector("Starbucks purchase", []float32{0.9, 0.1, 0})

	_, err := store.CreateCategory(ctx, "Coffee", "Dining", "AcctA")
	require.NoError(t, err)

	project, err := store.CreateProject(ctx, "test")
	require.NoError(t, err)

	rows := []model.ImportRow{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Description: "Starbucks purchase", Amount: decimal.RequireFromString("4.50")},
		{Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Description: "something else", Amount: decimal.RequireFromString("12.00")},
	}

	stats, err := eng.ImportRows(ctx, project.ID, "Checking", rows)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Matched)
	assert.Equal(t, 1, embedder.BatchCalls())

	txns, err := store.GetTransactionsByProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "Dining", txns[0].Category)
	assert.Equal(t, "AcctA", txns[0].DestinationAcc)
	assert.Equal(t, "Checking", txns[0].SourceAcc)
	assert.True(t, txns[0].Scored())
}

func TestImportRowsEmbeddingFailureImportsUnscored(t *testing.T) {
	eng, store, embedder := newTestEngine(t)
	ctx := context.Background()

	embedder.SetVector("Coffee", []float32{1, 0, 0})
	embedder.FailOn("garbage", errors.New("malformed encoding"))

	_, err := store.CreateCategory(ctx, "Coffee", "Dining", "AcctA")
	require.NoError(t, err)

	project, err := store.CreateProject(ctx, "test")
	require.NoError(t, err)

	rows := []model.ImportRow{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Description: "garbage", Amount: decimal.NewFromInt(1)},
		{Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Description: "Coffee", Amount: decimal.NewFromInt(2)},
	}

	stats, err := eng.ImportRows(ctx, project.ID, "Checking", rows)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 2, Matched: 1, Failed: 1}, stats)

	txns, err := store.GetTransactionsByProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.False(t, txns[0].Scored())
	assert.True(t, txns[1].Scored())
}

func TestImportRowsEmptyCatalog(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()

	project, err := store.CreateProject(ctx, "test")
	require.NoError(t, err)

	rows := []model.ImportRow{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Description: "anything", Amount: decimal.NewFromInt(1)},
	}

	_, err = eng.ImportRows(ctx, project.ID, "Checking", rows)
	require.ErrorIs(t, err, common.ErrEmptyLabelCatalog)

	// Nothing gets half-written.
	txns, err := store.GetTransactionsByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestMinScoreLeavesTransactionUnscored(t *testing.T) {
	_, store, embedder := newTestEngine(t)
	eng := NewWithConfig(store, embedder, Config{MinScore: 0.9})
	ctx := context.Background()

	embedder.SetVector("Coffee", []float32{1, 0, 0})
	embedder.SetVector("completely unrelated", []float32{0, 1, 0})

	_, err := store.CreateCategory(ctx, "Coffee", "Dining", "AcctA")
	require.NoError(t, err)

	project, err := store.CreateProject(ctx, "test")
	require.NoError(t, err)
	txns := seedTransactions(t, store, project.ID, "completely unrelated")

	stats, err := eng.RescoreProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Skipped: 1}, stats)

	got, err := store.GetTransactionByID(ctx, txns[0].ID)
	require.NoError(t, err)
	assert.False(t, got.Scored())
}

func TestApplyUserEditRecordsCorrection(t *testing.T) {
	eng, store, embedder := newTestEngine(t)
	ctx := context.Background()

	_, err := store.CreateCategory(ctx, "Coffee", "Dining", "AcctA")
	require.NoError(t, err)

	project, err := store.CreateProject(ctx, "test")
	require.NoError(t, err)
	txns := seedTransactions(t, store, project.ID, "Trader Joe's")

	require.NoError(t, store.ApplyMatch(ctx, txns[0].ID, "Dining", "AcctA", decimal.NewFromFloat(0.6)))

	changed, err := eng.ApplyUserEdit(ctx, txns[0].ID, "Groceries", "AcctB")
	require.NoError(t, err)
	assert.True(t, changed)

	corrections, err := store.GetUserCorrections(ctx)
	require.NoError(t, err)
	require.Len(t, corrections, 1)
	assert.Equal(t, "Trader Joe's", corrections[0].Description)
	assert.Equal(t, "Groceries", corrections[0].Category)
	assert.Equal(t, "AcctB", corrections[0].DestinationAcc)

	// Re-submitting the same values performs no write.
	changed, err = eng.ApplyUserEdit(ctx, txns[0].ID, "Groceries", "AcctB")
	require.NoError(t, err)
	assert.False(t, changed)

	corrections, err = store.GetUserCorrections(ctx)
	require.NoError(t, err)
	assert.Len(t, corrections, 1)

	// The correction now shapes future imports: a similar description
	// resolves to the corrected category.
	embedder.SetVector("Trader Joe's", []float32{1, 0, 0})
	embedder.SetVector("Trader Joe's #2", []float32{0.97, 0.1, 0})
	embedder.SetVector("Coffee", []float32{0, 0, 1})

	rows := []model.ImportRow{
		{Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Description: "Trader Joe's #2", Amount: decimal.NewFromInt(30)},
	}
	_, err = eng.ImportRows(ctx, project.ID, "Checking", rows)
	require.NoError(t, err)

	all, err := store.GetTransactionsByProject(ctx, project.ID)
	require.NoError(t, err)

	var imported *model.Transaction
	for i := range all {
		if all[i].Description == "Trader Joe's #2" {
			imported = &all[i]
		}
	}
	require.NotNil(t, imported)
	assert.Equal(t, "Groceries", imported.Category)
	assert.Equal(t, "AcctB", imported.DestinationAcc)
}

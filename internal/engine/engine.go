// Package engine implements semantic categorization of transaction
// descriptions against the current category and correction catalogs.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgersage/ledgersage/internal/common"
	"github.com/ledgersage/ledgersage/internal/model"
	"github.com/ledgersage/ledgersage/internal/service"
)

// Engine orchestrates matching passes over transactions and writes the
// resulting category, destination account, and score back through storage.
type Engine struct {
	storage  service.Storage
	embedder Embedder
	// OnProgress, when set, is called after each processed item.
	OnProgress func(done, total int)
	cfg        Config
}

// Config holds configuration options for the engine.
type Config struct {
	// MinScore is the minimum similarity a best match must reach to be
	// persisted. Cosine similarity never drops below -1, so the default
	// accepts every match.
	MinScore float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{MinScore: -1}
}

// New creates an engine with the default configuration.
func New(storage service.Storage, embedder Embedder) *Engine {
	return NewWithConfig(storage, embedder, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(storage service.Storage, embedder Embedder, cfg Config) *Engine {
	return &Engine{
		storage:  storage,
		embedder: embedder,
		cfg:      cfg,
	}
}

// Stats summarizes one matching pass.
type Stats struct {
	Total   int
	Matched int
	Skipped int // best match fell below the minimum score
	Failed  int // description could not be embedded
}

// buildMatcher snapshots both catalogs and embeds them once. The snapshot is
// never re-read mid-pass; a correction recorded after this point becomes
// eligible on the next pass.
func (e *Engine) buildMatcher(ctx context.Context) (*Matcher, error) {
	categories, err := e.storage.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	corrections, err := e.storage.GetUserCorrections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load corrections: %w", err)
	}

	labels := model.BuildLabels(categories, corrections)
	slog.Debug("built label catalog",
		"categories", len(categories),
		"corrections", len(corrections))

	return NewMatcher(ctx, e.embedder, labels)
}

// RescoreProject rebuilds the label catalog once and rescores every
// transaction in the project. A transaction whose description cannot be
// embedded keeps its previous state; the rest of the batch continues.
func (e *Engine) RescoreProject(ctx context.Context, projectID string) (Stats, error) {
	transactions, err := e.storage.GetTransactionsByProject(ctx, projectID)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to load transactions: %w", err)
	}

	stats := Stats{Total: len(transactions)}
	if len(transactions) == 0 {
		return stats, nil
	}

	matcher, err := e.buildMatcher(ctx)
	if err != nil {
		return Stats{}, err
	}

	for i, txn := range transactions {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if err := e.scoreExisting(ctx, matcher, &txn, &stats); err != nil {
			return stats, err
		}

		if e.OnProgress != nil {
			e.OnProgress(i+1, len(transactions))
		}
	}

	slog.Info("rescored project",
		"project_id", projectID,
		"total", stats.Total,
		"matched", stats.Matched,
		"skipped", stats.Skipped,
		"failed", stats.Failed)

	return stats, nil
}

// RescoreTransaction rescores a single transaction against a fresh catalog.
func (e *Engine) RescoreTransaction(ctx context.Context, transactionID string) error {
	txn, err := e.storage.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("failed to load transaction: %w", err)
	}

	matcher, err := e.buildMatcher(ctx)
	if err != nil {
		return err
	}

	var stats Stats
	if err := e.scoreExisting(ctx, matcher, txn, &stats); err != nil {
		return err
	}
	if stats.Failed > 0 {
		return fmt.Errorf("failed to embed description %q", txn.Description)
	}
	return nil
}

// scoreExisting matches one stored transaction and persists the result.
func (e *Engine) scoreExisting(ctx context.Context, matcher *Matcher, txn *model.Transaction, stats *Stats) error {
	match, err := matcher.Match(ctx, txn.Description)
	if err != nil {
		common.LogError(err, "skipping transaction, embedding failed", common.Fields{
			"transaction_id": txn.ID,
			"retryable":      common.IsRetryable(err),
		})
		stats.Failed++
		return nil
	}

	if match.Score < e.cfg.MinScore {
		slog.Debug("best match below minimum score",
			"transaction_id", txn.ID,
			"score", match.Score,
			"min_score", e.cfg.MinScore)
		stats.Skipped++
		return nil
	}

	score := decimal.NewFromFloat(match.Score)
	if err := e.storage.ApplyMatch(ctx, txn.ID, match.Label.Category, match.Label.DestinationAcc, score); err != nil {
		return fmt.Errorf("failed to apply match to transaction %s: %w", txn.ID, err)
	}

	stats.Matched++
	return nil
}

// ImportRows scores newly parsed rows against a fresh catalog and creates
// the resulting transactions atomically: either the whole batch commits or
// none of it does. Rows whose description cannot be embedded, or whose best
// match falls below the minimum score, are imported unscored.
func (e *Engine) ImportRows(ctx context.Context, projectID, sourceAcc string, rows []model.ImportRow) (Stats, error) {
	stats := Stats{Total: len(rows)}
	if len(rows) == 0 {
		return stats, nil
	}

	matcher, err := e.buildMatcher(ctx)
	if err != nil {
		return Stats{}, err
	}

	transactions := make([]model.Transaction, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return Stats{}, err
		}

		txn := model.Transaction{
			ID:          uuid.NewString(),
			ProjectID:   projectID,
			Date:        row.Date,
			Description: row.Description,
			Amount:      row.Amount,
			SourceAcc:   sourceAcc,
		}

		match, err := matcher.Match(ctx, row.Description)
		switch {
		case err != nil:
			common.LogError(err, "importing row unscored, embedding failed", common.Fields{
				"description": row.Description,
			})
			stats.Failed++
		case match.Score < e.cfg.MinScore:
			stats.Skipped++
		default:
			txn.Category = match.Label.Category
			txn.DestinationAcc = match.Label.DestinationAcc
			txn.Score = decimal.NewNullDecimal(decimal.NewFromFloat(match.Score))
			stats.Matched++
		}

		transactions = append(transactions, txn)

		if e.OnProgress != nil {
			e.OnProgress(i+1, len(rows))
		}
	}

	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to begin import transaction: %w", err)
	}

	if err := tx.CreateTransactions(ctx, transactions); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("rollback failed", "error", rbErr)
		}
		return Stats{}, fmt.Errorf("failed to save imported transactions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("failed to commit import: %w", err)
	}

	slog.Info("imported transactions",
		"project_id", projectID,
		"total", stats.Total,
		"matched", stats.Matched,
		"skipped", stats.Skipped,
		"failed", stats.Failed)

	return stats, nil
}

// ApplyUserEdit updates a transaction's category and destination account,
// and records the edit as a correction when it actually changes something.
// Re-submitting the current values performs no write at all. Returns whether
// a correction was recorded.
func (e *Engine) ApplyUserEdit(ctx context.Context, transactionID, category, destinationAcc string) (bool, error) {
	txn, err := e.storage.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return false, fmt.Errorf("failed to load transaction: %w", err)
	}

	if txn.Category == category && txn.DestinationAcc == destinationAcc {
		return false, nil
	}

	if err := e.storage.UpdateTransactionAssignment(ctx, transactionID, category, destinationAcc); err != nil {
		return false, fmt.Errorf("failed to update transaction: %w", err)
	}

	if err := e.storage.UpsertCorrection(ctx, txn.Description, category, destinationAcc); err != nil {
		return false, fmt.Errorf("failed to record correction: %w", err)
	}

	slog.Info("recorded user correction",
		"description", txn.Description,
		"category", category,
		"destination_acc", destinationAcc)

	return true, nil
}

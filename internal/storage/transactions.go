package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/ledgersage/ledgersage/internal/common"
	"github.com/ledgersage/ledgersage/internal/model"
)

const transactionColumns = `id, project_id, transdate, description, amount, category, source_acc, destination_acc, score`

// GetTransactionsByProject returns a project's transactions ordered by date.
func (s *SQLiteStorage) GetTransactionsByProject(ctx context.Context, projectID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(projectID, "projectID"); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE project_id = ?
		ORDER BY transdate, id`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// GetTransactionByID returns a single transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE id = ?`

	txn, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &txn, nil
}

// ApplyMatch writes the outcome of a matching pass onto a transaction:
// category, destination account, and the winning similarity score. This is
// the engine's sole write contract on existing transactions.
func (s *SQLiteStorage) ApplyMatch(ctx context.Context, transactionID, category, destinationAcc string, score decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}

	query := `
		UPDATE transactions
		SET category = ?, destination_acc = ?, score = ?
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, category, destinationAcc, score.String(), transactionID)
	if err != nil {
		return fmt.Errorf("failed to apply match: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", transactionID, common.ErrNotFound)
	}

	return nil
}

// UpdateTransactionAssignment sets a transaction's category and destination
// account from a manual edit. The existing score is left untouched.
func (s *SQLiteStorage) UpdateTransactionAssignment(ctx context.Context, transactionID, category, destinationAcc string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}

	query := `
		UPDATE transactions
		SET category = ?, destination_acc = ?
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, category, destinationAcc, transactionID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", transactionID, common.ErrNotFound)
	}

	return nil
}

// DeleteTransactionsByProject removes a project's transactions, optionally
// restricted to one source asset. Returns the number of rows deleted.
func (s *SQLiteStorage) DeleteTransactionsByProject(ctx context.Context, projectID, assetName string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(projectID, "projectID"); err != nil {
		return 0, err
	}

	query := `DELETE FROM transactions WHERE project_id = ?`
	args := []any{projectID}
	if assetName != "" {
		query += ` AND source_acc = ?`
		args = append(args, assetName)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check delete result: %w", err)
	}

	slog.Info("deleted transactions", "project_id", projectID, "asset", assetName, "count", affected)
	return affected, nil
}

// createTransactionsTx inserts a batch of transactions inside tx.
func (s *SQLiteStorage) createTransactionsTx(ctx context.Context, tx *sql.Tx, txns []model.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, txn := range txns {
		var score any
		if txn.Score.Valid {
			score = txn.Score.Decimal.String()
		}

		_, err := stmt.ExecContext(ctx,
			txn.ID,
			txn.ProjectID,
			txn.Date,
			txn.Description,
			txn.Amount.String(),
			nullable(txn.Category),
			nullable(txn.SourceAcc),
			nullable(txn.DestinationAcc),
			score,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	return nil
}

// rowScanner abstracts sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		txn      model.Transaction
		amount   string
		category sql.NullString
		source   sql.NullString
		dest     sql.NullString
		score    sql.NullString
	)

	err := row.Scan(
		&txn.ID,
		&txn.ProjectID,
		&txn.Date,
		&txn.Description,
		&amount,
		&category,
		&source,
		&dest,
		&score,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Transaction{}, err
		}
		return model.Transaction{}, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	txn.Category = category.String
	txn.SourceAcc = source.String
	txn.DestinationAcc = dest.String

	if score.Valid {
		d, err := decimal.NewFromString(score.String)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("invalid score %q: %w", score.String, err)
		}
		txn.Score = decimal.NewNullDecimal(d)
	}

	return txn, nil
}

// nullable maps the empty string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

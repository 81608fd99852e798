package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ledgersage/ledgersage/internal/common"
	"github.com/ledgersage/ledgersage/internal/model"
)

// GetUserCorrections returns all user corrections in catalog order.
func (s *SQLiteStorage) GetUserCorrections(ctx context.Context) ([]model.UserCorrection, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, description, category, destination_acc
		FROM user_corrections
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer rows.Close()

	var corrections []model.UserCorrection
	for rows.Next() {
		var uc model.UserCorrection
		if err := rows.Scan(&uc.ID, &uc.Description, &uc.Category, &uc.DestinationAcc); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		corrections = append(corrections, uc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating corrections: %w", err)
	}

	slog.Debug("retrieved corrections", "count", len(corrections))
	return corrections, nil
}

// UpsertCorrection records a user correction keyed by exact description.
// An existing correction for the same description is overwritten in place,
// so the newest user decision always wins; concurrent edits to the same
// description resolve to last-write-wins.
func (s *SQLiteStorage) UpsertCorrection(ctx context.Context, description, category, destinationAcc string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(description, "description"); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}

	query := `
		INSERT INTO user_corrections (description, category, destination_acc)
		VALUES (?, ?, ?)
		ON CONFLICT(description) DO UPDATE SET
			category = excluded.category,
			destination_acc = excluded.destination_acc`

	if _, err := s.db.ExecContext(ctx, query, description, category, destinationAcc); err != nil {
		return fmt.Errorf("failed to upsert correction: %w", err)
	}

	slog.Debug("upserted correction", "description", description, "category", category)
	return nil
}

// DeleteCorrection removes a correction by ID.
func (s *SQLiteStorage) DeleteCorrection(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM user_corrections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete correction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("correction %d: %w", id, common.ErrNotFound)
	}

	return nil
}

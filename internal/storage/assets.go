package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ledgersage/ledgersage/internal/common"
	"github.com/ledgersage/ledgersage/internal/model"
)

// GetAssets returns all assets ordered by name.
func (s *SQLiteStorage) GetAssets(ctx context.Context) ([]model.Asset, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM assets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		var a model.Asset
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}

	return assets, nil
}

// GetAssetByName returns the asset with the given name.
func (s *SQLiteStorage) GetAssetByName(ctx context.Context, name string) (*model.Asset, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	var a model.Asset
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM assets WHERE name = ?`, name).Scan(&a.ID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("asset %q: %w", name, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query asset: %w", err)
	}

	return &a, nil
}

// CreateAsset creates a new source account.
func (s *SQLiteStorage) CreateAsset(ctx context.Context, name string) (*model.Asset, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `INSERT INTO assets (name) VALUES (?)`, name)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, fmt.Errorf("asset %q: %w", name, common.ErrDuplicateEntry)
		}
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get asset ID: %w", err)
	}

	return &model.Asset{ID: int(id), Name: name}, nil
}

// DeleteAsset removes an asset by ID.
func (s *SQLiteStorage) DeleteAsset(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("asset %d: %w", id, common.ErrNotFound)
	}

	return nil
}

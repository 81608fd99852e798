// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ledgersage/ledgersage/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Catalog snapshots consumed by the matching engine. Both return
	// stable catalog order so one pass always sees one consistent view.
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetUserCorrections(ctx context.Context) ([]model.UserCorrection, error)

	// Category operations
	CreateCategory(ctx context.Context, key, category, destinationAcc string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int) error

	// Correction operations
	UpsertCorrection(ctx context.Context, description, category, destinationAcc string) error
	DeleteCorrection(ctx context.Context, id int) error

	// Project operations
	CreateProject(ctx context.Context, description string) (*model.Project, error)
	GetProjects(ctx context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, id string) (*model.Project, error)
	DeleteProject(ctx context.Context, id string) error

	// Asset operations
	GetAssets(ctx context.Context) ([]model.Asset, error)
	GetAssetByName(ctx context.Context, name string) (*model.Asset, error)
	CreateAsset(ctx context.Context, name string) (*model.Asset, error)
	DeleteAsset(ctx context.Context, id int) error

	// Transaction operations
	GetTransactionsByProject(ctx context.Context, projectID string) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	ApplyMatch(ctx context.Context, transactionID, category, destinationAcc string, score decimal.Decimal) error
	UpdateTransactionAssignment(ctx context.Context, transactionID, category, destinationAcc string) error
	DeleteTransactionsByProject(ctx context.Context, projectID, assetName string) (int64, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}

// Tx is a unit of work for batch writes. Imports create all of their
// transactions inside one Tx so a failed batch leaves nothing behind.
type Tx interface {
	CreateTransactions(ctx context.Context, txns []model.Transaction) error
	Commit() error
	Rollback() error
}

package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ledgersage/ledgersage/internal/common"
)

func TestCreateAndGetTransactions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store)
	txns := createTestTransactions(project.ID, 3)
	saveTestTransactions(t, store, txns)

	got, err := store.GetTransactionsByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetTransactionsByProject failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(got))
	}

	for i, txn := range got {
		if txn.Scored() {
			t.Errorf("transaction %d: fresh import without match must be unscored", i)
		}
		if !txn.Amount.Equal(txns[i].Amount) {
			t.Errorf("transaction %d: amount = %s, want %s", i, txn.Amount, txns[i].Amount)
		}
	}
}

func TestCreateTransactionsRollback(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store)
	txns := createTestTransactions(project.ID, 2)

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx failed: %v", err)
	}
	if err := tx.CreateTransactions(ctx, txns); err != nil {
		t.Fatalf("CreateTransactions failed: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	got, err := store.GetTransactionsByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetTransactionsByProject failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("rollback must leave no transactions, got %d", len(got))
	}
}

func TestApplyMatch(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store)
	txns := createTestTransactions(project.ID, 1)
	saveTestTransactions(t, store, txns)

	score := decimal.NewFromFloat(0.8731)
	if err := store.ApplyMatch(ctx, txns[0].ID, "Dining", "AcctA", score); err != nil {
		t.Fatalf("ApplyMatch failed: %v", err)
	}

	got, err := store.GetTransactionByID(ctx, txns[0].ID)
	if err != nil {
		t.Fatalf("GetTransactionByID failed: %v", err)
	}
	if got.Category != "Dining" || got.DestinationAcc != "AcctA" {
		t.Errorf("unexpected assignment: %+v", got)
	}
	if !got.Scored() {
		t.Fatal("matched transaction must be scored")
	}
	if !got.Score.Decimal.Equal(score) {
		t.Errorf("score = %s, want %s", got.Score.Decimal, score)
	}
}

func TestApplyMatchMissingTransaction(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	err := store.ApplyMatch(context.Background(), "no-such-id", "Dining", "AcctA", decimal.NewFromInt(1))
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateTransactionAssignmentKeepsScore(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store)
	txns := createTestTransactions(project.ID, 1)
	saveTestTransactions(t, store, txns)

	score := decimal.NewFromFloat(0.42)
	if err := store.ApplyMatch(ctx, txns[0].ID, "Dining", "AcctA", score); err != nil {
		t.Fatalf("ApplyMatch failed: %v", err)
	}

	if err := store.UpdateTransactionAssignment(ctx, txns[0].ID, "Groceries", "AcctB"); err != nil {
		t.Fatalf("UpdateTransactionAssignment failed: %v", err)
	}

	got, err := store.GetTransactionByID(ctx, txns[0].ID)
	if err != nil {
		t.Fatalf("GetTransactionByID failed: %v", err)
	}
	if got.Category != "Groceries" || got.DestinationAcc != "AcctB" {
		t.Errorf("unexpected assignment: %+v", got)
	}
	if !got.Score.Valid || !got.Score.Decimal.Equal(score) {
		t.Errorf("manual edit must not touch the score, got %+v", got.Score)
	}
}

func TestDeleteTransactionsByProject(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	project := createTestProject(t, store)
	txns := createTestTransactions(project.ID, 4)
	txns[0].SourceAcc = "Checking"
	txns[1].SourceAcc = "Checking"
	txns[2].SourceAcc = "Savings"
	saveTestTransactions(t, store, txns)

	deleted, err := store.DeleteTransactionsByProject(ctx, project.ID, "Checking")
	if err != nil {
		t.Fatalf("DeleteTransactionsByProject failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	deleted, err = store.DeleteTransactionsByProject(ctx, project.ID, "")
	if err != nil {
		t.Fatalf("DeleteTransactionsByProject failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}
}

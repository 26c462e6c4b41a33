package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func TestTransactionWithRetryGivesUpOnOtherErrors(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	calls := 0
	wantErr := errors.New("boom")
	err := database.TransactionWithRetry(ctx, func(tx *sql.Tx) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 1 {
		t.Errorf("non-busy errors must not be retried, got %d calls", calls)
	}
}

func TestTransactionWithRetryRetriesBusy(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	calls := 0
	err := database.TransactionWithRetry(ctx, func(tx *sql.Tx) error {
		calls++
		if calls < 2 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestTransactionWithRetryStopsOnCancel(t *testing.T) {
	database := openTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := database.TransactionWithRetry(ctx, func(tx *sql.Tx) error {
		t.Fatal("cancelled context should not run the transaction")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIsBusyError(t *testing.T) {
	if !isBusyError(errors.New("SQLITE_BUSY: database is locked")) {
		t.Error("busy error not detected")
	}
	if isBusyError(errors.New("no such table")) {
		t.Error("unrelated error misclassified as busy")
	}
	if isBusyError(context.Canceled) {
		t.Error("cancellation must not be treated as busy")
	}
}

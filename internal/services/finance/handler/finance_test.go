package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"dukkan-system/internal/apperr"
	"dukkan-system/internal/database"
	"dukkan-system/internal/database/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestCreateTransaction(t *testing.T) {
	s := NewFinanceHandler(setupTestDB(t))
	ctx := context.Background()

	category := "Kira"
	txn, err := s.CreateTransaction(ctx, TransactionRequest{
		Type:     models.FinanceExpense,
		Amount:   1250.5,
		Category: &category,
	}, "admin-1")
	require.NoError(t, err)
	assert.NotEmpty(t, txn.ID)
	assert.Equal(t, "1250.50", txn.Amount)
	assert.False(t, txn.Date.IsZero())
	require.NotNil(t, txn.CreatedBy)
	assert.Equal(t, "admin-1", *txn.CreatedBy)

	_, err = s.CreateTransaction(ctx, TransactionRequest{Type: "loan", Amount: 10}, "admin-1")
	assert.True(t, apperr.IsInvalidArgument(err))

	_, err = s.CreateTransaction(ctx, TransactionRequest{Type: models.FinanceIncome, Amount: -10}, "admin-1")
	assert.True(t, apperr.IsInvalidArgument(err))
}

func TestListTransactionsFilterAndOrder(t *testing.T) {
	s := NewFinanceHandler(setupTestDB(t))
	ctx := context.Background()

	older := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	_, err := s.CreateTransaction(ctx, TransactionRequest{Type: models.FinanceExpense, Amount: 100, Date: &older}, "admin-1")
	require.NoError(t, err)
	_, err = s.CreateTransaction(ctx, TransactionRequest{Type: models.FinanceIncome, Amount: 300, Date: &newer}, "admin-1")
	require.NoError(t, err)

	all, total, err := s.ListTransactions(ctx, ListTransactionsQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, all, 2)
	assert.Equal(t, models.FinanceIncome, all[0].Type)

	expenses, total, err := s.ListTransactions(ctx, ListTransactionsQuery{Type: models.FinanceExpense})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, expenses, 1)
	assert.Equal(t, "100.00", expenses[0].Amount)

	_, _, err = s.ListTransactions(ctx, ListTransactionsQuery{Type: "bogus"})
	assert.True(t, apperr.IsInvalidArgument(err))
}

func TestUpdateTransaction(t *testing.T) {
	s := NewFinanceHandler(setupTestDB(t))
	ctx := context.Background()

	txn, err := s.CreateTransaction(ctx, TransactionRequest{Type: models.FinanceExpense, Amount: 100}, "admin-1")
	require.NoError(t, err)

	amount := 175.25
	desc := "Elektrik faturası"
	updated, err := s.UpdateTransaction(ctx, txn.ID, UpdateTransactionRequest{
		Amount:      &amount,
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, "175.25", updated.Amount)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Elektrik faturası", *updated.Description)
	assert.Equal(t, models.FinanceExpense, updated.Type)

	bad := "loan"
	_, err = s.UpdateTransaction(ctx, txn.ID, UpdateTransactionRequest{Type: &bad})
	assert.True(t, apperr.IsInvalidArgument(err))

	_, err = s.UpdateTransaction(ctx, "missing", UpdateTransactionRequest{Amount: &amount})
	assert.True(t, apperr.IsNotFound(err))
}

func TestDeleteTransaction(t *testing.T) {
	s := NewFinanceHandler(setupTestDB(t))
	ctx := context.Background()

	txn, err := s.CreateTransaction(ctx, TransactionRequest{Type: models.FinanceIncome, Amount: 50}, "admin-1")
	require.NoError(t, err)

	require.NoError(t, s.DeleteTransaction(ctx, txn.ID))
	assert.True(t, apperr.IsNotFound(s.DeleteTransaction(ctx, txn.ID)))
}

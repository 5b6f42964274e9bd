package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booksbridge/books-gateway/internal/model"
	"github.com/booksbridge/books-gateway/internal/reports"
	"github.com/booksbridge/books-gateway/internal/schedc"
)

// seedChart installs a minimal chart of accounts for business 1: an income
// category with one subcategory and an expense category with a tax-hidden and
// a tax-visible subcategory.
func seedChart(t *testing.T, db *testDB) {
	ctx := context.Background()

	cats := []*CategoryEntity{
		{ID: 10, BusinessID: 1, Name: "Sales", Slug: "sales", Type: "income", IsActive: true, BookReports: true, TaxReports: true, ScheduleCLine: "1"},
		{ID: 20, BusinessID: 1, Name: "Office", Slug: "office", Type: "expense", IsActive: true, BookReports: true, TaxReports: true, ScheduleCLine: "18"},
		{ID: 30, BusinessID: 1, Name: "Owner Draws", Slug: "owner-draws", Type: "expense", IsActive: true, BookReports: true, TaxReports: false},
	}
	for _, c := range cats {
		require.NoError(t, db.Write(ctx).Create(c).Error)
	}

	subs := []*SubCategoryEntity{
		{ID: 100, BusinessID: 1, CategoryID: 10, Name: "Consulting", Slug: "consulting", IsActive: true, BookEnabled: true, TaxEnabled: true, DeductionRule: "full", PayeeRole: "any"},
		{ID: 200, BusinessID: 1, CategoryID: 20, Name: "Supplies", Slug: "supplies", IsActive: true, BookEnabled: true, TaxEnabled: true, DeductionRule: "full", PayeeRole: "any"},
		{ID: 201, BusinessID: 1, CategoryID: 20, Name: "Internal Transfers", Slug: "internal-transfers", IsActive: true, BookEnabled: true, TaxEnabled: false, DeductionRule: "full", PayeeRole: "any"},
		{ID: 300, BusinessID: 1, CategoryID: 30, Name: "Draws", Slug: "draws", IsActive: true, BookEnabled: true, TaxEnabled: true, DeductionRule: "full", PayeeRole: "any"},
	}
	for _, s := range subs {
		require.NoError(t, db.Write(ctx).Create(s).Error)
	}
}

func seedTxn(t *testing.T, repo *TransactionRepository, businessID int64, date time.Time, amount string, subID, catID int64, catType model.CategoryType) *model.Transaction {
	txn := &model.Transaction{
		BusinessID:    businessID,
		Date:          date,
		Amount:        decimal.RequireFromString(amount),
		Description:   "seed",
		SubCategoryID: subID,
		CategoryID:    catID,
		Type:          catType,
	}
	created, err := repo.Create(context.Background(), txn)
	require.NoError(t, err)
	return created
}

func TestTransactionRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db.DB)
	ctx := context.Background()

	created := seedTxn(t, repo, 1, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), "120.50", 200, 20, model.CategoryTypeExpense)

	got, err := repo.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("120.50")))
	assert.Equal(t, model.CategoryTypeExpense, got.Type)

	_, err = repo.Get(ctx, 2, created.ID)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestTransactionRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTransactionRepository(db.DB)
	ctx := context.Background()

	seedTxn(t, repo, 1, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "50", 200, 20, model.CategoryTypeExpense)
	seedTxn(t, repo, 1, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), "75", 200, 20, model.CategoryTypeExpense)
	seedTxn(t, repo, 1, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), "900", 100, 10, model.CategoryTypeIncome)

	t.Run("filter by year", func(t *testing.T) {
		year := 2025
		txns, total, err := repo.List(ctx, 1, model.TransactionFilter{Year: &year})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, txns, 2)
	})

	t.Run("filter by type", func(t *testing.T) {
		income := model.CategoryTypeIncome
		txns, total, err := repo.List(ctx, 1, model.TransactionFilter{Type: &income})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, txns, 1)
		assert.True(t, txns[0].Amount.Equal(decimal.NewFromInt(900)))
	})

	t.Run("other business sees nothing", func(t *testing.T) {
		_, total, err := repo.List(ctx, 2, model.TransactionFilter{})
		require.NoError(t, err)
		assert.EqualValues(t, 0, total)
	})
}

func TestTransactionRepository_ListForScheduleC(t *testing.T) {
	db := setupTestDB(t)
	seedChart(t, db)
	repo := NewTransactionRepository(db.DB)
	ctx := context.Background()

	seedTxn(t, repo, 1, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), "1000", 100, 10, model.CategoryTypeIncome)
	seedTxn(t, repo, 1, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), "200", 200, 20, model.CategoryTypeExpense)
	// tax-hidden subcategory
	seedTxn(t, repo, 1, time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC), "300", 201, 20, model.CategoryTypeExpense)
	// tax-hidden category
	seedTxn(t, repo, 1, time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC), "400", 300, 30, model.CategoryTypeExpense)
	// outside the window
	seedTxn(t, repo, 1, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), "999", 200, 20, model.CategoryTypeExpense)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows, err := repo.ListForScheduleC(ctx, 1, from, from.AddDate(1, 0, 0))
	require.NoError(t, err)

	// Only the tax-visible expense survives; the income row stays off the
	// deduction lines entirely.
	require.Len(t, rows, 1)
	assert.Equal(t, "Supplies", rows[0].Sub.Name)
	assert.Equal(t, "18", rows[0].Cat.ScheduleCLine)
	for _, r := range rows {
		assert.Equal(t, model.CategoryTypeExpense, r.Txn.Type)
	}
}

func TestScheduleCPipeline_ExcludesIncome(t *testing.T) {
	db := setupTestDB(t)
	seedChart(t, db)
	repo := NewTransactionRepository(db.DB)
	ctx := context.Background()

	seedTxn(t, repo, 1, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), "1000", 100, 10, model.CategoryTypeIncome)
	seedTxn(t, repo, 1, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), "200", 200, 20, model.CategoryTypeExpense)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows, err := repo.ListForScheduleC(ctx, 1, from, from.AddDate(1, 0, 0))
	require.NoError(t, err)

	lines, grand := reports.BuildScheduleCLines(rows, schedc.DefaultMealsRate, schedc.ModeTax)
	require.Len(t, lines, 1)
	assert.Equal(t, "18", lines[0].Line)
	assert.True(t, grand.Equal(decimal.RequireFromString("200")))
}

func TestTransactionRepository_ListForProfitLoss(t *testing.T) {
	db := setupTestDB(t)
	seedChart(t, db)
	repo := NewTransactionRepository(db.DB)
	ctx := context.Background()

	seedTxn(t, repo, 1, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), "1000", 100, 10, model.CategoryTypeIncome)
	// tax-hidden but book-visible
	seedTxn(t, repo, 1, time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC), "400", 300, 30, model.CategoryTypeExpense)

	rows, err := repo.ListForProfitLoss(ctx, 1, 2025)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Draws", rows[1].Sub.Name)
}

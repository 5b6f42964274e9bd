package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/booksbridge/books-gateway/internal/model"
	"github.com/booksbridge/books-gateway/internal/reports"
	"github.com/booksbridge/books-gateway/pkg/pg"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
)

type TransactionRepository struct {
	*pg.DB
}

func NewTransactionRepository(db *pg.DB) *TransactionRepository {
	return &TransactionRepository{
		db,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	entity := toTransactionEntity(txn)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toTransactionModel(entity), nil
}

func (r *TransactionRepository) Get(ctx context.Context, businessID, id int64) (*model.Transaction, error) {
	var entity TransactionEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return toTransactionModel(&entity), nil
}

func (r *TransactionRepository) List(ctx context.Context, businessID int64, f model.TransactionFilter) ([]*model.Transaction, int64, error) {
	q := r.Read(ctx).WithContext(ctx).
		Model(&TransactionEntity{}).
		Where("business_id = ?", businessID)

	if f.Year != nil {
		from := time.Date(*f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		q = q.Where("date >= ? AND date < ?", from, from.AddDate(1, 0, 0))
	}
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date < ?", *f.To)
	}
	if f.Type != nil {
		q = q.Where("type = ?", string(*f.Type))
	}
	if f.SubCategoryID != nil {
		q = q.Where("subcategory_id = ?", *f.SubCategoryID)
	}
	if f.ContactID != nil {
		q = q.Where("contact_id = ?", *f.ContactID)
	}
	if f.JobID != nil {
		q = q.Where("job_id = ?", *f.JobID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "date"
	if f.Desc {
		order += " DESC"
	} else {
		order += " ASC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*TransactionEntity
	if err := q.Order(order).Order("id ASC").Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toTransactionModels(entities), total, nil
}

// ListForScheduleC loads the tax-visible joined expense rows for the window.
// Income never belongs on the deduction lines, and rows whose category or
// subcategory is hidden from tax reports never reach the aggregators.
func (r *TransactionRepository) ListForScheduleC(ctx context.Context, businessID int64, from, to time.Time) ([]reports.TxnRow, error) {
	return r.listJoined(ctx, businessID, from, to, true)
}

// ListForProfitLoss loads the book-visible joined rows for one calendar year.
func (r *TransactionRepository) ListForProfitLoss(ctx context.Context, businessID int64, year int) ([]reports.TxnRow, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return r.listJoined(ctx, businessID, from, from.AddDate(1, 0, 0), false)
}

// listJoined fetches the window's transactions and hydrates each with its
// subcategory and category in two batched lookups rather than a three-way
// join, which keeps the queries portable across postgres and sqlite.
func (r *TransactionRepository) listJoined(ctx context.Context, businessID int64, from, to time.Time, taxMode bool) ([]reports.TxnRow, error) {
	q := r.Read(ctx).WithContext(ctx).
		Where("business_id = ? AND date >= ? AND date < ?", businessID, from, to)
	if taxMode {
		q = q.Where("type = ?", string(model.CategoryTypeExpense))
	}

	var txns []*TransactionEntity
	err := q.Order("date ASC").Order("id ASC").
		Find(&txns).
		Error
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, nil
	}

	subIDs := make([]int64, 0, len(txns))
	seen := make(map[int64]struct{}, len(txns))
	for _, t := range txns {
		if _, ok := seen[t.SubCategoryID]; !ok {
			seen[t.SubCategoryID] = struct{}{}
			subIDs = append(subIDs, t.SubCategoryID)
		}
	}

	var subEntities []*SubCategoryEntity
	err = r.Read(ctx).WithContext(ctx).
		Where("business_id = ? AND id IN ?", businessID, subIDs).
		Find(&subEntities).
		Error
	if err != nil {
		return nil, err
	}
	subs := make(map[int64]*model.SubCategory, len(subEntities))
	catIDs := make([]int64, 0, len(subEntities))
	seenCat := make(map[int64]struct{}, len(subEntities))
	for _, e := range subEntities {
		subs[e.ID] = toSubCategoryModel(e)
		if _, ok := seenCat[e.CategoryID]; !ok {
			seenCat[e.CategoryID] = struct{}{}
			catIDs = append(catIDs, e.CategoryID)
		}
	}

	var catEntities []*CategoryEntity
	err = r.Read(ctx).WithContext(ctx).
		Where("business_id = ? AND id IN ?", businessID, catIDs).
		Find(&catEntities).
		Error
	if err != nil {
		return nil, err
	}
	cats := make(map[int64]*model.Category, len(catEntities))
	for _, e := range catEntities {
		cats[e.ID] = toCategoryModel(e)
	}

	rows := make([]reports.TxnRow, 0, len(txns))
	for _, t := range txns {
		sub, ok := subs[t.SubCategoryID]
		if !ok {
			continue
		}
		cat, ok := cats[sub.CategoryID]
		if !ok {
			continue
		}
		if taxMode {
			if !cat.TaxReports || !sub.TaxEnabled {
				continue
			}
		} else {
			if !cat.BookReports || !sub.BookEnabled {
				continue
			}
		}
		rows = append(rows, reports.TxnRow{
			Txn: *toTransactionModel(t),
			Sub: *sub,
			Cat: *cat,
		})
	}
	return rows, nil
}

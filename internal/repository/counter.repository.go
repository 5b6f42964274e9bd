package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/booksbridge/books-gateway/internal/model"
	"github.com/booksbridge/books-gateway/pkg/pg"
)

// CounterRepository owns the per-business, per-year invoice sequence rows.
// Every mutation takes the row lock first, so concurrent allocations line up
// behind each other and each caller sees a distinct sequence value.
type CounterRepository struct {
	*pg.DB
}

func NewCounterRepository(db *pg.DB) *CounterRepository {
	return &CounterRepository{
		db,
	}
}

func yearPrefix(year int) string {
	return fmt.Sprintf("%02d", year%100)
}

// AllocateNext increments the counter under lock and returns the new
// sequence. Must run inside WithinTransaction; the lock is held until the
// caller's transaction commits, which is what makes allocate-then-insert
// atomic.
func (r *CounterRepository) AllocateNext(ctx context.Context, businessID int64, year int) (int, error) {
	entity, err := r.lockOrCreate(ctx, businessID, year)
	if err != nil {
		return 0, err
	}

	next := entity.LastSeq + 1
	result := r.Write(ctx).WithContext(ctx).
		Model(&InvoiceCounterEntity{}).
		Where("id = ?", entity.ID).
		Update("last_seq", next)
	if result.Error != nil {
		return 0, result.Error
	}
	return next, nil
}

// BumpTo raises the counter to at least seq. A no-op when the counter is
// already past it; used after manual number overrides so auto-allocation
// never re-issues a number below the override.
func (r *CounterRepository) BumpTo(ctx context.Context, businessID int64, year int, seq int) error {
	entity, err := r.lockOrCreate(ctx, businessID, year)
	if err != nil {
		return err
	}
	if entity.LastSeq >= seq {
		return nil
	}

	return r.Write(ctx).WithContext(ctx).
		Model(&InvoiceCounterEntity{}).
		Where("id = ?", entity.ID).
		Update("last_seq", seq).
		Error
}

// Peek reads the counter without locking. Zero when no row exists yet.
func (r *CounterRepository) Peek(ctx context.Context, businessID int64, year int) (*model.InvoiceCounter, error) {
	var entity InvoiceCounterEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("business_id = ? AND year = ?", businessID, year).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.InvoiceCounter{BusinessID: businessID, Year: year, LastSeq: 0}, nil
		}
		return nil, err
	}
	return toInvoiceCounterModel(&entity), nil
}

// lockOrCreate takes the counter row lock, creating the row on first use.
// The insert can lose a race with a concurrent first allocation; the unique
// index turns that into a duplicate error and the retry locks the winner's
// row instead.
func (r *CounterRepository) lockOrCreate(ctx context.Context, businessID int64, year int) (*InvoiceCounterEntity, error) {
	var entity InvoiceCounterEntity
	err := r.Write(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("business_id = ? AND year = ?", businessID, year).
		First(&entity).
		Error
	if err == nil {
		return &entity, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	entity = InvoiceCounterEntity{BusinessID: businessID, Year: year, LastSeq: 0}
	createErr := r.Write(ctx).WithContext(ctx).Create(&entity).Error
	if createErr == nil {
		return &entity, nil
	}
	if !isUniqueViolation(createErr) {
		return nil, createErr
	}

	err = r.Write(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("business_id = ? AND year = ?", businessID, year).
		First(&entity).
		Error
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

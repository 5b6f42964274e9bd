package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/booksbridge/books-gateway/internal/model"
	"github.com/booksbridge/books-gateway/pkg/pg"
)

var (
	ErrInvoiceNotFound        = errors.New("invoice not found")
	ErrDuplicateInvoiceNumber = errors.New("invoice number already exists")
)

type InvoiceRepository struct {
	*pg.DB
}

func NewInvoiceRepository(db *pg.DB) *InvoiceRepository {
	return &InvoiceRepository{
		db,
	}
}

// Create inserts the invoice and its items. Callers run it inside
// WithinTransaction so the number allocation and the insert commit together.
func (r *InvoiceRepository) Create(ctx context.Context, inv *model.Invoice, items []model.InvoiceItem) (*model.Invoice, error) {
	entity := toInvoiceEntity(inv)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateInvoiceNumber
		}
		return nil, err
	}

	for i := range items {
		item := toInvoiceItemEntity(&items[i])
		item.InvoiceID = entity.ID
		item.BusinessID = entity.BusinessID
		if err := r.Write(ctx).WithContext(ctx).Create(item).Error; err != nil {
			return nil, err
		}
	}

	return toInvoiceModel(entity), nil
}

func (r *InvoiceRepository) Get(ctx context.Context, businessID, invoiceID int64) (*model.Invoice, error) {
	var entity InvoiceEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("business_id = ? AND id = ?", businessID, invoiceID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return toInvoiceModel(&entity), nil
}

// GetForUpdate locks the invoice row for a lifecycle transition so two
// concurrent transitions serialize instead of double-applying.
func (r *InvoiceRepository) GetForUpdate(ctx context.Context, businessID, invoiceID int64) (*model.Invoice, error) {
	var entity InvoiceEntity
	err := r.Write(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("business_id = ? AND id = ?", businessID, invoiceID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return toInvoiceModel(&entity), nil
}

func (r *InvoiceRepository) Update(ctx context.Context, inv *model.Invoice) (*model.Invoice, error) {
	entity := toInvoiceEntity(inv)

	result := r.Write(ctx).WithContext(ctx).
		Model(&InvoiceEntity{}).
		Where("business_id = ? AND id = ?", inv.BusinessID, inv.ID).
		Select("*").
		Omit("id", "business_id", "created_at", "pdf").
		Updates(entity)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return nil, ErrDuplicateInvoiceNumber
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrInvoiceNotFound
	}
	return r.Get(ctx, inv.BusinessID, inv.ID)
}

func (r *InvoiceRepository) List(ctx context.Context, businessID int64, status *model.InvoiceStatus) ([]*model.Invoice, error) {
	q := r.Read(ctx).WithContext(ctx).
		Where("business_id = ?", businessID)
	if status != nil {
		q = q.Where("status = ?", string(*status))
	}

	var entities []*InvoiceEntity
	if err := q.Order("invoice_number ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toInvoiceModels(entities), nil
}

func (r *InvoiceRepository) ListItems(ctx context.Context, businessID, invoiceID int64) ([]model.InvoiceItem, error) {
	var entities []*InvoiceItemEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("business_id = ? AND invoice_id = ?", businessID, invoiceID).
		Order("sort_order ASC").Order("id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toInvoiceItemModels(entities), nil
}

func (r *InvoiceRepository) ReplaceItems(ctx context.Context, businessID, invoiceID int64, items []model.InvoiceItem) error {
	err := r.Write(ctx).WithContext(ctx).
		Where("business_id = ? AND invoice_id = ?", businessID, invoiceID).
		Delete(&InvoiceItemEntity{}).
		Error
	if err != nil {
		return err
	}
	for i := range items {
		item := toInvoiceItemEntity(&items[i])
		item.ID = 0
		item.InvoiceID = invoiceID
		item.BusinessID = businessID
		if err := r.Write(ctx).WithContext(ctx).Create(item).Error; err != nil {
			return err
		}
	}
	return nil
}

// MaxNonSuffixedNumber returns the highest plain YY#### number issued for the
// year, "" when none exists. Suffixed revision numbers are excluded, they
// never advance the sequence.
func (r *InvoiceRepository) MaxNonSuffixedNumber(ctx context.Context, businessID int64, year int) (string, error) {
	prefix := yearPrefix(year)

	var entity InvoiceEntity
	err := r.Read(ctx).WithContext(ctx).
		Select("invoice_number").
		Where("business_id = ?", businessID).
		Where("invoice_number LIKE ?", prefix+"%").
		Where("LENGTH(invoice_number) = 6").
		Order("invoice_number DESC").
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return entity.InvoiceNumber, nil
}

// NumbersWithPrefix returns every issued number starting with the given base,
// used to find the next free revision suffix.
func (r *InvoiceRepository) NumbersWithPrefix(ctx context.Context, businessID int64, base string) ([]string, error) {
	var entities []*InvoiceEntity
	err := r.Read(ctx).WithContext(ctx).
		Select("invoice_number").
		Where("business_id = ?", businessID).
		Where("invoice_number LIKE ?", base+"%").
		Order("invoice_number ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	numbers := make([]string, len(entities))
	for i, e := range entities {
		numbers[i] = e.InvoiceNumber
	}
	return numbers, nil
}

func (r *InvoiceRepository) SavePDF(ctx context.Context, businessID, invoiceID int64, pdf []byte) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&InvoiceEntity{}).
		Where("business_id = ? AND id = ?", businessID, invoiceID).
		Update("pdf", pdf)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *InvoiceRepository) GetPDF(ctx context.Context, businessID, invoiceID int64) ([]byte, error) {
	var entity InvoiceEntity
	err := r.Read(ctx).WithContext(ctx).
		Select("pdf").
		Where("business_id = ? AND id = ?", businessID, invoiceID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return entity.PDF, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
